package dereport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

const gsPrefix = "gs://"

// IsGoogleStoragePath reports whether p points into a Google Storage bucket.
func IsGoogleStoragePath(p string) bool {
	return strings.HasPrefix(p, gsPrefix)
}

// SplitGoogleStoragePath splits gs://bucket/some/object into its bucket and
// object names.
func SplitGoogleStoragePath(p string) (bucket, object string, err error) {
	pathParts := strings.SplitN(strings.TrimPrefix(p, gsPrefix), "/", 2)
	if len(pathParts) != 2 || pathParts[0] == "" || pathParts[1] == "" {
		return "", "", fmt.Errorf("Tried to split your google storage path into 2 parts, but got %d: %v", len(pathParts), pathParts)
	}

	return pathParts[0], pathParts[1], nil
}

// JoinPath joins a base directory and a file name. Google Storage paths are
// always joined with forward slashes.
func JoinPath(dir, name string) string {
	if IsGoogleStoragePath(dir) {
		return gsPrefix + path.Join(strings.TrimPrefix(dir, gsPrefix), name)
	}

	return filepath.Join(dir, name)
}

// Open returns a reader over a local file or, if the path begins with gs://
// and a client is supplied, over a Google Storage object. The caller must
// close it.
func Open(ctx context.Context, filePath string, client *storage.Client) (io.ReadCloser, error) {
	if IsGoogleStoragePath(filePath) {
		if client == nil {
			return nil, fmt.Errorf("%s: a Google Storage client is required for gs:// paths", filePath)
		}

		bucketName, objectName, err := SplitGoogleStoragePath(filePath)
		if err != nil {
			return nil, pfx.Err(err)
		}

		rdr, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filePath, err)
		}

		return rdr, nil
	}

	// The *PathError from os.Open already names the file.
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// OpenData is Open followed by MaybeDecompress. Closing the result closes
// both the decompressor and the underlying file.
func OpenData(ctx context.Context, filePath string, client *storage.Client) (io.ReadCloser, error) {
	raw, err := Open(ctx, filePath, client)
	if err != nil {
		return nil, err
	}

	dec, _, err := MaybeDecompress(raw)
	if err != nil {
		raw.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", filePath, err))
	}

	return &stackedCloser{Reader: dec, closers: []io.Closer{dec, raw}}, nil
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
