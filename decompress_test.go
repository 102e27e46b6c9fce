package dereport

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"io"
	"testing"
)

const sampleCSV = "\"\",bh,gene\ng1,0.01,TP53\ng2,0.2,BRCA1\n"

func TestMaybeDecompress(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(sampleCSV))
	gw.Close()

	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	zw.Write([]byte(sampleCSV))
	zw.Close()

	for _, v := range []struct {
		Name     string
		Input    []byte
		Expected DataType
	}{
		{"plain", []byte(sampleCSV), DataTypeNoCompression},
		{"gzip", gz.Bytes(), DataTypeGzip},
		{"zlib", zl.Bytes(), DataTypeZ},
		{"leading x", []byte("xa,b\n1,2\n"), DataTypeNoCompression},
		{"tiny", []byte("a"), DataTypeNoCompression},
	} {
		rc, dt, err := MaybeDecompress(bytes.NewReader(v.Input))
		if err != nil {
			t.Fatalf("%s: %v", v.Name, err)
		}
		if dt != v.Expected {
			t.Errorf("%s: detected %s, expected %s", v.Name, dt, v.Expected)
		}

		out, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("%s: %v", v.Name, err)
		}
		rc.Close()

		want := sampleCSV
		if v.Expected == DataTypeNoCompression {
			want = string(v.Input)
		}
		if string(out) != want {
			t.Errorf("%s: got %q, expected %q", v.Name, out, want)
		}
	}
}

func TestMaybeDecompressEmpty(t *testing.T) {
	rc, dt, err := MaybeDecompress(bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	if dt != DataTypeNoCompression {
		t.Errorf("Empty input detected as %s", dt)
	}
	if out, _ := io.ReadAll(rc); len(out) != 0 {
		t.Errorf("Expected no bytes, got %q", out)
	}
}
