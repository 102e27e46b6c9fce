// dereport filters numbered annotation tables (fmeta1.csv, fmeta2.csv, ...)
// by adjusted significance and draws a clustered heatmap of the expression
// data (MAdata1.csv, ...) for each index with at least one significant row.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dereport"
	"github.com/carbocation/dereport/compileinfo"
	"github.com/carbocation/dereport/report"
)

func main() {
	compileinfo.Fprint(os.Stderr)

	cfg, err := configure(os.Args[1:])
	if err == flag.ErrHelp {
		os.Exit(0)
	} else if err != nil {
		log.Fatalln(err)
	}

	if cfg.Dir, err = dereport.ExpandHome(cfg.Dir); err != nil {
		log.Fatalln(err)
	}
	if cfg.OutDir, err = dereport.ExpandHome(cfg.OutDir); err != nil {
		log.Fatalln(err)
	}

	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	ctx := context.Background()
	var client *storage.Client
	if dereport.IsGoogleStoragePath(cfg.Dir) {
		client, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		log.Fatalln(err)
	}

	reporter, err := report.New(cfg, client, os.Stdout, log.Default())
	if err != nil {
		log.Fatalln(err)
	}

	failed := 0
	for _, res := range reporter.Run(ctx) {
		if res.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		log.Printf("%d of %d indices failed\n", failed, cfg.End-cfg.Start+1)
		// os.Exit skips deferred calls.
		if client != nil {
			client.Close()
		}
		os.Exit(1)
	}
}
