package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/dereport/heatmap"
	"github.com/carbocation/dereport/table"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func testConfig(dir string) Config {
	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.OutDir = dir
	cfg.Format = heatmap.PNG

	return cfg
}

func newTestReporter(t *testing.T, cfg Config, out io.Writer) *Reporter {
	t.Helper()

	r, err := New(cfg, nil, out, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}

	return r
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProcessIndexDrawsSignificantRows(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"fmeta2.csv":  "\"\",\"gene\",\"bh\"\n\"g1\",\"TP53\",0.01\n\"g2\",\"MYC\",0.5\n\"g3\",\"EGFR\",0.02\n",
		"MAdata2.csv": "\"\",\"s1\",\"s2\",\"s3\"\n\"g3\",1,2,3\n\"g1\",4,5,7\n\"g2\",0,0,0\n",
	})

	var out bytes.Buffer
	r := newTestReporter(t, testConfig(dir), &out)

	res := r.ProcessIndex(context.Background(), 2)
	if res.Err != nil {
		t.Fatal(res.Err)
	}

	if res.Rows != 3 || res.Selected != 2 {
		t.Errorf("Expected 2 of 3 rows selected, got %d of %d", res.Selected, res.Rows)
	}
	if res.MinBH != 0.01 {
		t.Errorf("Expected smallest bh 0.01, got %v", res.MinBH)
	}
	if res.Output != filepath.Join(dir, "heatmap2.png") || !exists(res.Output) {
		t.Errorf("Expected heatmap2.png to be written, got %q", res.Output)
	}

	expected := "Processing fmeta2.csv\n2 of 3 rows have bh < 0.05\nHeatmap saved to heatmap2.png\n"
	if out.String() != expected {
		t.Errorf("Expected output\n%s\ngot\n%s", expected, out.String())
	}
}

func TestProcessIndexNoneFound(t *testing.T) {
	dir := t.TempDir()
	// No expression file: it must not be needed.
	writeFiles(t, dir, map[string]string{
		"fmeta3.csv": "id,bh\ng1,0.05\ng2,0.9\ng3,NA\n",
	})

	var out bytes.Buffer
	r := newTestReporter(t, testConfig(dir), &out)

	res := r.ProcessIndex(context.Background(), 3)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Selected != 0 || res.Output != "" {
		t.Errorf("Unexpected result %+v", res)
	}
	if exists(filepath.Join(dir, "heatmap3.png")) {
		t.Error("No heatmap should be written when nothing is significant")
	}
	if !strings.Contains(out.String(), NoneFoundMessage) {
		t.Errorf("Expected %q in %q", NoneFoundMessage, out.String())
	}
}

func TestProcessIndexHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"fmeta1.csv": "id,bh\n"})

	var out bytes.Buffer
	res := newTestReporter(t, testConfig(dir), &out).ProcessIndex(context.Background(), 1)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if !strings.Contains(out.String(), NoneFoundMessage) {
		t.Errorf("Expected %q in %q", NoneFoundMessage, out.String())
	}
}

func TestProcessIndexMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"fmeta1.csv":  "id,bh\ng1,0.01\ng2,0.5\n",
		"MAdata1.csv": "id,s1,s2\ng1,1,2\ng2,3,4\ng3,5,6\n",
	})

	res := newTestReporter(t, testConfig(dir), nil).ProcessIndex(context.Background(), 1)
	if res.Kind() != KindMismatch {
		t.Fatalf("Expected a mismatch, got %v (%v)", res.Kind(), res.Err)
	}
	var me *table.MismatchError
	if !errors.As(res.Err, &me) {
		t.Errorf("Expected a MismatchError in the chain of %v", res.Err)
	}
	if exists(filepath.Join(dir, "heatmap1.png")) {
		t.Error("No heatmap should be written for mismatched inputs")
	}
}

func TestProcessIndexParseError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"fmeta1.csv": "id,pvalue\ng1,0.01\n"})

	res := newTestReporter(t, testConfig(dir), nil).ProcessIndex(context.Background(), 1)
	if res.Kind() != KindParse {
		t.Errorf("Expected a parse error, got %v (%v)", res.Kind(), res.Err)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"fmeta1.csv":  "id,bh\ng1,0.01\ng2,0.02\n",
		"MAdata1.csv": "id,s1,s2\ng1,1,2\ng2,2,1\n",
		// fmeta2.csv is absent.
		"fmeta3.csv": "id,bh\ng1,0.5\n",
	})

	cfg := testConfig(dir)
	cfg.WriteSelection = true
	cfg.SummaryChart = filepath.Join(dir, "summary.png")

	var out bytes.Buffer
	results := newTestReporter(t, cfg, &out).Run(context.Background())
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	for i, want := range []Kind{KindNone, KindFileNotFound, KindNone} {
		if got := results[i].Kind(); got != want {
			t.Errorf("Index %d: expected %v, got %v (%v)", i+1, want, got, results[i].Err)
		}
	}

	if !exists(filepath.Join(dir, "heatmap1.png")) || exists(filepath.Join(dir, "heatmap3.png")) {
		t.Error("Expected only heatmap1.png to be written")
	}
	if results[0].SelectionFile == "" || !exists(results[0].SelectionFile) {
		t.Error("Expected a selection file for index 1")
	}
	if !exists(cfg.SummaryChart) {
		t.Error("Expected a summary chart")
	}
	if !strings.Contains(out.String(), "Error processing fmeta2.csv") {
		t.Errorf("Expected the failure to be reported, got %q", out.String())
	}
}

func TestNewRequiresStorageClientForBuckets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = "gs://bucket/prefix"

	if _, err := New(cfg, nil, nil, nil); err == nil {
		t.Error("Expected an error without a storage client")
	}
}

func TestProcessIndexExtremeValues(t *testing.T) {
	for _, v := range []struct {
		Name       string
		Expression string
		Kind       Kind
	}{
		{"infinite cell", "id,s1,s2\ng1,Inf,1\ng2,0,1\n", KindParse},
		{"huge but finite", "id,s1,s2\ng1,1e200,1\ng2,-1e200,1\n", KindNone},
		{"constant rows", "id,s1,s2\ng1,1,1\ng2,1,1\n", KindNone},
	} {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"fmeta1.csv":  "id,bh\ng1,0.01\ng2,0.02\n",
			"MAdata1.csv": v.Expression,
		})

		res := newTestReporter(t, testConfig(dir), nil).ProcessIndex(context.Background(), 1)
		if res.Kind() != v.Kind {
			t.Errorf("%s: expected %v, got %v (%v)", v.Name, v.Kind, res.Kind(), res.Err)
		}
		if written := exists(filepath.Join(dir, "heatmap1.png")); written != (v.Kind == KindNone) {
			t.Errorf("%s: heatmap written = %v", v.Name, written)
		}
	}
}
