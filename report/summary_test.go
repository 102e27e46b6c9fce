package report

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/dereport/table"
	"github.com/gocarina/gocsv"
)

func TestSummarizeBH(t *testing.T) {
	lowest, median := SummarizeBH([]float64{0.04, 0.001, 0.02})
	if lowest != 0.001 || median != 0.02 {
		t.Errorf("Expected 0.001 and 0.02, got %v and %v", lowest, median)
	}

	lowest, median = SummarizeBH(nil)
	if !math.IsNaN(lowest) || !math.IsNaN(median) {
		t.Errorf("Expected NaN for no values, got %v and %v", lowest, median)
	}
}

func TestWriteSelection(t *testing.T) {
	annot, err := table.ReadAnnotation(strings.NewReader("id,symbol,bh\ng1,TP53,0.01\ng2,MYC,0.5\ng3,,0.002\n"), table.Options{Comma: ','})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "significant1.csv")
	if err := WriteSelection(path, annot, table.Select(annot, 0.05)); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var rows []*significantRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if *rows[0] != (significantRow{Key: "g1", Name: "TP53", BH: 0.01}) {
		t.Errorf("Unexpected first row %+v", *rows[0])
	}
	if rows[1].Key != "g3" || rows[1].BH != 0.002 {
		t.Errorf("Unexpected second row %+v", *rows[1])
	}
}

func TestLogHistogram(t *testing.T) {
	annot, err := table.ReadAnnotation(strings.NewReader("id,bh\ng1,0.01\ng2,0.5\ng3,NA\n"), table.Options{Comma: ','})
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := LogHistogram(&sb, annot); err != nil {
		t.Fatal(err)
	}
	if sb.Len() == 0 {
		t.Error("Expected a histogram")
	}
}

func TestWriteSummaryChartNeedsRows(t *testing.T) {
	dir := t.TempDir()

	for name, results := range map[string][]Result{
		"no successes": {{Index: 1, Err: errors.New("boom")}},
		"zero total":   {{Index: 1}, {Index: 2}},
	} {
		path := filepath.Join(dir, "summary.png")
		if err := WriteSummaryChart(path, results); err == nil {
			t.Errorf("%s: expected an error", name)
		}
		if exists(path) {
			t.Errorf("%s: no chart should be written", name)
		}
	}
}
