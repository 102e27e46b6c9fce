package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/dereport"
	"github.com/carbocation/dereport/table"
	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/wcharczuk/go-chart/v2"
)

// SummarizeBH returns the smallest and the median of the supplied values, or
// NaN for both when there are none.
func SummarizeBH(bh []float64) (float64, float64) {
	lowest, err := stats.Min(bh)
	if err != nil {
		return math.NaN(), math.NaN()
	}

	median, err := stats.Median(bh)
	if err != nil {
		return lowest, math.NaN()
	}

	return lowest, median
}

const histogramBins = 20

// LogHistogram draws the distribution of non-missing adjusted significance
// values as text.
func LogHistogram(w io.Writer, annot *table.AnnotationTable) error {
	vals := make([]float64, 0, annot.Len())
	for _, bh := range annot.BH {
		if bh.Valid {
			vals = append(vals, bh.Float64)
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("no %s values to plot", annot.BHColumn())
	}

	hist := histogram.Hist(histogramBins, vals)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}

// significantRow is one line of a selection CSV.
type significantRow struct {
	Key  string  `csv:"key"`
	Name string  `csv:"name"`
	BH   float64 `csv:"bh"`
}

// WriteSelection records the selected features, in annotation order.
func WriteSelection(path string, annot *table.AnnotationTable, sel table.Selection) error {
	rows := make([]*significantRow, 0, sel.Len())
	for _, pos := range sel.Positions {
		rows = append(rows, &significantRow{
			Key:  annot.Keys[pos],
			Name: annot.Name(pos),
			BH:   annot.BH[pos].Float64,
		})
	}

	return dereport.WriteFileAtomic(path, func(w io.Writer) error {
		return gocsv.Marshal(&rows, w)
	})
}

// WriteSummaryChart draws a bar per successfully processed index showing how
// many rows were selected.
func WriteSummaryChart(path string, results []Result) error {
	bars := make([]chart.Value, 0, len(results))
	total := 0
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		bars = append(bars, chart.Value{Value: float64(res.Selected), Label: strconv.Itoa(res.Index)})
		total += res.Selected
	}
	if len(bars) == 0 {
		return fmt.Errorf("no index was processed successfully")
	}
	if total == 0 {
		// go-chart refuses a zero-height value range.
		return fmt.Errorf("no index had any significant rows")
	}

	graph := chart.BarChart{
		Title: "Significant rows per index",
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:    128 + 64*len(bars),
		Height:   384,
		BarWidth: 40,
		Bars:     bars,
	}

	return dereport.WriteFileAtomic(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}
