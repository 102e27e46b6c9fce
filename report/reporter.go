// Package report runs the per-index significance filter: count the features
// whose adjusted significance clears the threshold and draw a heatmap of
// those features when there are any.
package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/carbocation/dereport"
	"github.com/carbocation/dereport/heatmap"
	"github.com/carbocation/dereport/table"
	"github.com/carbocation/pfx"
)

// NoneFoundMessage is printed for an index with nothing below the threshold.
const NoneFoundMessage = "No DE found."

type Result struct {
	Index      int
	Annotation string
	Expression string

	// Rows is the number of annotated features; Selected is how many of them
	// were below the threshold.
	Rows     int
	Selected int
	MinBH    float64
	MedianBH float64

	// Output and SelectionFile are empty unless those files were written.
	Output        string
	SelectionFile string

	Err error
}

func (r Result) Kind() Kind {
	return KindOf(r.Err)
}

type Reporter struct {
	Config Config

	// Storage is only needed when Config.Dir is a gs:// path.
	Storage *storage.Client

	// Out receives the human-facing report; Log receives diagnostics.
	Out io.Writer
	Log *log.Logger
}

func New(cfg Config, client *storage.Client, out io.Writer, logger *log.Logger) (*Reporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dereport.IsGoogleStoragePath(cfg.Dir) && client == nil {
		return nil, fmt.Errorf("a Google Storage client is required to read from %s", cfg.Dir)
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Reporter{Config: cfg, Storage: client, Out: out, Log: logger}, nil
}

// Run processes every configured index in turn. A failing index is logged and
// does not stop the others.
func (r *Reporter) Run(ctx context.Context) []Result {
	results := make([]Result, 0, r.Config.End-r.Config.Start+1)
	for i := r.Config.Start; i <= r.Config.End; i++ {
		res := r.ProcessIndex(ctx, i)
		if res.Err != nil {
			r.Log.Printf("Index %d failed (%s): %v\n", i, res.Kind(), res.Err)
			fmt.Fprintf(r.Out, "Error processing %s: %v\n", filepath.Base(res.Annotation), res.Err)
		}
		results = append(results, res)
	}

	if r.Config.SummaryChart != "" {
		if err := WriteSummaryChart(r.Config.SummaryChart, results); err != nil {
			r.Log.Println("Could not write the summary chart:", err)
		} else {
			fmt.Fprintf(r.Out, "Summary chart saved to %s\n", r.Config.SummaryChart)
		}
	}

	return results
}

// ProcessIndex runs the workflow for a single index. All state is local to
// the call.
func (r *Reporter) ProcessIndex(ctx context.Context, i int) Result {
	cfg := r.Config
	res := Result{
		Index:      i,
		Annotation: cfg.AnnotationPath(i),
		Expression: cfg.ExpressionPath(i),
	}

	fmt.Fprintf(r.Out, "Processing %s\n", filepath.Base(res.Annotation))

	annot, err := r.readAnnotation(ctx, res.Annotation)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", res.Annotation, err)
		return res
	}
	res.Rows = annot.Len()

	if cfg.Histogram {
		if err := LogHistogram(r.Log.Writer(), annot); err != nil {
			r.Log.Println("Could not draw a histogram for", res.Annotation, ":", err)
		}
	}

	sel := table.Select(annot, cfg.Threshold)
	res.Selected = sel.Len()
	if sel.Empty() {
		fmt.Fprintln(r.Out, NoneFoundMessage)
		return res
	}

	res.MinBH, res.MedianBH = SummarizeBH(sel.BH(annot))
	fmt.Fprintf(r.Out, "%d of %d rows have %s < %g\n", res.Selected, res.Rows, annot.BHColumn(), cfg.Threshold)
	r.Log.Printf("Index %d: smallest %s %.3g, median %.3g\n", i, annot.BHColumn(), res.MinBH, res.MedianBH)

	if cfg.WriteSelection {
		path := cfg.SelectionPath(i)
		if err := WriteSelection(path, annot, sel); err != nil {
			res.Err = fmt.Errorf("%s: %w", path, err)
			return res
		}
		res.SelectionFile = path
	}

	expr, err := r.readSelectedExpression(ctx, res.Expression, annot, sel)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", res.Expression, err)
		return res
	}

	opts := cfg.Heatmap
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("%s: %d features with %s < %g", filepath.Base(res.Expression), res.Selected, annot.BHColumn(), cfg.Threshold)
	}
	layout, err := heatmap.NewLayout(expr, sel.Names(annot), opts)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", res.Expression, err)
		return res
	}

	out := cfg.OutputPath(i)
	if err := heatmap.WriteFile(out, layout, cfg.Format); err != nil {
		res.Err = fmt.Errorf("%s: %w", out, err)
		return res
	}
	res.Output = out

	fmt.Fprintf(r.Out, "Heatmap saved to %s\n", filepath.Base(out))

	return res
}

func (r *Reporter) readAnnotation(ctx context.Context, path string) (*table.AnnotationTable, error) {
	f, err := dereport.OpenData(ctx, path, r.Storage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return table.ReadAnnotation(f, r.Config.Table)
}

// readSelectedExpression confirms the expression file describes exactly the
// annotated features and returns the selected rows.
func (r *Reporter) readSelectedExpression(ctx context.Context, path string, annot *table.AnnotationTable, sel table.Selection) (*table.ExpressionMatrix, error) {
	f, err := dereport.OpenData(ctx, path, r.Storage)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(dereport.NewQuoteFixReader(f))
	if err != nil {
		return nil, pfx.Err(err)
	}

	return table.SelectExpression(raw, annot, sel, r.Config.Table)
}
