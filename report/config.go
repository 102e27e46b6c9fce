package report

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/carbocation/dereport"
	"github.com/carbocation/dereport/cluster"
	"github.com/carbocation/dereport/heatmap"
	"github.com/carbocation/dereport/table"
	"github.com/carbocation/pfx"
)

const DefaultThreshold = 0.05

type Config struct {
	// Dir holds the inputs; it may be a gs:// prefix. OutDir is always local.
	Dir    string
	OutDir string

	// Indices Start through End, inclusive, are processed.
	Start int
	End   int

	// Rows with an adjusted significance strictly below Threshold are
	// selected.
	Threshold float64

	Format heatmap.Format

	// Printf-style patterns taking the index.
	AnnotationPattern string
	ExpressionPattern string
	OutputPattern     string
	SelectionPattern  string

	Table   table.Options
	Heatmap heatmap.Options

	// WriteSelection also writes the selected rows of each index as CSV.
	WriteSelection bool

	// SummaryChart, if set, names a PNG bar chart of selected rows per index.
	SummaryChart string

	// Histogram logs a text histogram of each index's adjusted significance
	// values.
	Histogram bool
}

func DefaultConfig() Config {
	return Config{
		Dir:               ".",
		OutDir:            ".",
		Start:             1,
		End:               3,
		Threshold:         DefaultThreshold,
		Format:            heatmap.PDF,
		AnnotationPattern: "fmeta%d.csv",
		ExpressionPattern: "MAdata%d.csv",
		OutputPattern:     "heatmap%d",
		SelectionPattern:  "significant%d.csv",
		Table:             table.Options{BHColumn: table.DefaultBHColumn},
		Heatmap:           heatmap.DefaultOptions(),
	}
}

func (c Config) Validate() error {
	if !(c.Threshold > 0 && c.Threshold <= 1) {
		return fmt.Errorf("threshold must lie in (0,1], got %v", c.Threshold)
	}
	if c.Start > c.End {
		return fmt.Errorf("start index %d is after end index %d", c.Start, c.End)
	}
	if _, err := heatmap.ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if dereport.IsGoogleStoragePath(c.OutDir) {
		return fmt.Errorf("output directory must be local, got %s", c.OutDir)
	}
	patterns := map[string]string{
		"annotation": c.AnnotationPattern,
		"expression": c.ExpressionPattern,
		"output":     c.OutputPattern,
	}
	if c.WriteSelection {
		patterns["selection"] = c.SelectionPattern
	}
	for name, pattern := range patterns {
		if !strings.Contains(pattern, "%d") {
			return fmt.Errorf("%s file pattern %q needs a %%d for the index", name, pattern)
		}
	}

	return nil
}

func (c Config) AnnotationPath(i int) string {
	return dereport.JoinPath(c.Dir, fmt.Sprintf(c.AnnotationPattern, i))
}

func (c Config) ExpressionPath(i int) string {
	return dereport.JoinPath(c.Dir, fmt.Sprintf(c.ExpressionPattern, i))
}

func (c Config) OutputPath(i int) string {
	return dereport.JoinPath(c.OutDir, fmt.Sprintf(c.OutputPattern, i)+c.Format.Ext())
}

func (c Config) SelectionPath(i int) string {
	return dereport.JoinPath(c.OutDir, fmt.Sprintf(c.SelectionPattern, i))
}

// FileConfig is the JSON form of Config. Absent fields keep their defaults.
type FileConfig struct {
	Dir               *string  `json:"dir"`
	OutDir            *string  `json:"out_dir"`
	Start             *int     `json:"start"`
	End               *int     `json:"end"`
	Threshold         *float64 `json:"threshold"`
	Format            *string  `json:"format"`
	AnnotationPattern *string  `json:"annotation_pattern"`
	ExpressionPattern *string  `json:"expression_pattern"`
	OutputPattern     *string  `json:"output_pattern"`
	SelectionPattern  *string  `json:"selection_pattern"`
	BHColumn          *string  `json:"bh_column"`
	NameColumn        *string  `json:"name_column"`
	Delimiter         *string  `json:"delimiter"`
	ClusterRows       *bool    `json:"cluster_rows"`
	ClusterCols       *bool    `json:"cluster_cols"`
	ScaleRows         *bool    `json:"scale_rows"`
	Labels            *bool    `json:"labels"`
	Distance          *string  `json:"distance"`
	Linkage           *string  `json:"linkage"`
	Palette           []string `json:"palette"`
	WriteSelection    *bool    `json:"write_selection"`
	SummaryChart      *string  `json:"summary_chart"`
	Histogram         *bool    `json:"histogram"`
}

// ParseConfigFromPath reads a JSON config file and applies it over
// DefaultConfig.
func ParseConfigFromPath(path string) (Config, error) {
	path, err := dereport.ExpandHome(path)
	if err != nil {
		return Config{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	return ParseConfig(f)
}

func ParseConfig(r io.Reader) (Config, error) {
	out := DefaultConfig()

	var fc FileConfig
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
		return out, pfx.Err(err)
	}

	if err := fc.Apply(&out); err != nil {
		return out, err
	}

	return out, nil
}

// Apply copies every set field onto c.
func (fc FileConfig) Apply(c *Config) error {
	setString(&c.Dir, fc.Dir)
	setString(&c.OutDir, fc.OutDir)
	setString(&c.AnnotationPattern, fc.AnnotationPattern)
	setString(&c.ExpressionPattern, fc.ExpressionPattern)
	setString(&c.OutputPattern, fc.OutputPattern)
	setString(&c.SelectionPattern, fc.SelectionPattern)
	setString(&c.Table.BHColumn, fc.BHColumn)
	setString(&c.Table.NameColumn, fc.NameColumn)
	setString(&c.SummaryChart, fc.SummaryChart)

	if fc.Start != nil {
		c.Start = *fc.Start
	}
	if fc.End != nil {
		c.End = *fc.End
	}
	if fc.Threshold != nil {
		c.Threshold = *fc.Threshold
	}
	if fc.ClusterRows != nil {
		c.Heatmap.ClusterRows = *fc.ClusterRows
	}
	if fc.ClusterCols != nil {
		c.Heatmap.ClusterCols = *fc.ClusterCols
	}
	if fc.ScaleRows != nil {
		c.Heatmap.ScaleRows = *fc.ScaleRows
	}
	if fc.Labels != nil {
		c.Heatmap.Labels = *fc.Labels
	}
	if fc.WriteSelection != nil {
		c.WriteSelection = *fc.WriteSelection
	}
	if fc.Histogram != nil {
		c.Histogram = *fc.Histogram
	}

	var err error
	if fc.Delimiter != nil {
		if c.Table.Comma, err = table.ParseDelimiter(*fc.Delimiter); err != nil {
			return err
		}
	}
	if fc.Format != nil {
		if c.Format, err = heatmap.ParseFormat(*fc.Format); err != nil {
			return err
		}
	}
	if fc.Distance != nil {
		if c.Heatmap.Metric, err = cluster.ParseMetric(*fc.Distance); err != nil {
			return err
		}
	}
	if fc.Linkage != nil {
		if c.Heatmap.Linkage, err = cluster.ParseLinkage(*fc.Linkage); err != nil {
			return err
		}
	}
	if len(fc.Palette) > 0 {
		if len(fc.Palette) != 3 {
			return fmt.Errorf("palette needs 3 colours (low, mid, high), got %d", len(fc.Palette))
		}
		if c.Heatmap.Palette, err = heatmap.ParsePalette(fc.Palette[0], fc.Palette[1], fc.Palette[2]); err != nil {
			return err
		}
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
