package main

import (
	"flag"

	"github.com/carbocation/dereport/cluster"
	"github.com/carbocation/dereport/heatmap"
	"github.com/carbocation/dereport/report"
	"github.com/carbocation/dereport/table"
)

// configure builds the run configuration from the defaults, an optional
// -config file, and then whichever flags were set explicitly.
func configure(args []string) (report.Config, error) {
	defaults := report.DefaultConfig()

	var configPath, dir, outDir, format, bhColumn, nameColumn, delimiter, distance, linkage, low, mid, high, summary string
	var start, end int
	var threshold float64
	var noClusterRows, noClusterCols, noScale, noLabels, writeSelection, histogram bool

	fs := flag.NewFlagSet("dereport", flag.ContinueOnError)

	fs.StringVar(&configPath, "config", "", "Optional JSON config file. Flags that are set explicitly override its values.")
	fs.StringVar(&dir, "dir", defaults.Dir, "Folder (or gs://bucket/prefix) containing the fmetaN.csv and MAdataN.csv files")
	fs.StringVar(&outDir, "out", defaults.OutDir, "Local folder where heatmaps are written")
	fs.IntVar(&start, "start", defaults.Start, "First index to process")
	fs.IntVar(&end, "end", defaults.End, "Last index to process (inclusive)")
	fs.Float64Var(&threshold, "threshold", defaults.Threshold, "Rows with an adjusted significance strictly below this value are selected")
	fs.StringVar(&format, "format", string(defaults.Format), "Heatmap image format: pdf, svg or png")
	fs.StringVar(&bhColumn, "bh", defaults.Table.BHColumn, "Name of the adjusted significance column in the annotation file")
	fs.StringVar(&nameColumn, "name", "", "Annotation column holding feature names for heatmap labels. If empty, a column named gene, symbol or name is used when present.")
	fs.StringVar(&delimiter, "delimiter", "", "Field delimiter of the input files. If empty, it is detected.")
	fs.BoolVar(&noClusterRows, "no-cluster-rows", false, "Keep the annotation order of rows instead of clustering them")
	fs.BoolVar(&noClusterCols, "no-cluster-cols", false, "Keep the file order of samples instead of clustering them")
	fs.BoolVar(&noScale, "no-scale", false, "Colour raw intensities instead of per-row z-scores")
	fs.BoolVar(&noLabels, "no-labels", false, "Omit row and column labels")
	fs.StringVar(&distance, "distance", defaults.Heatmap.Metric.String(), "Clustering distance: euclidean, manhattan or correlation")
	fs.StringVar(&linkage, "linkage", defaults.Heatmap.Linkage.String(), "Clustering linkage: complete, average or single")
	fs.StringVar(&low, "low", "#2166ac", "Hex colour for the lowest values")
	fs.StringVar(&mid, "mid", "#f7f7f7", "Hex colour for the middle of the scale")
	fs.StringVar(&high, "high", "#b2182b", "Hex colour for the highest values")
	fs.BoolVar(&writeSelection, "selection", false, "Also write the selected rows of each index to significantN.csv")
	fs.StringVar(&summary, "summary", "", "If set, path of a PNG bar chart of selected rows per index")
	fs.BoolVar(&histogram, "histogram", false, "Log a text histogram of adjusted significance values for each index")

	if err := fs.Parse(args); err != nil {
		return defaults, err
	}

	cfg := defaults
	if configPath != "" {
		var err error
		cfg, err = report.ParseConfigFromPath(configPath)
		if err != nil {
			return cfg, err
		}
	}

	// Explicit flags win over the config file, one field at a time.
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "dir":
			cfg.Dir = dir
		case "out":
			cfg.OutDir = outDir
		case "start":
			cfg.Start = start
		case "end":
			cfg.End = end
		case "threshold":
			cfg.Threshold = threshold
		case "format":
			cfg.Format, err = heatmap.ParseFormat(format)
		case "bh":
			cfg.Table.BHColumn = bhColumn
		case "name":
			cfg.Table.NameColumn = nameColumn
		case "delimiter":
			cfg.Table.Comma, err = table.ParseDelimiter(delimiter)
		case "no-cluster-rows":
			cfg.Heatmap.ClusterRows = !noClusterRows
		case "no-cluster-cols":
			cfg.Heatmap.ClusterCols = !noClusterCols
		case "no-scale":
			cfg.Heatmap.ScaleRows = !noScale
		case "no-labels":
			cfg.Heatmap.Labels = !noLabels
		case "distance":
			cfg.Heatmap.Metric, err = cluster.ParseMetric(distance)
		case "linkage":
			cfg.Heatmap.Linkage, err = cluster.ParseLinkage(linkage)
		case "low":
			cfg.Heatmap.Palette.Low, err = heatmap.ParseColor(low)
		case "mid":
			cfg.Heatmap.Palette.Mid, err = heatmap.ParseColor(mid)
		case "high":
			cfg.Heatmap.Palette.High, err = heatmap.ParseColor(high)
		case "selection":
			cfg.WriteSelection = writeSelection
		case "summary":
			cfg.SummaryChart = summary
		case "histogram":
			cfg.Histogram = histogram
		}
	})

	return cfg, err
}
