// Package cluster provides agglomerative hierarchical clustering of the rows
// of a matrix, with the distance and linkage choices of R's dist and hclust.
package cluster

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Metric int

const (
	Euclidean Metric = iota
	Manhattan
	Correlation
)

func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case Manhattan:
		return "manhattan"
	case Correlation:
		return "correlation"
	}

	return fmt.Sprintf("Metric(%d)", int(m))
}

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(s) {
	case "", "euclidean":
		return Euclidean, nil
	case "manhattan":
		return Manhattan, nil
	case "correlation", "pearson":
		return Correlation, nil
	}

	return Euclidean, fmt.Errorf("unknown distance metric %q", s)
}

// Distances returns the symmetric matrix of pairwise distances between rows.
// Coordinates where either row is NaN are skipped, and Euclidean and
// Manhattan sums are rescaled for the skipped coordinates as R does. Pairs
// with nothing in common get the largest distance otherwise observed.
func Distances(rows [][]float64, metric Metric) *mat.SymDense {
	n := len(rows)
	out := mat.NewSymDense(n, nil)

	maxSeen := 0.0
	undefined := make([][2]int, 0)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := distance(rows[i], rows[j], metric)
			if math.IsNaN(d) {
				undefined = append(undefined, [2]int{i, j})
				continue
			}
			if d > maxSeen {
				maxSeen = d
			}
			out.SetSym(i, j, d)
		}
	}

	for _, pair := range undefined {
		out.SetSym(pair[0], pair[1], maxSeen)
	}

	return out
}

func distance(x, y []float64, metric Metric) float64 {
	a, b := completePairs(x, y)
	if len(a) == 0 {
		return math.NaN()
	}

	switch metric {
	case Manhattan:
		return floats.Distance(a, b, 1) * float64(len(x)) / float64(len(a))
	case Correlation:
		r := stat.Correlation(a, b, nil)
		if math.IsNaN(r) {
			// Constant rows carry no correlation either way.
			return 1
		}
		return 1 - r
	}

	// Rescale the norm itself; squaring it first overflows for large values.
	return floats.Distance(a, b, 2) * math.Sqrt(float64(len(x))/float64(len(a)))
}

// completePairs drops coordinates where either slice is NaN.
func completePairs(x, y []float64) ([]float64, []float64) {
	a := make([]float64, 0, len(x))
	b := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		a = append(a, x[k])
		b = append(b, y[k])
	}

	return a, b
}
