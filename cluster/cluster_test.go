package cluster

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

var fourPoints = [][]float64{{0}, {10}, {1}, {11}}

func TestDistances(t *testing.T) {
	for _, v := range []struct {
		Metric   Metric
		X, Y     []float64
		Expected float64
	}{
		{Euclidean, []float64{0, 0}, []float64{3, 4}, 5},
		{Manhattan, []float64{0, 0}, []float64{3, 4}, 7},
		{Correlation, []float64{1, 2, 3}, []float64{2, 4, 6}, 0},
		{Correlation, []float64{1, 2, 3}, []float64{3, 2, 1}, 2},
		{Correlation, []float64{1, 1, 1}, []float64{3, 2, 1}, 1},
		// One coordinate is skipped and the rest is scaled up by 2/1.
		{Euclidean, []float64{1, math.NaN()}, []float64{0, 0}, math.Sqrt2},
		{Manhattan, []float64{1, math.NaN()}, []float64{0, 0}, 2},
	} {
		d := Distances([][]float64{v.X, v.Y}, v.Metric)
		if got := d.At(0, 1); math.Abs(got-v.Expected) > 1e-12 {
			t.Errorf("%s(%v, %v): expected %v, got %v", v.Metric, v.X, v.Y, v.Expected, got)
		}
	}
}

func TestDistancesWithNothingInCommon(t *testing.T) {
	rows := [][]float64{{1, math.NaN()}, {math.NaN(), 2}, {0, 0}}
	d := Distances(rows, Euclidean)

	if got, want := d.At(0, 1), math.Sqrt(8); math.Abs(got-want) > 1e-12 {
		t.Errorf("Expected the undefined pair to get the largest distance %v, got %v", want, got)
	}
}

func TestClusterOrder(t *testing.T) {
	tree, err := Cluster(fourPoints, Euclidean, Complete)
	if err != nil {
		t.Fatal(err)
	}

	if len(tree.Merges) != 3 {
		t.Fatalf("Expected 3 merges, got %d", len(tree.Merges))
	}
	if got := tree.Order(); !reflect.DeepEqual(got, []int{0, 2, 1, 3}) {
		t.Errorf("Unexpected order %v", got)
	}
	if h := tree.Height(tree.Root()); h != 11 {
		t.Errorf("Expected a complete-linkage root height of 11, got %v", h)
	}

	expected := []Merge{
		{A: 0, B: 2, Height: 1, Size: 2},
		{A: 1, B: 3, Height: 1, Size: 2},
		{A: 4, B: 5, Height: 11, Size: 4},
	}
	if !reflect.DeepEqual(tree.Merges, expected) {
		t.Errorf("Expected merges %+v, got %+v", expected, tree.Merges)
	}
}

func TestLinkageRootHeight(t *testing.T) {
	for _, v := range []struct {
		Linkage  Linkage
		Expected float64
	}{
		{Complete, 11},
		{Average, 10},
		{Single, 9},
	} {
		tree, err := Cluster(fourPoints, Euclidean, v.Linkage)
		if err != nil {
			t.Fatal(err)
		}
		if h := tree.Height(tree.Root()); math.Abs(h-v.Expected) > 1e-12 {
			t.Errorf("%s: expected root height %v, got %v", v.Linkage, v.Expected, h)
		}
	}
}

func TestCut(t *testing.T) {
	tree, err := Cluster(fourPoints, Euclidean, Complete)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []struct {
		K        int
		Expected []int
	}{
		{1, []int{1, 1, 1, 1}},
		{2, []int{1, 2, 1, 2}},
		{4, []int{1, 2, 3, 4}},
	} {
		got, err := tree.Cut(v.K)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, v.Expected) {
			t.Errorf("Cut(%d): expected %v, got %v", v.K, v.Expected, got)
		}
	}

	if _, err := tree.Cut(5); err == nil {
		t.Error("Expected an error cutting into more groups than leaves")
	}
}

func TestClusterDegenerate(t *testing.T) {
	if _, err := Cluster(nil, Euclidean, Complete); err == nil {
		t.Error("Expected an error for zero rows")
	}

	tree, err := Cluster([][]float64{{1, 2}}, Euclidean, Complete)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Merges) != 0 || !reflect.DeepEqual(tree.Order(), []int{0}) {
		t.Errorf("Unexpected single-row tree %+v", tree)
	}
}

func TestParse(t *testing.T) {
	if m, err := ParseMetric("Pearson"); err != nil || m != Correlation {
		t.Errorf("ParseMetric: got %v, %v", m, err)
	}
	if _, err := ParseMetric("cosine"); err == nil {
		t.Error("Expected an error for an unknown metric")
	}
	if l, err := ParseLinkage(""); err != nil || l != Complete {
		t.Errorf("ParseLinkage: got %v, %v", l, err)
	}
	if _, err := ParseLinkage("ward"); err == nil {
		t.Error("Expected an error for an unknown linkage")
	}
}

func TestFromDistancesDegenerate(t *testing.T) {
	inf := math.Inf(1)
	for _, v := range []struct {
		Name     string
		Value    float64
		Expected float64
	}{
		{"all infinite", inf, inf},
		{"all zero", 0, 0},
		{"all undefined", math.NaN(), math.NaN()},
	} {
		const n = 4
		dist := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dist.SetSym(i, j, v.Value)
			}
		}

		tree := FromDistances(dist, Complete)
		if len(tree.Merges) != n-1 {
			t.Fatalf("%s: expected %d merges, got %d", v.Name, n-1, len(tree.Merges))
		}

		// Ties resolve to the first pair, so the order is the input order.
		if got := tree.Order(); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
			t.Errorf("%s: unexpected order %v", v.Name, got)
		}
		h := tree.Height(tree.Root())
		if h != v.Expected && !(math.IsNaN(h) && math.IsNaN(v.Expected)) {
			t.Errorf("%s: expected root height %v, got %v", v.Name, v.Expected, h)
		}
		if got, err := tree.Cut(2); err != nil || len(got) != n {
			t.Errorf("%s: Cut(2) gave %v, %v", v.Name, got, err)
		}
	}
}

func TestClusterExtremeValues(t *testing.T) {
	for _, v := range []struct {
		Name string
		Rows [][]float64
	}{
		{"overflowing squares", [][]float64{{1e200, 1}, {-1e200, 1}, {0, 0}}},
		{"a row with nothing present", [][]float64{{math.NaN(), math.NaN()}, {1, 2}, {3, 4}}},
	} {
		for _, metric := range []Metric{Euclidean, Manhattan, Correlation} {
			tree, err := Cluster(v.Rows, metric, Complete)
			if err != nil {
				t.Fatalf("%s/%s: %v", v.Name, metric, err)
			}
			if got := len(tree.Order()); got != len(v.Rows) {
				t.Errorf("%s/%s: expected %d leaves, got %d", v.Name, metric, len(v.Rows), got)
			}
		}
	}

	d := Distances([][]float64{{1e200, 1}, {-1e200, 1}}, Euclidean)
	if got := d.At(0, 1); math.IsInf(got, 0) || math.Abs(got-2e200)/2e200 > 1e-12 {
		t.Errorf("Expected a finite distance of 2e200, got %v", got)
	}
}
