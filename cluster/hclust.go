package cluster

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Linkage int

const (
	Complete Linkage = iota
	Average
	Single
)

func (l Linkage) String() string {
	switch l {
	case Complete:
		return "complete"
	case Average:
		return "average"
	case Single:
		return "single"
	}

	return fmt.Sprintf("Linkage(%d)", int(l))
}

func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(s) {
	case "", "complete":
		return Complete, nil
	case "average", "upgma":
		return Average, nil
	case "single":
		return Single, nil
	}

	return Complete, fmt.Errorf("unknown linkage %q", s)
}

// Merge joins nodes A and B at Height. Leaves are nodes 0..N-1; the k-th
// merge creates node N+k. A is the child holding the lower-numbered leaf.
type Merge struct {
	A, B   int
	Height float64
	Size   int
}

type Tree struct {
	N      int
	Merges []Merge
}

// Cluster builds a tree over the rows. A single row yields a tree with no
// merges.
func Cluster(rows [][]float64, metric Metric, linkage Linkage) (*Tree, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot cluster zero observations")
	}

	return FromDistances(Distances(rows, metric), linkage), nil
}

// FromDistances runs agglomerative clustering on a precomputed distance
// matrix using Lance-Williams updates.
func FromDistances(dist mat.Symmetric, linkage Linkage) *Tree {
	n := dist.Symmetric()
	t := &Tree{N: n}
	if n < 2 {
		return t
	}
	t.Merges = make([]Merge, 0, n-1)

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = dist.At(i, j)
		}
	}

	// Active clusters, identified by their slot in d.
	active := make([]bool, n)
	node := make([]int, n)
	size := make([]int, n)
	minLeaf := make([]int, n)
	for i := range active {
		active[i] = true
		node[i] = i
		size[i] = 1
		minLeaf[i] = i
	}

	for step := 0; step < n-1; step++ {
		// The first active pair is always a candidate, so infinite or NaN
		// distances still merge.
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if bi < 0 || d[i][j] < best {
					bi, bj, best = i, j, d[i][j]
				}
			}
		}

		a, b := bi, bj
		if minLeaf[b] < minLeaf[a] {
			a, b = b, a
		}
		t.Merges = append(t.Merges, Merge{
			A:      node[a],
			B:      node[b],
			Height: best,
			Size:   size[bi] + size[bj],
		})

		// Fold bj into bi.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			var v float64
			switch linkage {
			case Single:
				v = math.Min(d[bi][k], d[bj][k])
			case Average:
				v = (float64(size[bi])*d[bi][k] + float64(size[bj])*d[bj][k]) / float64(size[bi]+size[bj])
			default:
				v = math.Max(d[bi][k], d[bj][k])
			}
			d[bi][k], d[k][bi] = v, v
		}

		active[bj] = false
		node[bi] = n + step
		size[bi] += size[bj]
		if minLeaf[bj] < minLeaf[bi] {
			minLeaf[bi] = minLeaf[bj]
		}
	}

	return t
}

// Root is the id of the top node.
func (t *Tree) Root() int {
	if len(t.Merges) == 0 {
		return 0
	}

	return t.N + len(t.Merges) - 1
}

// Children returns the two children of an internal node.
func (t *Tree) Children(id int) (int, int, bool) {
	if id < t.N || id >= t.N+len(t.Merges) {
		return 0, 0, false
	}

	m := t.Merges[id-t.N]
	return m.A, m.B, true
}

// Height is zero for leaves and the merge height otherwise.
func (t *Tree) Height(id int) float64 {
	if id < t.N {
		return 0
	}

	return t.Merges[id-t.N].Height
}

// Order returns the leaves in dendrogram order.
func (t *Tree) Order() []int {
	out := make([]int, 0, t.N)
	if t.N == 0 {
		return out
	}

	stack := []int{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		a, b, internal := t.Children(id)
		if !internal {
			out = append(out, id)
			continue
		}

		// Push B first so that A is visited first.
		stack = append(stack, b, a)
	}

	return out
}

// Cut partitions the leaves into k groups by undoing the last k-1 merges.
// Groups are numbered from 1 in order of their first leaf, as cutree does.
func (t *Tree) Cut(k int) ([]int, error) {
	if k < 1 || k > t.N {
		return nil, fmt.Errorf("cannot cut %d observations into %d groups", t.N, k)
	}

	members := make(map[int][]int, t.N)
	for i := 0; i < t.N; i++ {
		members[i] = []int{i}
	}
	for step := 0; step < t.N-k; step++ {
		m := t.Merges[step]
		members[t.N+step] = append(members[m.A], members[m.B]...)
		delete(members, m.A)
		delete(members, m.B)
	}

	groupOf := make([]int, t.N)
	for _, leaves := range members {
		lowest := leaves[0]
		for _, leaf := range leaves {
			if leaf < lowest {
				lowest = leaf
			}
		}
		for _, leaf := range leaves {
			groupOf[leaf] = -1 - lowest
		}
	}

	out := make([]int, t.N)
	labels := make(map[int]int)
	for i, g := range groupOf {
		if _, seen := labels[g]; !seen {
			labels[g] = len(labels) + 1
		}
		out[i] = labels[g]
	}

	return out, nil
}
