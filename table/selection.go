package table

// Selection is the set of annotation rows whose adjusted significance is
// strictly below a threshold, in annotation order.
type Selection struct {
	Threshold float64
	Positions []int

	keys []string
}

// Select returns the rows of a with bh < t. Missing bh values never qualify.
func Select(a *AnnotationTable, t float64) Selection {
	out := Selection{Threshold: t}
	for i, bh := range a.BH {
		if bh.Valid && bh.Float64 < t {
			out.Positions = append(out.Positions, i)
			out.keys = append(out.keys, a.Keys[i])
		}
	}

	return out
}

func (s Selection) Len() int { return len(s.Positions) }

func (s Selection) Empty() bool { return len(s.Positions) == 0 }

// Keys returns the selected row keys.
func (s Selection) Keys() []string {
	return append([]string(nil), s.keys...)
}

// BH returns the adjusted significance of each selected row.
func (s Selection) BH(a *AnnotationTable) []float64 {
	out := make([]float64, 0, len(s.Positions))
	for _, pos := range s.Positions {
		out = append(out, a.BH[pos].Float64)
	}

	return out
}

// Names returns the display name of each selected row.
func (s Selection) Names(a *AnnotationTable) []string {
	out := make([]string, 0, len(s.Positions))
	for _, pos := range s.Positions {
		out = append(out, a.Name(pos))
	}

	return out
}
