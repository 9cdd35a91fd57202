package geometry

import (
	"math"
	"sort"
)

// Axis selects the query axis for FindSubboxesByAxis.
type Axis int

const (
	// AxisX matches boxes sharing a horizontal band with the target.
	AxisX Axis = iota
	// AxisY matches boxes sharing a vertical band with the target.
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Intersect returns the intersection of a and b. Boxes that only touch at an
// edge are disjoint.
func Intersect(a, b Box) (Box, bool) {
	if a.Y1 <= b.Y0 || b.Y1 <= a.Y0 || a.X1 <= b.X0 || b.X1 <= a.X0 {
		return Box{}, false
	}
	return Box{
		X0: math.Max(a.X0, b.X0),
		Y0: math.Max(a.Y0, b.Y0),
		X1: math.Min(a.X1, b.X1),
		Y1: math.Min(a.Y1, b.Y1),
	}, true
}

// OverlapRatio returns the intersection area divided by the smaller of the two
// box areas. Disjoint or degenerate boxes score 0.
func OverlapRatio(a, b Box) float64 {
	inter, ok := Intersect(a, b)
	if !ok {
		return 0
	}
	minArea := math.Min(a.Area(), b.Area())
	if minArea <= 0 {
		return 0
	}
	return inter.Area() / minArea
}

// FindIntersected returns every candidate whose overlap ratio with target is
// strictly above threshold, sorted ascending by score.
func FindIntersected(target Box, candidates []Box, threshold float64) []BoxMatch {
	matches := make([]BoxMatch, 0)
	for _, c := range candidates {
		score := OverlapRatio(c, target)
		if score > threshold {
			matches = append(matches, BoxMatch{Box: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score < matches[j].Score
	})
	return matches
}

// FindSubboxesByAxis returns the candidates aligned with target along the
// query axis. For each candidate, target takes over the candidate's extent on
// the query axis before the overlap ratio is computed, so only the extent on
// the other axis decides the match. Results are ordered ascending by the sum
// of the candidate's two coordinates on the query axis.
func FindSubboxesByAxis(axis Axis, target Box, candidates []Box, threshold float64) []Box {
	matched := make([]Box, 0)
	for _, c := range candidates {
		projected := target
		if axis == AxisX {
			projected.X0, projected.X1 = c.X0, c.X1
		} else {
			projected.Y0, projected.Y1 = c.Y0, c.Y1
		}
		if OverlapRatio(c, projected) > threshold {
			matched = append(matched, c)
		}
	}

	key := func(b Box) float64 {
		if axis == AxisX {
			return b.X0 + b.X1
		}
		return b.Y0 + b.Y1
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return key(matched[i]) < key(matched[j])
	})
	return matched
}
