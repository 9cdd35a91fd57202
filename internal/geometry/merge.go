package geometry

// DefaultMergeDistance is the corner distance under which two boxes or points
// are treated as the same.
const DefaultMergeDistance = 3.0

// MergePoints drops every point closer than DefaultMergeDistance to a point
// already kept.
func MergePoints(points []Point) []Point {
	return MergePointsWithin(points, DefaultMergeDistance)
}

// MergePointsWithin is MergePoints with an explicit distance.
func MergePointsWithin(points []Point, dist float64) []Point {
	if len(points) < 2 {
		return points
	}
	kept := make([]Point, 0, len(points))
	for _, p := range points {
		dup := false
		for _, k := range kept {
			if p.Distance(k) < dist {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, p)
		}
	}
	return kept
}

// MergeBoxes drops every box whose top-left and bottom-right corners are both
// closer than DefaultMergeDistance to the corners of a box already kept.
func MergeBoxes(boxes []Box) []Box {
	return MergeBoxesWithin(boxes, DefaultMergeDistance)
}

// MergeBoxesWithin is MergeBoxes with an explicit distance.
func MergeBoxesWithin(boxes []Box, dist float64) []Box {
	if len(boxes) < 2 {
		return boxes
	}
	kept := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		dup := false
		for _, k := range kept {
			if b.Min().Distance(k.Min()) < dist && b.Max().Distance(k.Max()) < dist {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, b)
		}
	}
	return kept
}
