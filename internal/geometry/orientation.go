package geometry

import "strings"

// Orientation is a set of directions describing where a box lies relative to
// an anchor. Several directions may hold at once.
type Orientation uint8

const (
	Down  Orientation = 1 << iota // box center at or below the anchor's bottom edge
	Up                            // anchor center at or above the box's bottom edge
	Right                         // box center at or right of the anchor's right edge
	Left                          // anchor center at or right of the box's right edge
)

// Has reports whether every direction in o2 is present in o.
func (o Orientation) Has(o2 Orientation) bool {
	return o2 != 0 && o&o2 == o2
}

func (o Orientation) String() string {
	if o == 0 {
		return "none"
	}
	names := make([]string, 0, 4)
	for _, d := range []struct {
		o    Orientation
		name string
	}{{Down, "down"}, {Up, "up"}, {Right, "right"}, {Left, "left"}} {
		if o&d.o != 0 {
			names = append(names, d.name)
		}
	}
	return strings.Join(names, "|")
}

// RelativeOrientation compares the center of box against the edges of anchor.
func RelativeOrientation(anchor, box Box) Orientation {
	var o Orientation
	ac := anchor.Center()
	bc := box.Center()

	if bc.Y >= anchor.Y1 {
		o |= Down
	}
	if ac.Y >= box.Y1 {
		o |= Up
	}
	if bc.X >= anchor.X1 {
		o |= Right
	}
	if ac.X >= box.X1 {
		o |= Left
	}
	return o
}
