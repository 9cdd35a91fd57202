package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Point represents a 2D point in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is an axis-aligned rectangle with X0 <= X1 and Y0 <= Y1.
type Box struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewBox creates a box from its corner coordinates.
func NewBox(x0, y0, x1, y1 float64) Box {
	return Box{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// BoxFromSlice builds a box from a [x0, y0, x1, y1] slice.
func BoxFromSlice(v []float64) (Box, error) {
	if len(v) != 4 {
		return Box{}, fmt.Errorf("box needs 4 coordinates, got %d", len(v))
	}
	b := NewBox(v[0], v[1], v[2], v[3])
	if err := b.Validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

// ParseBox parses "x0,y0,x1,y1", as typed on a command line.
func ParseBox(s string) (Box, error) {
	parts := strings.Split(s, ",")
	v := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box{}, fmt.Errorf("parse box %q: %w", s, err)
		}
		v = append(v, f)
	}
	return BoxFromSlice(v)
}

// Validate reports whether the corner ordering invariant holds.
func (b Box) Validate() error {
	if b.X0 > b.X1 || b.Y0 > b.Y1 {
		return fmt.Errorf("invalid box %s: x0 must be <= x1 and y0 <= y1", b)
	}
	return nil
}

// Width returns the horizontal extent.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// Area returns the box area in square pixels.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Min returns the top-left corner.
func (b Box) Min() Point { return Point{X: b.X0, Y: b.Y0} }

// Max returns the bottom-right corner.
func (b Box) Max() Point { return Point{X: b.X1, Y: b.Y1} }

// Center returns the center point.
func (b Box) Center() Point {
	return Point{X: 0.5 * (b.X0 + b.X1), Y: 0.5 * (b.Y0 + b.Y1)}
}

// WithY1 returns a copy of b with its bottom edge replaced.
func (b Box) WithY1(y1 float64) Box {
	b.Y1 = y1
	return b
}

// Slice returns the coordinates as [x0, y0, x1, y1].
func (b Box) Slice() []float64 {
	return []float64{b.X0, b.Y0, b.X1, b.Y1}
}

func (b Box) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", b.X0, b.Y0, b.X1, b.Y1)
}

// MarshalJSON encodes the box as a [x0, y0, x1, y1] array.
func (b Box) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%s,%s,%s,%s]",
		formatCoord(b.X0), formatCoord(b.Y0), formatCoord(b.X1), formatCoord(b.Y1))), nil
}

// UnmarshalJSON decodes a [x0, y0, x1, y1] array.
func (b *Box) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode box: %w", err)
	}
	box, err := BoxFromSlice(v)
	if err != nil {
		return err
	}
	*b = box
	return nil
}

// MarshalYAML encodes the box as a flow sequence of four numbers.
func (b Box) MarshalYAML() (interface{}, error) {
	var n yaml.Node
	if err := n.Encode(b.Slice()); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

// BoxMatch pairs a candidate box with an overlap or similarity score.
type BoxMatch struct {
	Box   Box     `json:"box"`
	Score float64 `json:"score"`
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
