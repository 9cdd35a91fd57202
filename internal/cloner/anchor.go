package cloner

import (
	"image"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// Anchor pairs a static box in the source image with the location found for
// it in the target image. It defines the translation applied to every other
// box of the same relation.
type Anchor struct {
	Source geometry.Box `json:"source"`
	Target geometry.Box `json:"target"`
}

// Project moves b from source to target coordinates: b is expressed relative
// to the source anchor's top-left corner and reattached to the target's.
func (a Anchor) Project(b geometry.Box) geometry.Box {
	rel := geometry.Translate(a.Source.Min(), b, geometry.ToRelative)
	return geometry.Translate(a.Target.Min(), rel, geometry.ToAbsolute)
}

// Offset returns the translation from source to target.
func (a Anchor) Offset() geometry.Point {
	return geometry.Point{X: a.Target.X0 - a.Source.X0, Y: a.Target.Y0 - a.Source.Y0}
}

// clampToImage cuts b down to the part inside img's bounds, which is the
// part a crop of b actually covers. A box entirely outside is returned as is.
func clampToImage(b geometry.Box, img image.Image) geometry.Box {
	r := img.Bounds()
	bounds := geometry.NewBox(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y))
	if in, ok := geometry.Intersect(b, bounds); ok {
		return in
	}
	return b
}
