package geometry

// Direction selects how Translate applies a reference point.
type Direction int

const (
	// ToRelative expresses a box relative to the reference point.
	ToRelative Direction = iota
	// ToAbsolute reattaches a relative box to the reference point.
	ToAbsolute
)

// Translate shifts both corners of b by the reference point.
func Translate(ref Point, b Box, dir Direction) Box {
	if dir == ToRelative {
		return Box{X0: b.X0 - ref.X, Y0: b.Y0 - ref.Y, X1: b.X1 - ref.X, Y1: b.Y1 - ref.Y}
	}
	return Box{X0: b.X0 + ref.X, Y0: b.Y0 + ref.Y, X1: b.X1 + ref.X, Y1: b.Y1 + ref.Y}
}
