// Package geometry provides the axis-aligned box primitives used to clone
// labels between two instances of the same document template.
//
// # Coordinate System
//
// Boxes use image pixel coordinates with the origin at the top-left corner:
//   - X0, Y0: top-left corner
//   - X1, Y1: bottom-right corner
//   - X increases rightward, Y increases downward
//
// Coordinates are float64 because cloned boxes are derived by translation and
// may be compared against sub-pixel locations. Every Box is a value; the
// transforms in this package always return a new Box.
//
// # Overlap Ratio
//
// OverlapRatio is not IoU. It divides the intersection area by the area of the
// smaller box, so a small box lying entirely inside a large one scores 1.0.
// This is the measure used to decide which labeled boxes belong to a relation.
//
// # Deduplication
//
// MergeBoxes and MergePoints are greedy and keep the first-seen item of every
// group of near-duplicates. Output order is the input order of survivors.
package geometry
