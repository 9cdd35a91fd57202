package cloner

import (
	"fmt"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// Policy decides what an ambiguous relation does to the run.
type Policy string

const (
	// PolicyAbort stops the run on the first ambiguous relation.
	PolicyAbort Policy = "abort"
	// PolicySkip records the ambiguous relation as skipped and continues.
	PolicySkip Policy = "skip"
)

// Options tunes the cloning thresholds.
type Options struct {
	// AnchorThreshold is the overlap ratio above which a static box belongs
	// to a relation.
	AnchorThreshold float64

	// GroupThreshold is the same for variable-many boxes.
	GroupThreshold float64

	// FieldThreshold is the same for variable-one boxes.
	FieldThreshold float64

	// EdgeAlignThreshold is the column overlap required for a box to close a
	// repeating group from below.
	EdgeAlignThreshold float64

	// EdgeTolerance lets a closing box start this many pixels above the
	// group's bottom edge.
	EdgeTolerance float64

	// EdgeSlack is added below a group whose closing box cannot be found.
	EdgeSlack float64

	// MergeDistance is the corner distance for output deduplication.
	MergeDistance float64

	// Workers is the number of relations cloned concurrently.
	Workers int

	OnAmbiguity Policy
}

// DefaultOptions returns the standard cloning thresholds.
func DefaultOptions() Options {
	return Options{
		AnchorThreshold:    0.1,
		GroupThreshold:     0.1,
		FieldThreshold:     0.1,
		EdgeAlignThreshold: 0.5,
		EdgeTolerance:      10,
		EdgeSlack:          100,
		MergeDistance:      geometry.DefaultMergeDistance,
		Workers:            1,
		OnAmbiguity:        PolicyAbort,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	for name, v := range map[string]float64{
		"anchor threshold":     o.AnchorThreshold,
		"group threshold":      o.GroupThreshold,
		"field threshold":      o.FieldThreshold,
		"edge align threshold": o.EdgeAlignThreshold,
	} {
		if v < 0 || v >= 1 {
			return fmt.Errorf("%s must be in [0,1), got %v", name, v)
		}
	}
	if o.EdgeTolerance < 0 || o.EdgeSlack < 0 || o.MergeDistance < 0 {
		return fmt.Errorf("edge tolerance, edge slack and merge distance must not be negative")
	}
	if o.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", o.Workers)
	}
	switch o.OnAmbiguity {
	case PolicyAbort, PolicySkip:
	default:
		return fmt.Errorf("unknown ambiguity policy %q", o.OnAmbiguity)
	}
	return nil
}
