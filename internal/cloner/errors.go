package cloner

import (
	"errors"
	"fmt"

	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/locate"
)

var (
	// ErrAmbiguousAnchor means more than one static box overlaps a relation.
	ErrAmbiguousAnchor = errors.New("ambiguous anchor")

	// ErrAmbiguousVariableGroup means more than one variable-many box
	// overlaps a relation.
	ErrAmbiguousVariableGroup = errors.New("ambiguous variable group")

	// ErrNoAnchorMatch means no static box overlaps a relation.
	ErrNoAnchorMatch = errors.New("no anchor match")
)

// AmbiguityError describes a relation whose labeling does not identify a
// single anchor or repeating group.
type AmbiguityError struct {
	// Kind is ErrAmbiguousAnchor or ErrAmbiguousVariableGroup.
	Kind error

	// Index is the relation's position in the source labels.
	Index int

	Relation   geometry.Box
	Candidates []geometry.BoxMatch
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("relation %d %s: %v (%d candidates)", e.Index, e.Relation, e.Kind, len(e.Candidates))
}

func (e *AmbiguityError) Unwrap() error {
	return e.Kind
}

// IsAmbiguity reports whether err is one of the ambiguity kinds.
func IsAmbiguity(err error) bool {
	return errors.Is(err, ErrAmbiguousAnchor) || errors.Is(err, ErrAmbiguousVariableGroup)
}

// IsSkip reports whether err only invalidates the relation it came from.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNoAnchorMatch) || errors.Is(err, locate.ErrSegmentNotFound)
}
