package cloner

import (
	"fmt"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// Labels holds one list of boxes per category, all in the same image's
// coordinate space.
type Labels struct {
	Relations     []geometry.Box `json:"relation" yaml:"relation"`
	Statics       []geometry.Box `json:"static" yaml:"static"`
	VariableOnes  []geometry.Box `json:"variable_one" yaml:"variable_one"`
	VariableManys []geometry.Box `json:"variable_many" yaml:"variable_many"`
}

// ByCategory returns the list holding category c.
func (l Labels) ByCategory(c geometry.Category) []geometry.Box {
	switch c {
	case geometry.Relation:
		return l.Relations
	case geometry.Static:
		return l.Statics
	case geometry.VariableOne:
		return l.VariableOnes
	case geometry.VariableMany:
		return l.VariableManys
	}
	return nil
}

// Count returns the total number of boxes.
func (l Labels) Count() int {
	return len(l.Relations) + len(l.Statics) + len(l.VariableOnes) + len(l.VariableManys)
}

// Validate checks every box's corner ordering.
func (l Labels) Validate() error {
	for _, c := range geometry.Categories {
		for i, b := range l.ByCategory(c) {
			if err := b.Validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", c, i, err)
			}
		}
	}
	return nil
}

// Append adds the boxes of o after those of l, category by category.
func (l *Labels) Append(o Labels) {
	l.Relations = append(l.Relations, o.Relations...)
	l.Statics = append(l.Statics, o.Statics...)
	l.VariableOnes = append(l.VariableOnes, o.VariableOnes...)
	l.VariableManys = append(l.VariableManys, o.VariableManys...)
}

// Merge drops near-duplicate boxes within each category.
func (l Labels) Merge(dist float64) Labels {
	return Labels{
		Relations:     nonNil(geometry.MergeBoxesWithin(l.Relations, dist)),
		Statics:       nonNil(geometry.MergeBoxesWithin(l.Statics, dist)),
		VariableOnes:  nonNil(geometry.MergeBoxesWithin(l.VariableOnes, dist)),
		VariableManys: nonNil(geometry.MergeBoxesWithin(l.VariableManys, dist)),
	}
}

func nonNil(b []geometry.Box) []geometry.Box {
	if b == nil {
		return []geometry.Box{}
	}
	return b
}
