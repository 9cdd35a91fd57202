package geometry

import "fmt"

// Category classifies a labeled box.
type Category int

const (
	// Relation boxes group an anchor with its associated fields.
	Relation Category = iota
	// Static boxes are template-fixed labels used as anchors.
	Static
	// VariableOne boxes are single-instance fields with template-fixed geometry.
	VariableOne
	// VariableMany boxes are repeating regions whose height varies per document.
	VariableMany
)

// Categories lists every category in output order.
var Categories = []Category{Relation, Static, VariableOne, VariableMany}

func (c Category) String() string {
	switch c {
	case Relation:
		return "relation"
	case Static:
		return "static"
	case VariableOne:
		return "variable_one"
	case VariableMany:
		return "variable_many"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory converts a category name back to its value.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown box category: %q", s)
}
