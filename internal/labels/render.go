package labels

import (
	"github.com/ironsheep/template-cloner/internal/cloner"
	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/imaging"
)

// categoryColors keeps each category's color stable across renders.
var categoryColors = map[geometry.Category]string{
	geometry.Relation:     "#1F77B4",
	geometry.Static:       "#D62728",
	geometry.VariableOne:  "#2CA02C",
	geometry.VariableMany: "#FF7F0E",
}

// Layers turns l into one overlay layer per non-empty category.
func Layers(l cloner.Labels) []imaging.Layer {
	layers := make([]imaging.Layer, 0, len(geometry.Categories))
	for _, c := range geometry.Categories {
		boxes := l.ByCategory(c)
		if len(boxes) == 0 {
			continue
		}
		layers = append(layers, imaging.Layer{
			Name:  c.String(),
			Color: categoryColors[c],
			Boxes: boxes,
		})
	}
	return layers
}
