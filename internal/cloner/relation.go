package cloner

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// CloneRelation clones one relation box and the boxes attached to it.
// labels supplies the source image's static, variable-one and variable-many
// boxes; its relation list is ignored.
//
// The returned labels hold at most one relation, one static (the located
// anchor) and one variable-many box, plus the projected variable-one boxes.
// An error satisfying IsSkip means the relation produced nothing; an
// *AmbiguityError means the labeling itself is inconsistent.
func (c *Cloner) CloneRelation(ctx context.Context, relation geometry.Box, source, target image.Image, labels Labels) (Labels, error) {
	return c.cloneRelation(ctx, -1, relation, source, target, labels, c.logger)
}

func (c *Cloner) cloneRelation(ctx context.Context, index int, relation geometry.Box, source, target image.Image, labels Labels, logger *slog.Logger) (Labels, error) {
	var out Labels

	anchors := geometry.FindIntersected(relation, labels.Statics, c.opts.AnchorThreshold)
	switch {
	case len(anchors) == 0:
		return out, fmt.Errorf("relation %s: %w", relation, ErrNoAnchorMatch)
	case len(anchors) > 1:
		return out, &AmbiguityError{Kind: ErrAmbiguousAnchor, Index: index, Relation: relation, Candidates: anchors}
	}

	// The target location belongs to the cropped pixels, so projections
	// start from the in-image part of the anchor.
	anchor := Anchor{Source: clampToImage(anchors[0].Box, source)}
	var err error
	anchor.Target, err = c.locator.Locate(ctx, source, anchor.Source, target)
	if err != nil {
		return out, fmt.Errorf("anchor %s: %w", anchor.Source, err)
	}
	logger.Debug("anchor located", "source", anchor.Source, "target", anchor.Target, "offset", anchor.Offset())
	out.Statics = append(out.Statics, anchor.Target)

	relTarget := anchor.Project(relation)

	groups := geometry.FindIntersected(relation, labels.VariableManys, c.opts.GroupThreshold)
	if len(groups) > 1 {
		return Labels{}, &AmbiguityError{Kind: ErrAmbiguousVariableGroup, Index: index, Relation: relation, Candidates: groups}
	}
	if len(groups) == 1 {
		group := groups[0].Box
		if c.groupBelowAnchor(anchor.Source, group, relation) {
			projected := anchor.Project(group)
			y1, from, err := c.resolveGroupBottom(ctx, source, target, group, projected, labels)
			if err != nil {
				return Labels{}, err
			}
			logger.Debug("group bottom resolved", "group", group, "y1", y1, "from", from)
			projected = projected.WithY1(y1)
			relTarget = relTarget.WithY1(y1)
			out.VariableManys = append(out.VariableManys, projected)
		} else {
			logger.Debug("group not below anchor", "group", group, "anchor", anchor.Source)
		}
	}
	out.Relations = append(out.Relations, relTarget)

	for _, f := range geometry.FindIntersected(relation, labels.VariableOnes, c.opts.FieldThreshold) {
		out.VariableOnes = append(out.VariableOnes, anchor.Project(f.Box))
	}
	return out, nil
}

// groupBelowAnchor compares the parts of anchor and group that fall inside
// the relation.
func (c *Cloner) groupBelowAnchor(anchor, group, relation geometry.Box) bool {
	a, ok := geometry.Intersect(anchor, relation)
	if !ok {
		return false
	}
	g, ok := geometry.Intersect(group, relation)
	if !ok {
		return false
	}
	return geometry.RelativeOrientation(a, g).Has(geometry.Down)
}
