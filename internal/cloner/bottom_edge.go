package cloner

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/locate"
)

// FindBottomEdge finds the box that closes a repeating group from below and
// returns its bottom edge in the target image.
//
// Candidates must share the group's columns (x-overlap of at least
// EdgeAlignThreshold) and start no higher than EdgeTolerance above the
// group's bottom edge. The first such candidate, ordered top to bottom, is
// located in the target. ok is false when there is no candidate or the
// candidate cannot be found.
func (c *Cloner) FindBottomEdge(ctx context.Context, source, target image.Image, group geometry.Box, candidates []geometry.Box) (float64, bool, error) {
	aligned := geometry.FindSubboxesByAxis(geometry.AxisY, group, candidates, c.opts.EdgeAlignThreshold)

	var below []geometry.Box
	for _, b := range aligned {
		if group.Y1 <= b.Y0+c.opts.EdgeTolerance {
			below = append(below, b)
		}
	}
	if len(below) == 0 {
		return 0, false, nil
	}

	found, err := c.locator.Locate(ctx, source, below[0], target)
	if errors.Is(err, locate.ErrSegmentNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("bottom edge %s: %w", below[0], err)
	}
	return found.Y1, true, nil
}

// resolveGroupBottom picks the bottom edge for a projected repeating group,
// preferring static boxes, then variable-one boxes, then a fixed slack.
func (c *Cloner) resolveGroupBottom(ctx context.Context, source, target image.Image, group, projected geometry.Box, labels Labels) (float64, string, error) {
	y, ok, err := c.FindBottomEdge(ctx, source, target, group, labels.Statics)
	if err != nil || ok {
		return y, geometry.Static.String(), err
	}
	y, ok, err = c.FindBottomEdge(ctx, source, target, group, labels.VariableOnes)
	if err != nil || ok {
		return y, geometry.VariableOne.String(), err
	}
	return projected.Y1 + c.opts.EdgeSlack, "slack", nil
}
