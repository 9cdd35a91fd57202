// Package locate finds a cropped source region inside a target image.
//
// A Locator wraps a correlation capability and turns its single best match
// into a box in target coordinates, or a SegmentNotFoundError when the best
// score stays under the threshold. Only the global best position is
// considered; secondary peaks are never reported.
package locate

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/imaging"
)

// DefaultThreshold is the minimum correlation score accepted as a match.
const DefaultThreshold = 0.85

// ErrSegmentNotFound is the sentinel matched by SegmentNotFoundError.
var ErrSegmentNotFound = errors.New("segment not found")

// SegmentNotFoundError reports a crop whose best correlation score stayed
// below the threshold. Source is set when the crop came from a labeled box.
// Reason is set when the crop could not be searched at all, for example a
// crop larger than the target; Score is then 0.
type SegmentNotFoundError struct {
	Source    *geometry.Box
	Width     int
	Height    int
	Score     float64
	Threshold float64
	Reason    string
}

func (e *SegmentNotFoundError) Error() string {
	if e.Reason != "" {
		if e.Source != nil {
			return fmt.Sprintf("segment %s not found: %s", e.Source, e.Reason)
		}
		return fmt.Sprintf("segment %dx%d not found: %s", e.Width, e.Height, e.Reason)
	}
	if e.Source != nil {
		return fmt.Sprintf("segment %s not found: best score %.4f below threshold %.2f", e.Source, e.Score, e.Threshold)
	}
	return fmt.Sprintf("segment %dx%d not found: best score %.4f below threshold %.2f", e.Width, e.Height, e.Score, e.Threshold)
}

// Is makes errors.Is(err, ErrSegmentNotFound) match.
func (e *SegmentNotFoundError) Is(target error) bool {
	return target == ErrSegmentNotFound
}

// Correlator finds the best position of a template inside an image.
// imaging.Matcher is the production implementation.
type Correlator interface {
	Correlate(ctx context.Context, template, img image.Image) (imaging.Match, error)
}

// Locator finds cropped segments in target images.
type Locator struct {
	Correlator Correlator
	Threshold  float64
}

// New creates a Locator with the given correlator and threshold. A
// non-positive threshold selects DefaultThreshold.
func New(c Correlator, threshold float64) *Locator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Locator{Correlator: c, Threshold: threshold}
}

// LocateSegment returns the box in target where crop matches best. The box
// spans the crop's width and height from the match location.
//
// A crop that cannot occur in target (empty, or larger than target) is
// reported as a SegmentNotFoundError with score 0. Other correlator errors,
// context cancellation included, are returned wrapped.
func (l *Locator) LocateSegment(ctx context.Context, crop, target image.Image) (geometry.Box, error) {
	w, h := crop.Bounds().Dx(), crop.Bounds().Dy()

	m, err := l.Correlator.Correlate(ctx, crop, target)
	if errors.Is(err, imaging.ErrTemplateTooLarge) || errors.Is(err, imaging.ErrEmptyTemplate) {
		return geometry.Box{}, &SegmentNotFoundError{
			Width:     w,
			Height:    h,
			Threshold: l.Threshold,
			Reason:    err.Error(),
		}
	}
	if err != nil {
		return geometry.Box{}, fmt.Errorf("correlate segment: %w", err)
	}

	if m.Score < l.Threshold {
		return geometry.Box{}, &SegmentNotFoundError{
			Width:     w,
			Height:    h,
			Score:     m.Score,
			Threshold: l.Threshold,
		}
	}

	x, y := float64(m.Location.X), float64(m.Location.Y)
	return geometry.NewBox(x, y, x+float64(w), y+float64(h)), nil
}

// Locate crops box out of source and locates the crop in target. A box with
// no pixels inside source is not found rather than an error.
func (l *Locator) Locate(ctx context.Context, source image.Image, box geometry.Box, target image.Image) (geometry.Box, error) {
	crop, err := imaging.CropBox(source, box)
	if errors.Is(err, imaging.ErrOutsideImage) {
		src := box
		return geometry.Box{}, &SegmentNotFoundError{Source: &src, Threshold: l.Threshold, Reason: err.Error()}
	}
	if err != nil {
		return geometry.Box{}, fmt.Errorf("crop %s: %w", box, err)
	}

	found, err := l.LocateSegment(ctx, crop, target)
	if err != nil {
		var nf *SegmentNotFoundError
		if errors.As(err, &nf) {
			src := box
			nf.Source = &src
		}
		return geometry.Box{}, err
	}
	return found, nil
}
