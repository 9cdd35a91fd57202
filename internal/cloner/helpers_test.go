package cloner

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"

	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/locate"
)

// fakeLocator moves every box by a fixed offset unless the box is listed in
// moved or missing.
type fakeLocator struct {
	offset  geometry.Point
	moved   map[geometry.Box]geometry.Box
	missing map[geometry.Box]bool

	mu    sync.Mutex
	calls []geometry.Box
}

func (f *fakeLocator) Locate(ctx context.Context, source image.Image, box geometry.Box, target image.Image) (geometry.Box, error) {
	f.mu.Lock()
	f.calls = append(f.calls, box)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return geometry.Box{}, err
	}
	if f.missing[box] {
		src := box
		return geometry.Box{}, &locate.SegmentNotFoundError{Source: &src, Score: 0.2, Threshold: locate.DefaultThreshold}
	}
	if b, ok := f.moved[box]; ok {
		return b, nil
	}
	return geometry.NewBox(box.X0+f.offset.X, box.Y0+f.offset.Y, box.X1+f.offset.X, box.Y1+f.offset.Y), nil
}

func (f *fakeLocator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestCloner(loc SegmentLocator, opts Options) *Cloner {
	c, err := New(loc, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		panic(err)
	}
	return c
}

// blankImage has unbounded extent, so no labeled box is clamped by it.
func blankImage() image.Image {
	return image.NewUniform(color.White)
}

func box(x0, y0, x1, y1 float64) geometry.Box {
	return geometry.NewBox(x0, y0, x1, y1)
}
