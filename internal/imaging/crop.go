package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// ErrOutsideImage is returned when a box covers no pixel of the image.
var ErrOutsideImage = errors.New("box has no pixels inside image bounds")

// PixelRect rounds a box to whole pixels and clamps it to bounds.
// It fails when nothing of the box is left inside the image.
func PixelRect(bounds image.Rectangle, box geometry.Box) (image.Rectangle, error) {
	r := image.Rect(
		int(math.Round(box.X0)), int(math.Round(box.Y0)),
		int(math.Round(box.X1)), int(math.Round(box.Y1)),
	).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: box %s, bounds %v", ErrOutsideImage, box, bounds)
	}
	return r, nil
}

// CropBox extracts the pixels covered by box. The returned image has its
// origin at (0,0).
func CropBox(img image.Image, box geometry.Box) (image.Image, error) {
	r, err := PixelRect(img.Bounds(), box)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, r), nil
}

// CropResult contains a cropped region encoded as base64 PNG.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts box from img, optionally rescales it, and encodes it as PNG.
func Crop(img image.Image, box geometry.Box, scale float64) (*CropResult, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	cropped, err := CropBox(img, box)
	if err != nil {
		return nil, err
	}

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
