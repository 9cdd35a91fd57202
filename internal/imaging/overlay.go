package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

// outlineWidth is the stroke width of a drawn box, in pixels.
const outlineWidth = 2

// Layer is a group of boxes drawn in one color.
type Layer struct {
	Name string

	// Color is a hex color such as "#FF0000" or "#FF000080". Empty picks
	// the layer's palette color.
	Color string

	Boxes []geometry.Box
}

// OverlayResult contains an image with label boxes drawn on it, encoded as
// base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Boxes       int    `json:"boxes"`
}

// PaletteColor returns the i-th layer color: evenly spaced hues at a fixed
// chroma and lightness, so neighbouring layers stay distinguishable.
func PaletteColor(i int) color.RGBA {
	c := colorful.Hcl(float64(i%8)*45+20, 0.9, 0.55).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// DrawBoxes copies img and outlines every box of every layer on the copy.
// When numbered is set, each box is tagged with its index inside its layer.
// Boxes entirely outside the image are skipped.
func DrawBoxes(img image.Image, layers []Layer, numbered bool) (*image.RGBA, int, error) {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	drawn := 0
	for i, layer := range layers {
		c := PaletteColor(i)
		if layer.Color != "" {
			var err error
			if c, err = parseHexColor(layer.Color); err != nil {
				return nil, 0, fmt.Errorf("layer %q: invalid color %q: %w", layer.Name, layer.Color, err)
			}
		}
		for j, box := range layer.Boxes {
			r, err := PixelRect(bounds, box)
			if err != nil {
				continue
			}
			outline(out, r, c)
			if numbered {
				drawLabel(out, r.Min.X+outlineWidth+1, r.Min.Y+outlineWidth+1, strconv.Itoa(j),
					color.RGBA{255, 255, 255, 255}, c)
			}
			drawn++
		}
	}
	return out, drawn, nil
}

// Overlay draws layers on img and encodes the result as PNG.
func Overlay(img image.Image, layers []Layer, numbered bool) (*OverlayResult, error) {
	out, drawn, err := DrawBoxes(img, layers, numbered)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &OverlayResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Boxes:       drawn,
	}, nil
}

func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	w := outlineWidth
	if r.Dx() < 2*w || r.Dy() < 2*w {
		draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
		return
	}
	fill := &image.Uniform{C: c}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), fill, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), fill, image.Point{}, draw.Src)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// drawLabel writes digits with a 3x5 pixel font on a filled background.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 6

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if p := image.Pt(x+dx, y+dy); p.In(bounds) {
				img.SetRGBA(p.X, p.Y, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if p := image.Pt(cx+col, y+row); p.In(bounds) {
					img.SetRGBA(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
