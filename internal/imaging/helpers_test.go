package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
)

// createInMemoryImage creates a solid color image in memory
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// createPatternImage creates a four-quadrant pattern image in memory
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255}
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255}
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255}
			} else {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createNoiseImage creates a gray noise image from a fixed seed
func createNoiseImage(width, height int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(rng.Intn(256))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// createFormImage draws a white page with a few black marks of distinct
// sizes, shifted by (dx, dy).
func createFormImage(width, height, dx, dy int) *image.RGBA {
	img := createInMemoryImage(width, height, color.White)
	marks := []image.Rectangle{
		image.Rect(20, 20, 70, 32),
		image.Rect(24, 40, 40, 44),
		image.Rect(90, 20, 96, 60),
		image.Rect(120, 100, 180, 104),
		image.Rect(30, 140, 34, 190),
	}
	for _, m := range marks {
		draw.Draw(img, m.Add(image.Pt(dx, dy)), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	}
	return img
}
