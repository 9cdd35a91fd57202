// Package imaging supplies the pixel-level collaborators of the label cloner:
// loading and caching document images, cropping labeled boxes out of them,
// locating a cropped template inside another image, and drawing boxes back
// onto an image.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// Boxes coming from the geometry package carry float coordinates; CropBox
// rounds them to the nearest pixel and clamps them to the image bounds.
//
// # Template Matching
//
// Matcher implements a single-best-match template search. Two scores are
// available:
//   - MethodCCorr: normalized cross-correlation, sum(T*I) / sqrt(sum(T²)*sum(I²))
//   - MethodCCoeff: the same on zero-mean template and window
//
// Pixels are reduced to one intensity channel before matching, either luma
// (ITU-R BT.601 via bild) or CIE L* lightness (via go-colorful). Window energy
// is read from integral images, so each candidate position costs one pass
// over the template.
//
// With Downscale > 1 the search runs coarse-to-fine: both images are shrunk,
// the best coarse peaks are kept, and each is refined at full resolution in a
// small window around its upscaled position.
//
// # Overlays
//
// DrawBoxes and Overlay outline labeled boxes on a copy of an image, one
// color per Layer, for checking a cloned result by eye.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Matcher holds only configuration and
// may be shared between goroutines.
package imaging
