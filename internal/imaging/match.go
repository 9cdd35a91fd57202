package imaging

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Method selects the similarity score used by Matcher.
type Method string

const (
	// MethodCCorr is normalized cross-correlation. Scores lie in [0,1] for
	// non-negative intensities, 1.0 being a perfect match.
	MethodCCorr Method = "ccorr"

	// MethodCCoeff is the normalized correlation coefficient, computed on the
	// zero-mean template and window. Scores lie in [-1,1].
	MethodCCoeff Method = "ccoeff"
)

// Channel selects how pixels are reduced to a single intensity.
type Channel string

const (
	// ChannelLuma uses ITU-R BT.601 luma.
	ChannelLuma Channel = "luma"
	// ChannelLightness uses CIE L* lightness.
	ChannelLightness Channel = "lightness"
)

// Defaults used by NewMatcher.
const (
	DefaultDownscale  = 1
	DefaultCandidates = 5
)

// minCoarseSide is the smallest template side kept after downscaling. Smaller
// coarse templates carry too little structure, so the search stays exhaustive.
const minCoarseSide = 4

var (
	// ErrTemplateTooLarge is returned when the template does not fit in the image.
	ErrTemplateTooLarge = errors.New("template larger than image")

	// ErrEmptyTemplate is returned for a template with no pixels.
	ErrEmptyTemplate = errors.New("template has no pixels")
)

// Match is the best template position found in an image.
type Match struct {
	// Score is the similarity at Location.
	Score float64 `json:"score"`

	// Location is the top-left corner of the best match, in the coordinates
	// of the searched image.
	Location image.Point `json:"location"`
}

// Matcher locates a template inside an image and reports the single best
// position.
type Matcher struct {
	Method  Method
	Channel Channel

	// Downscale is the coarse search reduction factor. 1 searches every
	// full-resolution position.
	Downscale int

	// Candidates is how many coarse peaks are refined at full resolution.
	Candidates int
}

// NewMatcher returns a Matcher using normalized cross-correlation on luma with
// an exhaustive search.
func NewMatcher() *Matcher {
	return &Matcher{
		Method:     MethodCCorr,
		Channel:    ChannelLuma,
		Downscale:  DefaultDownscale,
		Candidates: DefaultCandidates,
	}
}

// Validate checks the matcher configuration.
func (m *Matcher) Validate() error {
	switch m.Method {
	case MethodCCorr, MethodCCoeff:
	default:
		return fmt.Errorf("unknown match method %q", m.Method)
	}
	switch m.Channel {
	case ChannelLuma, ChannelLightness:
	default:
		return fmt.Errorf("unknown match channel %q", m.Channel)
	}
	if m.Downscale < 1 {
		return fmt.Errorf("downscale must be >= 1, got %d", m.Downscale)
	}
	if m.Candidates < 1 {
		return fmt.Errorf("candidates must be >= 1, got %d", m.Candidates)
	}
	return nil
}

// Correlate finds the position in img where tmpl matches best.
//
// The context is checked once per scanned row, so a deadline bounds the
// search time on large images.
func (m *Matcher) Correlate(ctx context.Context, tmpl, img image.Image) (Match, error) {
	if err := m.Validate(); err != nil {
		return Match{}, err
	}

	tb, ib := tmpl.Bounds(), img.Bounds()
	if tb.Empty() {
		return Match{}, ErrEmptyTemplate
	}
	if tb.Dx() > ib.Dx() || tb.Dy() > ib.Dy() {
		return Match{}, fmt.Errorf("%w: template %dx%d, image %dx%d",
			ErrTemplateTooLarge, tb.Dx(), tb.Dy(), ib.Dx(), ib.Dy())
	}

	full := newSearch(m.Method, toPlane(tmpl, m.Channel), toPlane(img, m.Channel))

	s := m.Downscale
	if s <= 1 || tb.Dx()/s < minCoarseSide || tb.Dy()/s < minCoarseSide {
		best, err := full.best(ctx, full.positions())
		if err != nil {
			return Match{}, err
		}
		return best.offset(ib.Min), nil
	}

	coarseTmpl := imaging.Resize(tmpl, tb.Dx()/s, tb.Dy()/s, imaging.Box)
	coarseImg := imaging.Resize(img, ib.Dx()/s, ib.Dy()/s, imaging.Box)
	coarse := newSearch(m.Method, toPlane(coarseTmpl, m.Channel), toPlane(coarseImg, m.Channel))

	peaks, err := coarse.peaks(ctx, m.Candidates)
	if err != nil {
		return Match{}, err
	}

	var best Match
	found := false
	for _, p := range peaks {
		window := image.Rect(p.Location.X*s-s-1, p.Location.Y*s-s-1, p.Location.X*s+s+2, p.Location.Y*s+s+2)
		refined, err := full.best(ctx, window.Intersect(full.positions()))
		if err != nil {
			return Match{}, err
		}
		if !found || refined.Score > best.Score {
			best = refined
			found = true
		}
	}
	if !found {
		return Match{}, fmt.Errorf("coarse search produced no candidates")
	}
	return best.offset(ib.Min), nil
}

func (mt Match) offset(origin image.Point) Match {
	mt.Location = mt.Location.Add(origin)
	return mt
}

// plane is a single-channel image with intensities in [0,1] and origin (0,0).
type plane struct {
	w, h int
	pix  []float64
}

func toPlane(img image.Image, ch Channel) *plane {
	b := img.Bounds()
	p := &plane{w: b.Dx(), h: b.Dy(), pix: make([]float64, b.Dx()*b.Dy())}

	if ch == ChannelLightness {
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				c, ok := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
				if !ok {
					// Transparent pixels read as blank paper.
					p.pix[y*p.w+x] = 1
					continue
				}
				l, _, _ := c.Lab()
				p.pix[y*p.w+x] = l
			}
		}
		return p
	}

	gray := effect.Grayscale(img)
	gb := gray.Bounds()
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			p.pix[y*p.w+x] = float64(gray.Pix[gray.PixOffset(gb.Min.X+x, gb.Min.Y+y)]) / 255.0
		}
	}
	return p
}

// integral holds summed-area tables of intensity and squared intensity.
type integral struct {
	stride  int
	sum, sq []float64
}

func newIntegral(p *plane) *integral {
	stride := p.w + 1
	ii := &integral{
		stride: stride,
		sum:    make([]float64, stride*(p.h+1)),
		sq:     make([]float64, stride*(p.h+1)),
	}
	for y := 0; y < p.h; y++ {
		var rowSum, rowSq float64
		for x := 0; x < p.w; x++ {
			v := p.pix[y*p.w+x]
			rowSum += v
			rowSq += v * v
			i := (y+1)*stride + x + 1
			ii.sum[i] = ii.sum[i-stride] + rowSum
			ii.sq[i] = ii.sq[i-stride] + rowSq
		}
	}
	return ii
}

// window returns the intensity sum and squared sum of the w x h window at (x,y).
func (ii *integral) window(x, y, w, h int) (float64, float64) {
	a := y*ii.stride + x
	b := y*ii.stride + x + w
	c := (y+h)*ii.stride + x
	d := (y+h)*ii.stride + x + w
	return ii.sum[d] - ii.sum[b] - ii.sum[c] + ii.sum[a],
		ii.sq[d] - ii.sq[b] - ii.sq[c] + ii.sq[a]
}

// search scores a template against every requested position of an image.
type search struct {
	method Method
	img    *plane
	ii     *integral

	tw, th int
	kernel []float64
	norm   float64 // sum of squared kernel values
	n      float64
}

func newSearch(method Method, tmpl, img *plane) *search {
	s := &search{
		method: method,
		img:    img,
		ii:     newIntegral(img),
		tw:     tmpl.w,
		th:     tmpl.h,
		kernel: make([]float64, len(tmpl.pix)),
		n:      float64(len(tmpl.pix)),
	}

	var mean float64
	if method == MethodCCoeff {
		for _, v := range tmpl.pix {
			mean += v
		}
		mean /= s.n
	}
	for i, v := range tmpl.pix {
		k := v - mean
		s.kernel[i] = k
		s.norm += k * k
	}
	return s
}

// positions is the rectangle of valid top-left template positions.
func (s *search) positions() image.Rectangle {
	return image.Rect(0, 0, s.img.w-s.tw+1, s.img.h-s.th+1)
}

func (s *search) score(x, y int) float64 {
	var num float64
	for ty := 0; ty < s.th; ty++ {
		row := s.img.pix[(y+ty)*s.img.w+x : (y+ty)*s.img.w+x+s.tw]
		krow := s.kernel[ty*s.tw : (ty+1)*s.tw]
		for tx, k := range krow {
			num += k * row[tx]
		}
	}

	sum, sq := s.ii.window(x, y, s.tw, s.th)
	energy := sq
	if s.method == MethodCCoeff {
		energy = sq - sum*sum/s.n
	}
	den := s.norm * energy
	if den <= 1e-12 {
		return 0
	}
	return math.Max(-1, math.Min(1, num/math.Sqrt(den)))
}

// best returns the highest-scoring position in r. Ties keep the first
// position in raster order.
func (s *search) best(ctx context.Context, r image.Rectangle) (Match, error) {
	best := Match{Score: math.Inf(-1)}
	if r.Empty() {
		return best, fmt.Errorf("empty search window")
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return Match{}, err
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			if sc := s.score(x, y); sc > best.Score {
				best = Match{Score: sc, Location: image.Pt(x, y)}
			}
		}
	}
	return best, nil
}

// peaks returns up to k best positions, suppressing positions closer than
// half the template size to an already selected peak.
func (s *search) peaks(ctx context.Context, k int) ([]Match, error) {
	r := s.positions()
	all := make([]Match, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			all = append(all, Match{Score: s.score(x, y), Location: image.Pt(x, y)})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	radius := s.tw
	if s.th < radius {
		radius = s.th
	}
	radius /= 2
	if radius < 1 {
		radius = 1
	}

	picked := make([]Match, 0, k)
	for _, m := range all {
		if len(picked) == k {
			break
		}
		near := false
		for _, p := range picked {
			if abs(m.Location.X-p.Location.X) <= radius && abs(m.Location.Y-p.Location.Y) <= radius {
				near = true
				break
			}
		}
		if !near {
			picked = append(picked, m)
		}
	}
	return picked, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
