package imaging

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/template-cloner/internal/geometry"
)

func TestMatcher_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Matcher)
		wantErr bool
	}{
		{"defaults", func(m *Matcher) {}, false},
		{"ccoeff lightness", func(m *Matcher) { m.Method = MethodCCoeff; m.Channel = ChannelLightness }, false},
		{"bad method", func(m *Matcher) { m.Method = "sqdiff" }, true},
		{"bad channel", func(m *Matcher) { m.Channel = "hue" }, true},
		{"zero downscale", func(m *Matcher) { m.Downscale = 0 }, true},
		{"zero candidates", func(m *Matcher) { m.Candidates = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher()
			tt.mutate(m)
			if err := m.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatcher_ExactLocation(t *testing.T) {
	img := createNoiseImage(120, 90, 7)
	tmpl := img.SubImage(image.Rect(37, 53, 67, 73))

	for _, method := range []Method{MethodCCorr, MethodCCoeff} {
		for _, channel := range []Channel{ChannelLuma, ChannelLightness} {
			t.Run(string(method)+"/"+string(channel), func(t *testing.T) {
				m := NewMatcher()
				m.Method = method
				m.Channel = channel

				got, err := m.Correlate(context.Background(), tmpl, img)
				if err != nil {
					t.Fatalf("Correlate failed: %v", err)
				}
				if got.Location != image.Pt(37, 53) {
					t.Errorf("Location: got %v, want (37,53)", got.Location)
				}
				if got.Score < 0.999 {
					t.Errorf("Score: got %v, want ~1", got.Score)
				}
			})
		}
	}
}

func TestMatcher_ShiftedForm(t *testing.T) {
	source := createFormImage(240, 220, 0, 0)
	target := createFormImage(240, 220, 9, 14)

	tmpl, err := CropBox(source, geometry.NewBox(10, 10, 110, 70))
	if err != nil {
		t.Fatalf("CropBox failed: %v", err)
	}

	for _, downscale := range []int{1, 2} {
		m := NewMatcher()
		m.Method = MethodCCoeff
		m.Downscale = downscale

		got, err := m.Correlate(context.Background(), tmpl, target)
		if err != nil {
			t.Fatalf("downscale %d: Correlate failed: %v", downscale, err)
		}
		if got.Location != image.Pt(19, 24) {
			t.Errorf("downscale %d: Location got %v, want (19,24)", downscale, got.Location)
		}
		if got.Score < 0.999 {
			t.Errorf("downscale %d: Score got %v, want ~1", downscale, got.Score)
		}
	}
}

func TestMatcher_ImageOrigin(t *testing.T) {
	// Locations are reported in the searched image's own coordinates
	full := createNoiseImage(100, 100, 3)
	tmpl := full.SubImage(image.Rect(60, 70, 80, 85))
	region := full.SubImage(image.Rect(40, 40, 100, 100))

	got, err := NewMatcher().Correlate(context.Background(), tmpl, region)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if got.Location != image.Pt(60, 70) {
		t.Errorf("Location: got %v, want (60,70)", got.Location)
	}
}

func TestMatcher_LowScoreOnForeignTemplate(t *testing.T) {
	img := createFormImage(200, 200, 0, 0)
	tmpl := createNoiseImage(30, 30, 11)

	m := NewMatcher()
	m.Method = MethodCCoeff
	got, err := m.Correlate(context.Background(), tmpl, img)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if got.Score > 0.85 {
		t.Errorf("noise template should not match a form, score %v", got.Score)
	}
}

func TestMatcher_Errors(t *testing.T) {
	img := createInMemoryImage(20, 20, color.White)
	m := NewMatcher()

	_, err := m.Correlate(context.Background(), createInMemoryImage(30, 10, color.Black), img)
	if !errors.Is(err, ErrTemplateTooLarge) {
		t.Errorf("expected ErrTemplateTooLarge, got %v", err)
	}

	_, err = m.Correlate(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), img)
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Errorf("expected ErrEmptyTemplate, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Correlate(ctx, createInMemoryImage(5, 5, color.Black), img)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIntegral_Window(t *testing.T) {
	p := &plane{w: 3, h: 2, pix: []float64{1, 2, 3, 4, 5, 6}}
	ii := newIntegral(p)

	sum, sq := ii.window(1, 0, 2, 2)
	if sum != 2+3+5+6 {
		t.Errorf("sum: got %v, want 16", sum)
	}
	if sq != 4+9+25+36 {
		t.Errorf("squared sum: got %v, want 74", sq)
	}
}
