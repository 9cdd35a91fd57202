package cloner

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/locate"
)

var (
	anchorBox   = box(0, 0, 50, 20)
	relationBox = box(0, 0, 80, 40)
	groupBox    = box(0, 20, 80, 40)
	footerBox   = box(0, 45, 60, 55)
	totalBox    = box(0, 50, 80, 60)
)

func TestCloneRelation_ProjectsAnchorAndRelation(t *testing.T) {
	loc := &fakeLocator{offset: geometry.Point{X: 100, Y: 200}}
	c := newTestCloner(loc, DefaultOptions())

	got, err := c.CloneRelation(context.Background(), relationBox, blankImage(), blankImage(), Labels{
		Statics: []geometry.Box{anchorBox},
	})
	if err != nil {
		t.Fatalf("CloneRelation failed: %v", err)
	}

	if len(got.Statics) != 1 || got.Statics[0] != box(100, 200, 150, 220) {
		t.Errorf("statics = %v, want [(100,200,150,220)]", got.Statics)
	}
	if len(got.Relations) != 1 || got.Relations[0] != box(100, 200, 180, 240) {
		t.Errorf("relations = %v, want [(100,200,180,240)]", got.Relations)
	}
	if len(got.VariableManys) != 0 || len(got.VariableOnes) != 0 {
		t.Errorf("unexpected extra boxes: %+v", got)
	}
}

func TestCloneRelation_GroupBottomEdge(t *testing.T) {
	tests := []struct {
		name    string
		labels  Labels
		moved   map[geometry.Box]geometry.Box
		missing map[geometry.Box]bool
		wantY1  float64
	}{
		{
			name:   "no closing box uses slack",
			labels: Labels{Statics: []geometry.Box{anchorBox}, VariableManys: []geometry.Box{groupBox}},
			wantY1: 240 + 100,
		},
		{
			name:   "closed by static",
			labels: Labels{Statics: []geometry.Box{anchorBox, footerBox}, VariableManys: []geometry.Box{groupBox}},
			moved:  map[geometry.Box]geometry.Box{footerBox: box(100, 300, 160, 310)},
			wantY1: 310,
		},
		{
			name: "static not found falls back to variable one",
			labels: Labels{
				Statics:       []geometry.Box{anchorBox, footerBox},
				VariableOnes:  []geometry.Box{totalBox},
				VariableManys: []geometry.Box{groupBox},
			},
			moved:   map[geometry.Box]geometry.Box{totalBox: box(100, 320, 180, 330)},
			missing: map[geometry.Box]bool{footerBox: true},
			wantY1:  330,
		},
		{
			name: "nothing found falls back to slack",
			labels: Labels{
				Statics:       []geometry.Box{anchorBox, footerBox},
				VariableOnes:  []geometry.Box{totalBox},
				VariableManys: []geometry.Box{groupBox},
			},
			missing: map[geometry.Box]bool{footerBox: true, totalBox: true},
			wantY1:  340,
		},
		{
			name: "misaligned static is ignored",
			labels: Labels{
				Statics:       []geometry.Box{anchorBox, box(200, 45, 260, 55)},
				VariableManys: []geometry.Box{groupBox},
			},
			wantY1: 340,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := &fakeLocator{offset: geometry.Point{X: 100, Y: 200}, moved: tt.moved, missing: tt.missing}
			c := newTestCloner(loc, DefaultOptions())

			got, err := c.CloneRelation(context.Background(), relationBox, blankImage(), blankImage(), tt.labels)
			if err != nil {
				t.Fatalf("CloneRelation failed: %v", err)
			}
			if len(got.VariableManys) != 1 {
				t.Fatalf("variable_many = %v, want one box", got.VariableManys)
			}
			wantGroup := box(100, 220, 180, tt.wantY1)
			if got.VariableManys[0] != wantGroup {
				t.Errorf("group = %s, want %s", got.VariableManys[0], wantGroup)
			}
			wantRel := box(100, 200, 180, tt.wantY1)
			if len(got.Relations) != 1 || got.Relations[0] != wantRel {
				t.Errorf("relations = %v, want [%s]", got.Relations, wantRel)
			}
		})
	}
}

func TestCloneRelation_GroupBesideAnchorDropped(t *testing.T) {
	loc := &fakeLocator{offset: geometry.Point{X: 100, Y: 200}}
	c := newTestCloner(loc, DefaultOptions())

	rel := box(0, 0, 120, 20)
	got, err := c.CloneRelation(context.Background(), rel, blankImage(), blankImage(), Labels{
		Statics:       []geometry.Box{anchorBox},
		VariableManys: []geometry.Box{box(60, 0, 120, 20)},
	})
	if err != nil {
		t.Fatalf("CloneRelation failed: %v", err)
	}
	if len(got.VariableManys) != 0 {
		t.Errorf("variable_many = %v, want none", got.VariableManys)
	}
	if len(got.Relations) != 1 || got.Relations[0] != box(100, 200, 220, 220) {
		t.Errorf("relations = %v, want [(100,200,220,220)]", got.Relations)
	}
	if n := loc.callCount(); n != 1 {
		t.Errorf("locator called %d times, want 1", n)
	}
}

func TestCloneRelation_VariableOnes(t *testing.T) {
	loc := &fakeLocator{offset: geometry.Point{X: 10, Y: 5}}
	c := newTestCloner(loc, DefaultOptions())

	got, err := c.CloneRelation(context.Background(), relationBox, blankImage(), blankImage(), Labels{
		Statics: []geometry.Box{anchorBox},
		VariableOnes: []geometry.Box{
			box(55, 0, 80, 20),   // inside the relation
			box(60, 30, 100, 50), // partly inside
			box(300, 300, 310, 310),
		},
	})
	if err != nil {
		t.Fatalf("CloneRelation failed: %v", err)
	}

	// ordered by ascending overlap with the relation
	want := []geometry.Box{box(70, 35, 110, 55), box(65, 5, 90, 25)}
	if len(got.VariableOnes) != len(want) {
		t.Fatalf("variable_one = %v, want %v", got.VariableOnes, want)
	}
	for i := range want {
		if got.VariableOnes[i] != want[i] {
			t.Errorf("variable_one[%d] = %s, want %s", i, got.VariableOnes[i], want[i])
		}
	}
}

func TestCloneRelation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		labels  Labels
		missing map[geometry.Box]bool
		wantErr error
		skip    bool
	}{
		{
			name:    "no anchor",
			labels:  Labels{Statics: []geometry.Box{box(200, 200, 220, 220)}},
			wantErr: ErrNoAnchorMatch,
			skip:    true,
		},
		{
			name:    "anchor not found",
			labels:  Labels{Statics: []geometry.Box{anchorBox}},
			missing: map[geometry.Box]bool{anchorBox: true},
			wantErr: locate.ErrSegmentNotFound,
			skip:    true,
		},
		{
			name:    "two anchors",
			labels:  Labels{Statics: []geometry.Box{anchorBox, box(50, 20, 80, 40)}},
			wantErr: ErrAmbiguousAnchor,
		},
		{
			name: "two groups",
			labels: Labels{
				Statics:       []geometry.Box{anchorBox},
				VariableManys: []geometry.Box{box(0, 20, 40, 40), box(40, 20, 80, 40)},
			},
			wantErr: ErrAmbiguousVariableGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := &fakeLocator{missing: tt.missing}
			c := newTestCloner(loc, DefaultOptions())

			got, err := c.CloneRelation(context.Background(), relationBox, blankImage(), blankImage(), tt.labels)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if IsSkip(err) != tt.skip {
				t.Errorf("IsSkip(%v) = %v, want %v", err, IsSkip(err), tt.skip)
			}
			if got.Count() != 0 {
				t.Errorf("expected no boxes on error, got %+v", got)
			}

			var amb *AmbiguityError
			if errors.As(err, &amb) && len(amb.Candidates) != 2 {
				t.Errorf("ambiguity candidates = %d, want 2", len(amb.Candidates))
			}
		})
	}
}

func TestFindBottomEdge_PicksTopmostCandidate(t *testing.T) {
	loc := &fakeLocator{}
	c := newTestCloner(loc, DefaultOptions())

	group := box(0, 20, 80, 40)
	candidates := []geometry.Box{
		box(0, 100, 80, 110),
		box(0, 35, 80, 45), // starts within tolerance above the bottom edge
		box(0, 0, 80, 10),  // above the group
	}
	y, ok, err := c.FindBottomEdge(context.Background(), blankImage(), blankImage(), group, candidates)
	if err != nil || !ok {
		t.Fatalf("FindBottomEdge = (%v, %v, %v)", y, ok, err)
	}
	if y != 45 {
		t.Errorf("y = %v, want 45", y)
	}
}

func TestCloneRelation_AnchorClampedToSource(t *testing.T) {
	// The anchor sticks out 5px past the left edge, so only (0,10)-(40,30)
	// is cropped and located.
	loc := &fakeLocator{offset: geometry.Point{X: 10, Y: 10}}
	c := newTestCloner(loc, DefaultOptions())
	source := image.NewGray(image.Rect(0, 0, 200, 200))

	got, err := c.CloneRelation(context.Background(), box(-5, 10, 100, 60), source, blankImage(), Labels{
		Statics:      []geometry.Box{box(-5, 10, 40, 30)},
		VariableOnes: []geometry.Box{box(50, 12, 90, 28)},
	})
	if err != nil {
		t.Fatalf("CloneRelation failed: %v", err)
	}

	if len(loc.calls) != 1 || loc.calls[0] != box(0, 10, 40, 30) {
		t.Errorf("located %v, want [(0,10,40,30)]", loc.calls)
	}
	if len(got.Statics) != 1 || got.Statics[0] != box(10, 20, 50, 40) {
		t.Errorf("statics = %v, want [(10,20,50,40)]", got.Statics)
	}
	if len(got.Relations) != 1 || got.Relations[0] != box(5, 20, 110, 70) {
		t.Errorf("relations = %v, want [(5,20,110,70)]", got.Relations)
	}
	if len(got.VariableOnes) != 1 || got.VariableOnes[0] != box(60, 22, 100, 38) {
		t.Errorf("variable ones = %v, want [(60,22,100,38)]", got.VariableOnes)
	}
}

func TestClampToImage(t *testing.T) {
	page := image.NewGray(image.Rect(0, 0, 100, 50))
	tests := []struct {
		name string
		in   geometry.Box
		want geometry.Box
	}{
		{"inside", box(10, 10, 20, 20), box(10, 10, 20, 20)},
		{"past top left", box(-5, -3, 20, 20), box(0, 0, 20, 20)},
		{"past bottom right", box(90, 40, 120, 70), box(90, 40, 100, 50)},
		{"outside", box(150, 60, 160, 70), box(150, 60, 160, 70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampToImage(tt.in, page); got != tt.want {
				t.Errorf("clampToImage(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
