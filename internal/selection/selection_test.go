package selection

import (
	"reflect"
	"testing"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/viewport"
)

func TestSelectSingle(t *testing.T) {
	tests := []struct {
		name  string
		steps func(s *Set)
		want  []string
	}{
		{
			name: "toggle off",
			steps: func(s *Set) {
				s.SelectSingle("A", false)
				s.SelectSingle("A", true)
			},
			want: []string{},
		},
		{
			name: "additive adds",
			steps: func(s *Set) {
				s.SelectSingle("A", false)
				s.SelectSingle("B", true)
			},
			want: []string{"A", "B"},
		},
		{
			name: "plain click replaces",
			steps: func(s *Set) {
				s.SelectMarquee([]string{"A", "B"}, false)
				s.SelectSingle("C", false)
			},
			want: []string{"C"},
		},
		{
			name: "empty click clears",
			steps: func(s *Set) {
				s.SelectMarquee([]string{"A", "B"}, false)
				s.SelectSingle("", false)
			},
			want: []string{},
		},
		{
			name: "shift empty click keeps",
			steps: func(s *Set) {
				s.SelectMarquee([]string{"A", "B"}, false)
				s.SelectSingle("", true)
			},
			want: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.steps(s)
			if got := s.IDs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSelectMarquee(t *testing.T) {
	s := New()
	s.SelectSingle("A", false)

	s.SelectMarquee([]string{"B", "C"}, true)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("expected union, got %v", got)
	}

	s.SelectMarquee([]string{"C"}, false)
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("expected replacement, got %v", got)
	}

	s.SelectMarquee(nil, false)
	if s.Len() != 0 {
		t.Errorf("expected empty selection, got %v", s.IDs())
	}
}

func TestPrune(t *testing.T) {
	s := New()
	s.SelectMarquee([]string{"A", "B", "C"}, false)
	s.Prune(func(id string) bool { return id != "B" })
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"A", "C"}) {
		t.Errorf("expected [A C], got %v", got)
	}
}

func TestMarqueeHits_CentreOnly(t *testing.T) {
	big := document.NewNote(geom.Pt(10, 10), "", "")
	big.Width, big.Height = 100, 100

	tiny := document.NewNote(geom.Pt(5, 5), "", "")
	tiny.Width, tiny.Height = 1, 1

	rect := geom.RectFromPoints(geom.Pt(0, 0), geom.Pt(5, 5))
	got := MarqueeHits([]document.Element{big, tiny}, rect)

	if !reflect.DeepEqual(got, []string{tiny.ID}) {
		t.Errorf("expected only the element whose centre is inside, got %v", got)
	}
}

func TestBounds(t *testing.T) {
	if _, ok := Bounds(nil); ok {
		t.Fatal("expected no bounds for empty selection")
	}

	a := document.NewNote(geom.Pt(0, 0), "", "")
	a.Width, a.Height = 100, 50
	b := document.NewNote(geom.Pt(200, 0), "", "")
	b.Width, b.Height = 20, 20
	b.Rotation = 90

	got, ok := Bounds([]document.Element{a, b})
	if !ok {
		t.Fatal("expected bounds")
	}
	want := geom.Rect{X: -50, Y: -25, Width: 260, Height: 50}
	if !geom.ApproxEqual(got.Min(), want.Min(), 1e-9) || !geom.ApproxEqual(got.Max(), want.Max(), 1e-9) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestAffordanceAnchor(t *testing.T) {
	view := viewport.State{Pan: geom.Pt(10, 20), Zoom: 2}
	bounds := geom.Rect{X: 0, Y: 0, Width: 50, Height: 25}
	got := AffordanceAnchor(bounds, view)
	want := geom.Pt(110+AffordanceOffset.X, 70+AffordanceOffset.Y)
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
