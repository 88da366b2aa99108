// Package selection tracks which canvas elements are selected.
package selection

import (
	"sort"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/viewport"
)

// AffordanceOffset is the screen-space gap between the bottom-right corner
// of the selection box and the generate trigger.
var AffordanceOffset = geom.Pt(12, 12)

// Set is an unordered set of element ids.
type Set struct {
	ids map[string]struct{}
}

// New returns an empty selection.
func New() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// SelectSingle handles a click. An empty id means empty canvas: it clears
// the selection unless additive. A non-empty id replaces the selection, or
// toggles its membership when additive.
func (s *Set) SelectSingle(id string, additive bool) {
	if id == "" {
		if !additive {
			s.Clear()
		}
		return
	}

	if !additive {
		s.ids = map[string]struct{}{id: {}}
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// SelectMarquee replaces the selection with ids, or unions them in when
// additive.
func (s *Set) SelectMarquee(ids []string, additive bool) {
	if !additive {
		s.ids = make(map[string]struct{}, len(ids))
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Contains reports whether id is selected.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the selected ids sorted for stable output.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Remove drops id from the selection.
func (s *Set) Remove(id string) {
	delete(s.ids, id)
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.ids = make(map[string]struct{})
}

// Prune drops ids for which exists returns false.
func (s *Set) Prune(exists func(id string) bool) {
	for id := range s.ids {
		if !exists(id) {
			delete(s.ids, id)
		}
	}
}

// MarqueeHits returns the ids of elements whose centre lies inside rect
// (world space, edges inclusive).
//
// Only the centre is tested, not the rotated extent: a large element that
// overlaps the marquee is excluded when its centre is outside it.
func MarqueeHits(elements []document.Element, rect geom.Rect) []string {
	var hits []string
	for _, el := range elements {
		if rect.Contains(el.Position) {
			hits = append(hits, el.ID)
		}
	}
	return hits
}

// Bounds returns the world-space box around the rotated corners of every
// element. ok is false when elements is empty.
func Bounds(elements []document.Element) (geom.Rect, bool) {
	sets := make([][]geom.Point, 0, len(elements))
	for _, el := range elements {
		c := el.Corners()
		sets = append(sets, c[:])
	}
	return geom.UnionBoundingBox(sets...)
}

// AffordanceAnchor returns the screen position of the generate trigger for
// a world-space selection box.
func AffordanceAnchor(bounds geom.Rect, view viewport.State) geom.Point {
	return view.WorldToScreen(bounds.Max()).Add(AffordanceOffset)
}
