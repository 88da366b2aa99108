package document

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/museboard/museboard/internal/typeid"
)

// Board is the ordered element collection of one canvas. It is not safe for
// concurrent use; a board is owned by a single interaction loop.
type Board struct {
	ID   string
	Name string

	elements map[string]Element
	// seq records insertion order and breaks ties between equal z-indexes.
	seq     map[string]int
	nextSeq int
}

// NewBoard creates an empty board.
func NewBoard(id, name string) *Board {
	if id == "" {
		id = typeid.NewBoardID()
	}
	if name == "" {
		name = "Untitled board"
	}
	return &Board{
		ID:       id,
		Name:     name,
		elements: make(map[string]Element),
		seq:      make(map[string]int),
	}
}

// Clone returns a deep copy that preserves ids, z-indexes and tie order.
func (b *Board) Clone() *Board {
	nb := NewBoard(b.ID, b.Name)
	for id, el := range b.elements {
		nb.elements[id] = el.Clone()
		nb.seq[id] = b.seq[id]
	}
	nb.nextSeq = b.nextSeq
	return nb
}

// Len returns the number of elements.
func (b *Board) Len() int { return len(b.elements) }

// Has reports whether id names an element on the board.
func (b *Board) Has(id string) bool {
	_, ok := b.elements[id]
	return ok
}

// Get returns a copy of the element with the given id.
func (b *Board) Get(id string) (Element, bool) {
	el, ok := b.elements[id]
	if !ok {
		return Element{}, false
	}
	return el.Clone(), true
}

// TopZ returns the highest z-index on the board, or 0 when empty.
func (b *Board) TopZ() int {
	top := 0
	first := true
	for _, el := range b.elements {
		if first || el.ZIndex > top {
			top = el.ZIndex
			first = false
		}
	}
	return top
}

func (b *Board) bottomZ() int {
	bottom := 0
	first := true
	for _, el := range b.elements {
		if first || el.ZIndex < bottom {
			bottom = el.ZIndex
			first = false
		}
	}
	return bottom
}

// Add inserts el on top of the stack and returns the stored value. An empty
// id is replaced with a fresh one for the element's kind.
func (b *Board) Add(el Element) (Element, error) {
	if err := el.Validate(); err != nil {
		return Element{}, err
	}
	if el.ID == "" {
		el.ID = newID(el.Kind)
	}
	if b.Has(el.ID) {
		return Element{}, fmt.Errorf("add %s: %w", el.ID, ErrDuplicateID)
	}

	el = el.Clone()
	if b.Len() == 0 {
		el.ZIndex = 1
	} else {
		el.ZIndex = b.TopZ() + 1
	}
	b.insert(el)
	return el.Clone(), nil
}

// insert stores el as given, keeping its z-index.
func (b *Board) insert(el Element) {
	b.elements[el.ID] = el
	b.seq[el.ID] = b.nextSeq
	b.nextSeq++
}

// Replace swaps in el for the element with the same id.
func (b *Board) Replace(el Element) error {
	if !b.Has(el.ID) {
		return fmt.Errorf("replace %s: %w", el.ID, ErrNotFound)
	}
	if err := el.Validate(); err != nil {
		return err
	}
	b.elements[el.ID] = el.Clone()
	return nil
}

// Delete removes the element with the given id. It reports whether an
// element was removed.
func (b *Board) Delete(id string) bool {
	if !b.Has(id) {
		return false
	}
	delete(b.elements, id)
	delete(b.seq, id)
	return true
}

// Ordered returns every element in rendering order, back to front.
func (b *Board) Ordered() []Element {
	out := make([]Element, 0, len(b.elements))
	for _, el := range b.elements {
		out = append(out, el.Clone())
	}
	b.sortByZ(out)
	return out
}

// Lookup returns the elements named by ids in rendering order. Unknown ids
// are skipped.
func (b *Board) Lookup(ids []string) []Element {
	out := make([]Element, 0, len(ids))
	for _, id := range ids {
		if el, ok := b.elements[id]; ok {
			out = append(out, el.Clone())
		}
	}
	b.sortByZ(out)
	return out
}

func (b *Board) sortByZ(els []Element) {
	sort.SliceStable(els, func(i, j int) bool {
		if els[i].ZIndex != els[j].ZIndex {
			return els[i].ZIndex < els[j].ZIndex
		}
		return b.seq[els[i].ID] < b.seq[els[j].ID]
	})
}

// BringToFront moves the element above every other element.
func (b *Board) BringToFront(id string) error {
	el, ok := b.elements[id]
	if !ok {
		return fmt.Errorf("bring %s to front: %w", id, ErrNotFound)
	}
	el.ZIndex = b.TopZ() + 1
	b.elements[id] = el
	return nil
}

// SendToBack moves the element below every other element.
func (b *Board) SendToBack(id string) error {
	el, ok := b.elements[id]
	if !ok {
		return fmt.Errorf("send %s to back: %w", id, ErrNotFound)
	}
	el.ZIndex = b.bottomZ() - 1
	b.elements[id] = el
	return nil
}

// SetText replaces a note's text.
func (b *Board) SetText(id, text string) error {
	el, ok := b.elements[id]
	if !ok {
		return fmt.Errorf("set text on %s: %w", id, ErrNotFound)
	}
	switch el.Kind {
	case KindNote:
		el = el.Clone()
		el.Note.Text = text
		b.elements[id] = el
		return nil
	case KindImage, KindArrow:
		return fmt.Errorf("set text on %s %s: %w", el.Kind, id, ErrWrongVariant)
	}
	return fmt.Errorf("set text on %s: %w", id, ErrInvalidKind)
}

// SetColor replaces the colour of a note or arrow.
func (b *Board) SetColor(id, color string) error {
	el, ok := b.elements[id]
	if !ok {
		return fmt.Errorf("set color on %s: %w", id, ErrNotFound)
	}
	el = el.Clone()
	switch el.Kind {
	case KindNote:
		el.Note.Color = color
	case KindArrow:
		el.Arrow.Color = color
	case KindImage:
		return fmt.Errorf("set color on image %s: %w", id, ErrWrongVariant)
	default:
		return fmt.Errorf("set color on %s: %w", id, ErrInvalidKind)
	}
	b.elements[id] = el
	return nil
}

func newID(kind Kind) string {
	switch kind {
	case KindNote:
		return typeid.NewNoteID()
	case KindImage:
		return typeid.NewImageID()
	case KindArrow:
		return typeid.NewArrowID()
	}
	return typeid.New(string(kind))
}

type boardJSON struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Elements []Element `json:"elements"`
}

// MarshalJSON encodes the board with its elements in rendering order.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{ID: b.ID, Name: b.Name, Elements: b.Ordered()})
}

// UnmarshalJSON decodes a board, keeping each element's z-index.
func (b *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	nb := NewBoard(raw.ID, raw.Name)
	for _, el := range raw.Elements {
		if err := el.Validate(); err != nil {
			return fmt.Errorf("decode board: %w", err)
		}
		if el.ID == "" {
			el.ID = newID(el.Kind)
		}
		if nb.Has(el.ID) {
			return fmt.Errorf("decode board %s: %w", el.ID, ErrDuplicateID)
		}
		if el.Kind == KindArrow {
			el = el.SyncArrow(0)
		}
		nb.insert(el.Clone())
	}
	*b = *nb
	return nil
}
