package session

import (
	"encoding/json"
	"fmt"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/engine"
	"github.com/museboard/museboard/internal/geom"
)

type Message struct {
	Type     string          `json:"type"`
	BoardID  string          `json:"boardId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Pointer and window input
	TypePointerDown  = "pointer.down"
	TypePointerMove  = "pointer.move"
	TypePointerUp    = "pointer.up"
	TypePointerLeave = "pointer.leave"
	TypeWindowBlur   = "window.blur"
	TypeWheel        = "wheel"
	TypeContextMenu  = "contextmenu"

	// Viewport
	TypeViewResize = "view.resize"
	TypeViewReset  = "view.reset"

	// Element edits
	TypeElementAdd    = "element.add"
	TypeElementDelete = "element.delete"
	TypeElementText   = "element.text"
	TypeElementColor  = "element.color"
	TypeElementOrder  = "element.order"

	TypeGenerate = "generate"

	// Outbound
	TypeWelcome         = "welcome"
	TypeFrame           = "frame"
	TypeSelection       = "selection"
	TypeGenerateStarted = "generate.started"
	TypeGenerateDone    = "generate.done"
	TypeGenerateFailed  = "generate.failed"
	TypeError           = "error"
)

type PointerPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift,omitempty"`
	Pan   bool    `json:"pan,omitempty"`
}

func (p PointerPayload) Point() geom.Point { return geom.Pt(p.X, p.Y) }

func (p PointerPayload) Modifiers() engine.Modifiers {
	return engine.Modifiers{Shift: p.Shift, Pan: p.Pan}
}

type WheelPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementAddPayload creates a note, image or arrow. A missing At places
// the element at the centre of the view.
type ElementAddPayload struct {
	Kind   document.Kind `json:"kind"`
	At     *geom.Point   `json:"at,omitempty"`
	Text   string        `json:"text,omitempty"`
	Color  string        `json:"color,omitempty"`
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	Source string        `json:"source,omitempty"`
	Start  *geom.Point   `json:"start,omitempty"`
	End    *geom.Point   `json:"end,omitempty"`
}

// ElementDeletePayload deletes one element, or the whole selection when ID
// is empty.
type ElementDeletePayload struct {
	ID string `json:"id,omitempty"`
}

type ElementTextPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type ElementColorPayload struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

const (
	OrderFront = "front"
	OrderBack  = "back"
)

type ElementOrderPayload struct {
	ID    string `json:"id"`
	Order string `json:"order"`
}

type GeneratePayload struct {
	Prompt string `json:"prompt,omitempty"`
}

type WelcomePayload struct {
	ClientID   string          `json:"clientId"`
	Board      *document.Board `json:"board"`
	Generation bool            `json:"generation"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type ContextMenuPayload struct {
	World     geom.Point `json:"world"`
	ElementID string     `json:"elementId,omitempty"`
}

type GenerateStatusPayload struct {
	RequestID string   `json:"requestId"`
	Elements  []string `json:"elements,omitempty"`
	Added     []string `json:"added,omitempty"`
	Text      string   `json:"text,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewMessage builds an outbound message with an encoded payload.
func NewMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return &Message{Type: typ, Payload: data}, nil
}
