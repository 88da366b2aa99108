// Package session hosts live boards. Each session owns one canvas engine
// and serialises everything that touches it through a single loop: client
// input, generation results and snapshot requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/museboard/museboard/internal/asset"
	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/engine"
	"github.com/museboard/museboard/internal/generate"
	"github.com/museboard/museboard/internal/geom"
	"github.com/museboard/museboard/internal/selection"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrUnknownMessage  = errors.New("unknown message type")
)

// ImageSaver persists generated images. *asset.Store implements it.
type ImageSaver interface {
	Save(data []byte) (asset.Asset, error)
}

type Options struct {
	Generator       generate.Generator
	Saver           ImageSaver
	GenerateTimeout time.Duration
}

type Session struct {
	id     string
	engine *engine.Engine
	opts   Options

	inbox  chan func()
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Loop-owned state.
	client   *Client
	prompt   string
	requests int

	attached atomic.Bool
	lastSeen atomic.Int64
}

// newSession starts the loop of a session editing b.
func newSession(b *document.Board, opts Options) *Session {
	if opts.Generator == nil {
		opts.Generator = generate.Disabled{}
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     b.ID,
		opts:   opts,
		inbox:  make(chan func(), 64),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.engine = engine.NewEngine(engine.Hooks{
		SelectElement: func(string, bool) { s.sendSelection() },
		MarqueeSelect: func([]string, bool) { s.sendSelection() },
		ContextMenu:   s.sendContextMenu,
		Generate:      s.startGeneration,
	})
	s.engine.LoadBoard(b)
	s.touch()

	go s.run()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-s.ctx.Done():
			if s.client != nil {
				close(s.client.send)
				s.client = nil
			}
			return
		}
	}
}

// do runs fn on the session loop. It reports false once the session has
// stopped.
func (s *Session) do(fn func()) bool {
	select {
	case s.inbox <- fn:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// call runs fn on the loop and waits for it to finish.
func (s *Session) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !s.do(func() { fn(); close(finished) }) {
		return ErrSessionClosed
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop ends the loop and cancels pending generations.
func (s *Session) Stop() {
	s.cancel()
	<-s.done
}

func (s *Session) touch() { s.lastSeen.Store(time.Now().UnixNano()) }

// Idle reports how long the session has been without a client. Attached
// sessions are never idle.
func (s *Session) Idle(now time.Time) time.Duration {
	if s.attached.Load() {
		return 0
	}
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Board returns a snapshot of the board.
func (s *Session) Board(ctx context.Context) (*document.Board, error) {
	var b *document.Board
	if err := s.call(ctx, func() { b = s.engine.Board().Clone() }); err != nil {
		return nil, fmt.Errorf("snapshot board %s: %w", s.id, err)
	}
	return b, nil
}

// Attach makes c the session's client, replacing and disconnecting any
// previous one. An interaction the previous client left in progress is
// released.
func (s *Session) Attach(c *Client) bool {
	return s.do(func() {
		if old := s.client; old != nil {
			slog.Info("client replaced", "board", s.id, "old", old.ClientID, "new", c.ClientID)
			s.engine.Blur()
			close(old.send)
		}
		s.client = c
		s.attached.Store(true)
		s.touch()

		s.send(TypeWelcome, WelcomePayload{
			ClientID:   c.ClientID,
			Board:      s.engine.Board(),
			Generation: s.generationEnabled(),
		})
		s.sendFrame()
		slog.Info("client attached", "board", s.id, "client", c.ClientID)
	})
}

// Detach removes c if it is still the attached client. Any interaction it
// left in progress is released.
func (s *Session) Detach(c *Client) {
	s.do(func() {
		if s.client != c {
			return
		}
		s.engine.Blur()
		close(c.send)
		s.client = nil
		s.attached.Store(false)
		s.touch()
		slog.Info("client detached", "board", s.id, "client", c.ClientID)
	})
}

// Handle queues an inbound message from c.
func (s *Session) Handle(c *Client, msg *Message) bool {
	return s.do(func() {
		if s.client != c {
			return
		}
		if err := s.apply(msg); err != nil {
			slog.Debug("message rejected", "board", s.id, "type", msg.Type, "error", err)
			s.sendError(msg.Seq, err)
		}
		if s.engine.Dirty() {
			s.sendFrame()
		}
	})
}

func (s *Session) apply(msg *Message) error {
	e := s.engine

	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		switch msg.Type {
		case TypePointerDown:
			e.PointerDown(p.Point(), p.Modifiers())
		case TypePointerMove:
			e.PointerMove(p.Point())
		default:
			e.PointerUp(p.Point())
		}
	case TypePointerLeave:
		e.PointerLeave()
	case TypeWindowBlur:
		e.Blur()
	case TypeWheel:
		var p WheelPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Wheel(geom.Pt(p.X, p.Y), p.DeltaY)
	case TypeContextMenu:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.ContextMenu(p.Point())

	case TypeViewResize:
		var p ResizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		e.Resize(p.Width, p.Height)
	case TypeViewReset:
		e.ResetView()

	case TypeElementAdd:
		var p ElementAddPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return s.add(p)
	case TypeElementDelete:
		var p ElementDeletePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.ID == "" {
			e.DeleteSelected()
			return nil
		}
		return e.Delete(p.ID)
	case TypeElementText:
		var p ElementTextPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.SetText(p.ID, p.Text)
	case TypeElementColor:
		var p ElementColorPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return e.SetColor(p.ID, p.Color)
	case TypeElementOrder:
		var p ElementOrderPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		switch p.Order {
		case OrderFront:
			return e.BringToFront(p.ID)
		case OrderBack:
			return e.SendToBack(p.ID)
		}
		return fmt.Errorf("order %q: must be %s or %s", p.Order, OrderFront, OrderBack)

	case TypeGenerate:
		var p GeneratePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		s.prompt = p.Prompt
		_, err := e.Generate()
		s.prompt = ""
		return err

	default:
		return fmt.Errorf("%s: %w", msg.Type, ErrUnknownMessage)
	}
	return nil
}

func (s *Session) add(p ElementAddPayload) error {
	at := s.engine.ViewCenter()
	if p.At != nil {
		at = *p.At
	}

	var err error
	switch p.Kind {
	case document.KindNote:
		_, err = s.engine.AddNote(at, p.Text, p.Color)
	case document.KindImage:
		w, h := p.Width, p.Height
		if w <= 0 || h <= 0 {
			w, h = engine.GeneratedMaxSide, engine.GeneratedMaxSide
		}
		_, err = s.engine.AddImage(at, w, h, p.Source)
	case document.KindArrow:
		start, end := at.Add(geom.Pt(-60, 0)), at.Add(geom.Pt(60, 0))
		if p.Start != nil && p.End != nil {
			start, end = *p.Start, *p.End
		}
		_, err = s.engine.AddArrow(start, end, p.Color)
	default:
		err = fmt.Errorf("add %q: %w", p.Kind, document.ErrInvalidKind)
	}
	return err
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return nil
}

// --- Generation ---

func (s *Session) generationEnabled() bool {
	_, disabled := s.opts.Generator.(generate.Disabled)
	return !disabled
}

// startGeneration runs from the Generate hook on the loop. The request
// itself runs on its own goroutine and posts its result back.
func (s *Session) startGeneration(els []document.Element) {
	s.requests++
	requestID := strconv.Itoa(s.requests)
	anchor, _ := selection.Bounds(els)
	req := generate.Request{Elements: els, Prompt: s.prompt}

	ids := make([]string, len(els))
	for i, el := range els {
		ids[i] = el.ID
	}
	s.send(TypeGenerateStarted, GenerateStatusPayload{RequestID: requestID, Elements: ids})
	slog.Info("generation started", "board", s.id, "request", requestID, "elements", len(els))

	go func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.GenerateTimeout)
		defer cancel()

		out, err := s.generate(ctx, req)
		s.do(func() { s.finishGeneration(requestID, anchor, out, err) })
	}()
}

// generate calls the generator and stores its images. It runs off the loop.
func (s *Session) generate(ctx context.Context, req generate.Request) (engine.Generated, error) {
	res, err := s.opts.Generator.Generate(ctx, req)
	if err != nil {
		return engine.Generated{}, err
	}

	out := engine.Generated{Text: res.Text}
	for _, img := range res.Images {
		gi := engine.GeneratedImage{Width: float64(img.Width), Height: float64(img.Height)}
		if s.opts.Saver != nil {
			a, err := s.opts.Saver.Save(img.Data)
			if err != nil {
				return engine.Generated{}, fmt.Errorf("save generated image: %w", err)
			}
			gi.Source = a.URL
		} else {
			gi.Source = generate.DataURL(img.Data, img.MIMEType)
		}
		out.Images = append(out.Images, gi)
	}
	return out, nil
}

func (s *Session) finishGeneration(requestID string, anchor geom.Rect, out engine.Generated, err error) {
	if err != nil {
		slog.Warn("generation failed", "board", s.id, "request", requestID, "error", err)
		s.send(TypeGenerateFailed, GenerateStatusPayload{RequestID: requestID, Error: err.Error()})
		return
	}

	added, err := s.engine.PlaceGenerated(anchor, out)
	ids := make([]string, len(added))
	for i, el := range added {
		ids[i] = el.ID
	}
	if err != nil {
		slog.Warn("place generated content", "board", s.id, "request", requestID, "error", err)
		s.send(TypeGenerateFailed, GenerateStatusPayload{RequestID: requestID, Added: ids, Error: err.Error()})
	} else {
		slog.Info("generation done", "board", s.id, "request", requestID, "added", len(added))
		s.send(TypeGenerateDone, GenerateStatusPayload{RequestID: requestID, Added: ids, Text: out.Text})
	}
	if s.engine.Dirty() {
		s.sendFrame()
	}
}

// --- Outbound ---

func (s *Session) send(typ string, payload any) {
	if s.client == nil {
		return
	}
	msg, err := NewMessage(typ, payload)
	if err != nil {
		slog.Error("build message", "error", err)
		return
	}
	msg.BoardID = s.id
	s.client.Send(msg)
}

func (s *Session) sendFrame() {
	if s.client == nil {
		return
	}
	s.send(TypeFrame, s.engine.Frame())
}

func (s *Session) sendSelection() {
	s.send(TypeSelection, SelectionPayload{IDs: s.engine.Selected()})
}

func (s *Session) sendContextMenu(world geom.Point, elementID string) {
	s.send(TypeContextMenu, ContextMenuPayload{World: world, ElementID: elementID})
}

func (s *Session) sendError(seq int64, err error) {
	if s.client == nil {
		return
	}
	msg, merr := NewMessage(TypeError, ErrorPayload{Message: err.Error()})
	if merr != nil {
		slog.Error("build message", "error", merr)
		return
	}
	msg.BoardID = s.id
	msg.Seq = seq
	s.client.Send(msg)
}
