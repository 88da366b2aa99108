package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/museboard/museboard/internal/document"
)

// Hub owns every live session, keyed by board id.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options

	idleTimeout time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewHub creates a hub. Sessions without a client are reaped after
// idleTimeout; zero keeps them until Stop.
func NewHub(opts Options, idleTimeout time.Duration) *Hub {
	return &Hub{
		sessions:    make(map[string]*Session),
		opts:        opts,
		idleTimeout: idleTimeout,
		stop:        make(chan struct{}),
	}
}

// Run reaps idle sessions until Stop is called.
func (h *Hub) Run() {
	if h.idleTimeout <= 0 {
		<-h.stop
		return
	}

	interval := h.idleTimeout / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			h.reap(now)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) reap(now time.Time) {
	var idle []*Session
	h.mu.Lock()
	for id, s := range h.sessions {
		if s.Idle(now) > h.idleTimeout {
			delete(h.sessions, id)
			idle = append(idle, s)
		}
	}
	h.mu.Unlock()

	for _, s := range idle {
		s.Stop()
		slog.Info("session reaped", "board", s.ID())
	}
}

// Create starts a session for b. If the board already has a session, that
// session is returned unchanged.
func (h *Hub) Create(b *document.Board) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[b.ID]; ok {
		return s
	}
	s := newSession(b, h.opts)
	h.sessions[b.ID] = s
	slog.Info("session created", "board", b.ID, "elements", b.Len())
	return s
}

func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Board returns a snapshot of a live board.
func (h *Hub) Board(ctx context.Context, id string) (*document.Board, error) {
	s, err := h.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Board(ctx)
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stop ends the reaper and every session.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	slog.Info("hub stopped", "sessions", len(sessions))
}
