package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Conn is the part of a websocket connection a client needs.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Ping(ctx context.Context) error
	SetReadLimit(n int64)
	Close(code websocket.StatusCode, reason string) error
}

// Client is the UI connection attached to a session. Its send channel is
// owned by the session loop, which closes it on detach or replacement.
type Client struct {
	session  *Session
	conn     Conn
	send     chan []byte
	ClientID string
}

func NewClient(s *Session, conn Conn, clientID string) *Client {
	return &Client{
		session:  s,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		ClientID: clientID,
	}
}

// ReadPump feeds inbound messages to the session until the connection fails
// or the session rejects the client. It runs on the handler goroutine and
// detaches the client on the way out.
func (c *Client) ReadPump(ctx context.Context) {
	defer c.session.Detach(c)
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	c.conn.SetReadLimit(maxMsgSize)
	for {
		msg, err := c.read(ctx)
		if err != nil {
			if !closedNormally(err) {
				slog.Debug("client read", "error", err, "client", c.ClientID)
			}
			return
		}
		if msg == nil {
			continue
		}
		if !c.session.Handle(c, msg) {
			return
		}
	}
}

// read returns the next message stamped with this client's identity, or nil
// for a frame that is not valid JSON.
func (c *Client) read(ctx context.Context) (*Message, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("undecodable message", "error", err, "client", c.ClientID)
		return nil, nil
	}
	msg.ClientID = c.ClientID
	msg.BoardID = c.session.ID()
	return &msg, nil
}

func closedNormally(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}

// WritePump drains the send channel to the connection and keeps it alive
// with pings. It returns once the session closes the channel.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for {
		var err error
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			err = withDeadline(ctx, func(ctx context.Context) error {
				return c.conn.Write(ctx, websocket.MessageText, data)
			})
		case <-ticker.C:
			err = withDeadline(ctx, c.conn.Ping)
		case <-ctx.Done():
			return
		}
		if err != nil {
			slog.Debug("client write", "error", err, "client", c.ClientID)
			return
		}
	}
}

func withDeadline(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return fn(ctx)
}

// Send queues msg for the write pump without blocking the session loop; a
// client that cannot keep up loses messages. Only the session loop calls it.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client lagging, message dropped", "client", c.ClientID, "type", msg.Type)
	}
}
