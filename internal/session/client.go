package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is the single editor connection attached to a plan.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool

	PlanID   string
	ClientID string
}

func NewClient(hub *Hub, conn *websocket.Conn, planID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		PlanID:   planID,
		ClientID: uuid.NewString(),
	}
}

// ReadPump feeds incoming commands to the hub until the editor goes away.
// It releases the plan on return.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()
	c.conn.SetReadLimit(maxMsgSize)

	for {
		msg, err := c.read(ctx)
		switch {
		case errors.Is(err, errBadFrame):
			c.sendError("invalid message")
		case err != nil:
			if !isClosure(err) {
				slog.Debug("editor read failed", "plan", c.PlanID, "client", c.ClientID, "error", err)
			}
			return
		default:
			c.hub.handleMessage(c, msg)
		}
	}
}

var errBadFrame = errors.New("bad frame")

func (c *Client) read(ctx context.Context) (*Message, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText {
		return nil, errBadFrame
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("undecodable editor frame", "plan", c.PlanID, "error", err)
		return nil, errBadFrame
	}
	// The connection owns its identity; frames cannot claim another plan.
	msg.PlanID, msg.ClientID = c.PlanID, c.ClientID
	return &msg, nil
}

func isClosure(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return errors.Is(err, context.Canceled)
}

// WritePump drains the send queue and keeps the connection alive with
// pings. Closing the queue ends it.
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
			err = c.withDeadline(ctx, func(ctx context.Context) error {
				return c.conn.Write(ctx, websocket.MessageText, data)
			})
		case <-ticker.C:
			err = c.withDeadline(ctx, c.conn.Ping)
		case <-ctx.Done():
			return
		}
		if err != nil {
			slog.Debug("editor write failed", "plan", c.PlanID, "client", c.ClientID, "error", err)
			return
		}
	}
}

func (c *Client) withDeadline(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return fn(ctx)
}

// Send queues msg for the write pump. A full queue drops the message.
func (c *Client) Send(msg *Message) {
	if msg.PlanID == "" {
		msg.PlanID = c.PlanID
	}
	if msg.ClientID == "" {
		msg.ClientID = c.ClientID
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("encode outgoing message", "type", msg.Type, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("editor queue full, dropping message", "plan", c.PlanID, "type", msg.Type)
	}
}

// close ends the write pump; safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) sendError(text string) {
	if msg, err := newMessage(TypeError, ErrorPayload{Message: text}); err == nil {
		c.Send(msg)
	}
}
