package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/tableplan/tableplan/internal/engine"
	"github.com/tableplan/tableplan/internal/typeid"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrPlanBusy     = errors.New("plan already has a connected editor")
)

// evictEvery bounds how often idle plans are looked for.
const evictEvery = time.Minute

type entry struct {
	plan    *Plan
	client  *Client
	claimed bool
}

// Hub is the in-memory plan registry. Each plan accepts one websocket
// editor at a time.
type Hub struct {
	mu    sync.RWMutex
	plans map[string]*entry // planID -> entry

	newEngine   func() *engine.Engine
	idleTimeout time.Duration

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub whose plans are built by newEngine. Plans without
// an editor are dropped after idleTimeout; zero keeps them forever.
func NewHub(newEngine func() *engine.Engine, idleTimeout time.Duration) *Hub {
	return &Hub{
		plans:       make(map[string]*entry),
		newEngine:   newEngine,
		idleTimeout: idleTimeout,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

func (h *Hub) Run() {
	var tick <-chan time.Time
	if h.idleTimeout > 0 {
		ticker := time.NewTicker(min(h.idleTimeout, evictEvery))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case now := <-tick:
			h.evictIdle(now)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every editor and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Create registers a new plan, optionally seeded with the sample layout.
func (h *Hub) Create(sample bool) *Plan {
	eng := h.newEngine()
	if sample {
		eng.LoadSample()
	}
	plan := NewPlan(typeid.NewPlanID(), eng)

	h.mu.Lock()
	h.plans[plan.ID()] = &entry{plan: plan}
	h.mu.Unlock()

	slog.Info("plan created", "plan", plan.ID(), "sample", sample)
	return plan
}

func (h *Hub) Get(planID string) (*Plan, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return e.plan, nil
}

// Delete drops a plan and disconnects its editor.
func (h *Hub) Delete(planID string) error {
	h.mu.Lock()
	e, ok := h.plans[planID]
	if !ok {
		h.mu.Unlock()
		return ErrPlanNotFound
	}
	delete(h.plans, planID)
	h.mu.Unlock()

	if e.client != nil {
		e.client.close()
	}
	slog.Info("plan deleted", "plan", planID)
	return nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.plans)
}

// Claim reserves the editor slot of a plan ahead of a websocket upgrade.
func (h *Hub) Claim(planID string) (*Plan, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.plans[planID]
	if !ok {
		return nil, ErrPlanNotFound
	}
	if e.claimed {
		return nil, ErrPlanBusy
	}
	e.claimed = true
	return e.plan, nil
}

// Release frees a slot taken by Claim when no client was registered.
func (h *Hub) Release(planID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.plans[planID]; ok && e.client == nil {
		e.claimed = false
	}
}

// Notify pushes the current state of a plan to its editor, if connected.
// Used after changes made outside the websocket.
func (h *Hub) Notify(planID string) {
	h.mu.RLock()
	e, ok := h.plans[planID]
	var client *Client
	if ok {
		client = e.client
	}
	h.mu.RUnlock()
	if client == nil {
		return
	}

	st := e.plan.State()
	msg, err := newMessage(TypeState, st)
	if err != nil {
		slog.Error("marshal state", "error", err)
		return
	}
	msg.Seq = st.Seq
	client.Send(msg)
}

// HandleWebSocket upgrades the request and runs the editor connection for
// planID until it closes.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, planID string, opts *websocket.AcceptOptions) {
	if _, err := h.Claim(planID); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrPlanNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrPlanBusy):
			status = http.StatusConflict
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.Release(planID)
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h, conn, planID)
	h.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	e, ok := h.plans[client.PlanID]
	if !ok {
		h.mu.Unlock()
		client.close()
		return
	}
	e.client = client
	e.claimed = true
	h.mu.Unlock()

	if msg, err := newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, PlanID: client.PlanID}); err == nil {
		client.Send(msg)
	}

	st := e.plan.State()
	if msg, err := newMessage(TypeDocSync, st); err == nil {
		msg.Seq = st.Seq
		client.Send(msg)
	}

	slog.Info("client joined", "client", client.ClientID, "plan", client.PlanID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if e, ok := h.plans[client.PlanID]; ok && e.client == client {
		e.client = nil
		e.claimed = false
	}
	h.mu.Unlock()

	client.close()
	slog.Info("client left", "client", client.ClientID, "plan", client.PlanID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	var clients []*Client
	for _, e := range h.plans {
		if e.client != nil {
			clients = append(clients, e.client)
			e.client = nil
			e.claimed = false
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// evictIdle drops plans with no editor that have not been used for the
// idle timeout.
func (h *Hub) evictIdle(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, e := range h.plans {
		if e.claimed || now.Sub(e.plan.IdleSince()) < h.idleTimeout {
			continue
		}
		delete(h.plans, id)
		slog.Info("plan evicted", "plan", id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeCmdSubmit:
		h.handleCommand(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
		sender.sendError("unknown message type: " + msg.Type)
	}
}

func (h *Hub) handleCommand(sender *Client, msg *Message) {
	plan, err := h.Get(sender.PlanID)
	if err != nil {
		sender.sendError(err.Error())
		return
	}

	var submit CommandSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid command payload", "error", err)
		h.nack(sender, "", "invalid payload")
		return
	}
	cmd := submit.Command

	seq, err := plan.Apply(cmd)
	if err != nil {
		slog.Debug("command rejected", "plan", plan.ID(), "type", cmd.Type, "error", err)
		h.nack(sender, cmd.ID, err.Error())
		return
	}

	ack, err := newMessage(TypeCmdAck, CommandAckPayload{CommandID: cmd.ID, Seq: seq})
	if err != nil {
		slog.Error("marshal ack", "error", err)
		return
	}
	ack.Seq = seq
	sender.Send(ack)

	st := plan.State()
	if out, err := newMessage(TypeState, st); err == nil {
		out.Seq = st.Seq
		sender.Send(out)
	}
}

func (h *Hub) nack(sender *Client, commandID, reason string) {
	msg, err := newMessage(TypeCmdNack, CommandNackPayload{CommandID: commandID, Reason: reason})
	if err != nil {
		return
	}
	sender.Send(msg)
}
