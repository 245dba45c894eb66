package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/engine"
	"github.com/tableplan/tableplan/internal/svgio"
)

var (
	ErrUnknownCommand = errors.New("unknown command type")
	ErrUnknownElement = errors.New("element not found")
)

// Plan holds the authoritative editor for one floor plan. Every mutation
// runs under its lock and bumps the sequence number.
type Plan struct {
	mu         sync.Mutex
	id         string
	engine     *engine.Engine
	seq        int64
	lastActive time.Time
}

// NewPlan wraps an engine under id.
func NewPlan(id string, eng *engine.Engine) *Plan {
	return &Plan{
		id:         id,
		engine:     eng,
		lastActive: time.Now(),
	}
}

func (p *Plan) ID() string { return p.id }

// Apply runs cmd against the editor and returns the new sequence number.
// A failed command leaves the sequence unchanged.
func (p *Plan) Apply(cmd Command) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastActive = time.Now()
	if err := p.applyLocked(cmd); err != nil {
		return p.seq, err
	}
	p.seq++
	return p.seq, nil
}

// State returns the full editor state.
func (p *Plan) State() StatePayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Plan) stateLocked() StatePayload {
	e := p.engine
	return StatePayload{
		Version:   e.Version(),
		Seq:       p.seq,
		Elements:  e.Elements(),
		Selection: e.Selection(),
		Toolbar:   e.ToolbarState(),
		Viewport:  e.Viewport(),
		Gesture:   e.GestureState(),
	}
}

// Snapshot returns the pretty-printed snapshot of the plan.
func (p *Plan) Snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastActive = time.Now()
	return p.engine.ExportJSON()
}

// Elements returns the plan's elements in store order.
func (p *Plan) Elements() []document.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastActive = time.Now()
	return p.engine.Elements()
}

// ReplaceSnapshot replaces every element. Malformed data leaves the plan
// untouched.
func (p *Plan) ReplaceSnapshot(data []byte) (int64, error) {
	return p.Apply(Command{Type: CmdSnapshotReplace, Snapshot: data})
}

// ImportSVG adds the shapes of an SVG document as new tables and returns
// their ids.
func (p *Plan) ImportSVG(r io.Reader, maxBytes int64) ([]string, int64, error) {
	shapes, err := svgio.Import(r, maxBytes)
	if err != nil {
		return nil, 0, fmt.Errorf("import svg: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastActive = time.Now()
	ids := p.engine.AddShapes(shapes)
	p.seq++
	return ids, p.seq, nil
}

// IdleSince reports when the plan was last used.
func (p *Plan) IdleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}
