package session

import (
	"encoding/json"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/engine"
	"github.com/tableplan/tableplan/internal/gesture"
)

type Message struct {
	Type     string          `json:"type"`
	PlanID   string          `json:"planId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Plan sync
	TypeDocSync = "doc.sync"
	TypeState   = "state"

	// Command message types
	TypeCmdSubmit = "cmd.submit"
	TypeCmdAck    = "cmd.ack"
	TypeCmdNack   = "cmd.nack"
)

// Command types
const (
	CmdElementAdd       = "element.add"
	CmdElementDuplicate = "element.duplicate"
	CmdElementPatch     = "element.patch"
	CmdSelectionSet     = "selection.set"
	CmdSelectionToggle  = "selection.toggle"
	CmdSelectionClear   = "selection.clear"
	CmdClick            = "click"
	CmdGridToggle       = "grid.toggle"
	CmdGridSnap         = "grid.snap"
	CmdAlign            = "align"
	CmdDistribute       = "distribute"
	CmdViewportSet      = "viewport.set"
	CmdZoomSet          = "zoom.set"
	CmdPointerDown      = "pointer.down"
	CmdPointerMove      = "pointer.move"
	CmdPointerUp        = "pointer.up"
	CmdPointerCancel    = "pointer.cancel"
	CmdSnapshotReplace  = "snapshot.replace"
)

// Command is one editor action sent by a client. Only the fields its type
// needs are read.
type Command struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// For selection.set
	IDs []string `json:"ids,omitempty"`

	// For element.patch and selection.toggle
	ElementID string  `json:"elementId,omitempty"`
	Label     *string `json:"label,omitempty"`
	Pax       *int    `json:"pax,omitempty"`

	// Screen position for click and pointer.*, origin for viewport.set
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// For viewport.set
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// For zoom.set
	Scale float64 `json:"scale,omitempty"`

	// For pointer.down
	Target string `json:"target,omitempty"`
	Handle string `json:"handle,omitempty"`

	// For align and distribute
	Mode string `json:"mode,omitempty"`
	Axis string `json:"axis,omitempty"`

	// For snapshot.replace
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
}

// CommandSubmitPayload is the payload for cmd.submit messages
type CommandSubmitPayload struct {
	Command Command `json:"command"`
}

// CommandAckPayload is the payload for cmd.ack messages
type CommandAckPayload struct {
	CommandID string `json:"commandId"`
	Seq       int64  `json:"seq"`
}

// CommandNackPayload is the payload for cmd.nack messages
type CommandNackPayload struct {
	CommandID string `json:"commandId"`
	Reason    string `json:"reason"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	PlanID   string `json:"planId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// StatePayload is the full editor state sent in doc.sync and state
// messages.
type StatePayload struct {
	Version   uint64              `json:"version"`
	Seq       int64               `json:"seq"`
	Elements  []document.Element  `json:"elements"`
	Selection []string            `json:"selection"`
	Toolbar   engine.ToolbarState `json:"toolbar"`
	Viewport  gesture.Viewport    `json:"viewport"`
	Gesture   gesture.State       `json:"gesture"`
}

func newMessage(typ string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
