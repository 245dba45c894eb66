package session

import (
	"fmt"

	"github.com/tableplan/tableplan/internal/arrange"
)

// applyLocked applies the command without locking (caller must hold lock)
func (p *Plan) applyLocked(cmd Command) error {
	e := p.engine

	switch cmd.Type {
	case CmdElementAdd:
		e.AddElement()
	case CmdElementDuplicate:
		e.DuplicateSelection()
	case CmdElementPatch:
		return p.applyPatch(cmd)

	case CmdSelectionSet:
		e.SetSelection(cmd.IDs)
	case CmdSelectionToggle:
		if _, ok := e.Element(cmd.ElementID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownElement, cmd.ElementID)
		}
		e.ClickElement(cmd.ElementID)
	case CmdSelectionClear:
		e.ClickCanvas()
	case CmdClick:
		e.Click(cmd.X, cmd.Y)

	case CmdGridToggle:
		e.ToggleGrid()
	case CmdGridSnap:
		e.SnapToGrid()
	case CmdAlign:
		return e.Align(arrange.Mode(cmd.Mode))
	case CmdDistribute:
		return e.Distribute(arrange.Axis(cmd.Axis))

	case CmdViewportSet:
		e.SetCanvasRect(cmd.X, cmd.Y, cmd.Width, cmd.Height)
	case CmdZoomSet:
		e.SetScale(cmd.Scale)

	case CmdPointerDown:
		return e.PointerDown(cmd.Target, cmd.Handle, cmd.X, cmd.Y)
	case CmdPointerMove:
		e.PointerMove(cmd.X, cmd.Y)
	case CmdPointerUp:
		e.PointerUp(cmd.X, cmd.Y)
	case CmdPointerCancel:
		e.CancelGesture()

	case CmdSnapshotReplace:
		return e.ImportJSON(cmd.Snapshot)

	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type)
	}
	return nil
}

func (p *Plan) applyPatch(cmd Command) error {
	if _, ok := p.engine.Element(cmd.ElementID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownElement, cmd.ElementID)
	}
	if cmd.Label != nil {
		p.engine.SetLabel(cmd.ElementID, *cmd.Label)
	}
	if cmd.Pax != nil {
		p.engine.SetPax(cmd.ElementID, *cmd.Pax)
	}
	return nil
}
