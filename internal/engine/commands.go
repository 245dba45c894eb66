package engine

import (
	"encoding/json"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tableplan/tableplan/internal/geometry"
	"github.com/tableplan/tableplan/internal/gesture"
)

// DrawCommand is a single drawing operation for the frontend to execute on
// a Canvas2D context. Coordinates are in canvas space; the leading
// "viewport" command carries the zoom transform.
type DrawCommand struct {
	Op          string         `json:"op"`                    // "viewport", "grid", "path", "text", "selection", "handle"
	ElementID   string         `json:"elementId,omitempty"`   // For hit correlation
	Transform   []float64      `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand  `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string         `json:"fill,omitempty"`        // Fill color
	Stroke      string         `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64        `json:"strokeWidth,omitempty"` // Stroke width
	Text        string         `json:"text,omitempty"`        // Text content for "text" ops
	X           float64        `json:"x,omitempty"`           // Anchor for "text" and "handle" ops
	Y           float64        `json:"y,omitempty"`
	Rect        *geometry.Rect `json:"rect,omitempty"` // Area for "grid" and "selection" ops
	Pitch       float64        `json:"pitch,omitempty"`
	Handle      string         `json:"handle,omitempty"`
	Preview     bool           `json:"preview,omitempty"`
}

const (
	gridStroke  = "#e6e6e6"
	labelOffset = 8
)

// Overlay is the non-element part of a frame.
type Overlay struct {
	Viewport  gesture.Viewport
	Grid      bool
	GridPitch float64
	Selection []string
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front): grid, elements in store
// order, then the selection box and its handles.
func CompileDrawCommands(sg *SceneGraph, ov Overlay) []DrawCommand {
	scale := ov.Viewport.Scale
	if scale <= 0 {
		scale = 1
	}
	commands := []DrawCommand{{
		Op:        "viewport",
		Transform: geometry.ScaleMatrix(scale, scale).Slice(),
	}}

	if ov.Grid && ov.GridPitch > 0 {
		area := geometry.Rect{Width: ov.Viewport.Width / scale, Height: ov.Viewport.Height / scale}
		commands = append(commands, DrawCommand{
			Op:     "grid",
			Rect:   &area,
			Pitch:  ov.GridPitch,
			Stroke: gridStroke,
		})
	}

	if sg == nil {
		return commands
	}

	for _, node := range sg.Nodes {
		compileNode(node, &commands)
	}

	if bounds, ok := GetSelectionBounds(sg, ov.Selection); ok {
		box := bounds.Inflate(gesture.SelectionPadding)
		commands = append(commands, DrawCommand{
			Op:     "selection",
			Rect:   &box,
			Stroke: selectedStroke,
		})
		for _, hp := range gesture.HandlePoints(bounds) {
			commands = append(commands, DrawCommand{
				Op:     "handle",
				Handle: hp.Name,
				X:      hp.X,
				Y:      hp.Y,
				Fill:   selectedStroke,
			})
		}
	}

	return commands
}

// compileNode emits the outline and the two text lines of one element.
func compileNode(node *SceneNode, commands *[]DrawCommand) {
	if len(node.Path) == 0 {
		return
	}

	*commands = append(*commands, DrawCommand{
		Op:          "path",
		ElementID:   node.ID,
		Path:        node.Path,
		Fill:        node.Fill,
		Stroke:      node.Stroke,
		StrokeWidth: node.StrokeWidth,
		Preview:     node.Preview,
	})

	c := node.Bounds.Center()
	*commands = append(*commands,
		DrawCommand{Op: "text", ElementID: node.ID, Text: node.Label, X: c.X, Y: c.Y - labelOffset},
		DrawCommand{Op: "text", ElementID: node.ID, Text: strconv.Itoa(node.Pax) + "p", X: c.X, Y: c.Y + labelOffset},
	)
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// Hit is the result of a hit test. At most one of ElementID and Handle is
// set.
type Hit struct {
	ElementID string `json:"elementId,omitempty"`
	Handle    string `json:"handle,omitempty"`
}

// HitTest returns the id of the topmost element whose outline contains pt,
// or an empty string. Bounds are checked first.
func HitTest(sg *SceneGraph, pt r2.Vec) string {
	if sg == nil {
		return ""
	}

	// Front to back.
	for i := len(sg.Nodes) - 1; i >= 0; i-- {
		node := sg.Nodes[i]
		if len(node.Path) > 0 && node.Bounds.Contains(pt) && node.Outline.Contains(pt) {
			return node.ID
		}
	}
	return ""
}

// GetSelectionBounds returns the combined bounding box of the given
// element ids. Ids missing from the scene are skipped.
func GetSelectionBounds(sg *SceneGraph, ids []string) (geometry.Rect, bool) {
	if sg == nil || len(ids) == 0 {
		return geometry.Rect{}, false
	}

	var boxes []geometry.Rect
	for _, id := range ids {
		if node, ok := sg.NodesById[id]; ok {
			boxes = append(boxes, node.Bounds)
		}
	}
	return geometry.UnionAll(boxes)
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geometry.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
