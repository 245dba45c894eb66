package engine

import "github.com/tableplan/tableplan/internal/geometry"

// SceneGraph is the render-ready state of the plan. It is retained between
// renders and rebuilt only when the store or the selection changes.
type SceneGraph struct {
	Nodes     []*SceneNode
	NodesById map[string]*SceneNode
	Dirty     bool
}

// SceneNode is one element resolved for drawing: the preview geometry wins
// over the committed one.
type SceneNode struct {
	ID    string
	Label string
	Pax   int

	Path        []PathCommand
	Fill        string
	Stroke      string
	StrokeWidth float64

	Selected bool
	Preview  bool

	// Hit testing
	Bounds  geometry.Rect
	Outline geometry.Path
}

// PathCommand is one path segment in Canvas2D form: ["M", x, y],
// ["L", x, y] or ["Z"].
type PathCommand []interface{}

func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesById: make(map[string]*SceneNode),
		Dirty:     true,
	}
}
