package engine

import (
	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
)

const (
	tableFill      = "#f4ede1"
	tableStroke    = "#6b5843"
	selectedStroke = "#2f80ed"
	previewFill    = "#e3ecfa"
)

// BuildSceneGraph resolves elements, in store order, into scene nodes.
func BuildSceneGraph(elements []document.Element, selected func(id string) bool) *SceneGraph {
	sg := NewSceneGraph()

	for _, el := range elements {
		cur := el.Geometry.Current()
		node := &SceneNode{
			ID:          el.ID,
			Label:       el.Label,
			Pax:         el.Pax,
			Path:        toPathCommands(cur.Path),
			Fill:        tableFill,
			Stroke:      tableStroke,
			StrokeWidth: 1,
			Selected:    selected(el.ID),
			Preview:     el.Geometry.HasPreview(),
			Bounds:      cur.BBox,
			Outline:     cur.Path,
		}
		if node.Selected {
			node.Stroke = selectedStroke
			node.StrokeWidth = 2
		}
		if node.Preview {
			node.Fill = previewFill
		}
		sg.Nodes = append(sg.Nodes, node)
		sg.NodesById[el.ID] = node
	}

	sg.Dirty = false
	return sg
}

func toPathCommands(p geometry.Path) []PathCommand {
	segs := p.Segments()
	out := make([]PathCommand, 0, len(segs))
	for _, s := range segs {
		if s.Op == geometry.Close {
			out = append(out, PathCommand{"Z"})
			continue
		}
		out = append(out, PathCommand{string(rune(s.Op)), s.Pt.X, s.Pt.Y})
	}
	return out
}
