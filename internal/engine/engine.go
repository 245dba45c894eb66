package engine

import (
	"log/slog"

	"github.com/tableplan/tableplan/internal/arrange"
	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
	"github.com/tableplan/tableplan/internal/gesture"
	"github.com/tableplan/tableplan/internal/selection"
	"github.com/tableplan/tableplan/internal/store"
)

// Options configures element defaults and the grid.
type Options struct {
	ElementWidth  float64
	ElementHeight float64
	ElementPax    int
	GridPitch     float64
	// IDs overrides the element id generator. Nil means TypeIDs.
	IDs store.IDGenerator
}

func DefaultOptions() Options {
	return Options{
		ElementWidth:  100,
		ElementHeight: 100,
		ElementPax:    2,
		GridPitch:     arrange.DefaultPitch,
	}
}

// Engine is the floor-plan editor. It owns the element store, the
// selection, the viewport and the gesture controller, and is the only
// mutator of all four. It is not safe for concurrent use.
type Engine struct {
	opts Options

	store     *store.Store
	selection selection.Selection
	viewport  gesture.Viewport
	gesture   *gesture.Controller

	gridVisible bool

	// Retained scene graph
	sceneGraph   *SceneGraph
	builtVersion uint64
	dirty        bool
}

// NewEngine creates an empty editor.
func NewEngine(opts Options) *Engine {
	var storeOpts []store.Option
	if opts.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
	}
	s := store.New(storeOpts...)

	return &Engine{
		opts:       opts,
		store:      s,
		viewport:   gesture.DefaultViewport(),
		gesture:    gesture.NewController(s),
		sceneGraph: NewSceneGraph(),
		dirty:      true,
	}
}

// --- Data ---

// ImportJSON replaces every element with the decoded snapshot. Malformed
// input is discarded: the current plan is kept and the error is returned
// for diagnostics.
func (e *Engine) ImportJSON(data []byte) error {
	if err := e.store.ReplaceAll(data); err != nil {
		slog.Warn("engine: snapshot import discarded", "error", err)
		return err
	}
	e.afterReplace()
	return nil
}

// ExportJSON returns the pretty-printed snapshot.
func (e *Engine) ExportJSON() ([]byte, error) {
	return e.store.Snapshot().Encode()
}

// LoadSample replaces the plan with the built-in sample layout.
func (e *Engine) LoadSample() {
	e.store.Reset(document.Sample(e.store.NewID))
	e.afterReplace()
}

func (e *Engine) afterReplace() {
	e.gesture.Reset()
	e.selection.Retain(e.store.Has)
	e.dirty = true
}

// --- Queries ---

// Elements returns every element in store order.
func (e *Engine) Elements() []document.Element {
	return e.store.List()
}

func (e *Engine) Element(id string) (document.Element, bool) {
	return e.store.Get(id)
}

func (e *Engine) Snapshot() document.Snapshot {
	return e.store.Snapshot()
}

// Version increases whenever an element changes.
func (e *Engine) Version() uint64 {
	return e.store.Version()
}

// Selection returns the selected ids that still exist, in selection order.
func (e *Engine) Selection() []string {
	ids := e.selection.IDs()
	live := ids[:0]
	for _, id := range ids {
		if e.store.Has(id) {
			live = append(live, id)
		}
	}
	return live
}

func (e *Engine) Viewport() gesture.Viewport {
	return e.viewport
}

func (e *Engine) GestureState() gesture.State {
	return e.gesture.State()
}

func (e *Engine) GridPitch() float64 {
	return e.opts.GridPitch
}

// SelectionBounds returns the union of the selected elements' current
// bounds.
func (e *Engine) SelectionBounds() (geometry.Rect, bool) {
	return GetSelectionBounds(e.scene(), e.Selection())
}

// Render returns the draw commands for the current frame.
func (e *Engine) Render() []DrawCommand {
	return CompileDrawCommands(e.scene(), Overlay{
		Viewport:  e.viewport,
		Grid:      e.gridVisible,
		GridPitch: e.opts.GridPitch,
		Selection: e.Selection(),
	})
}

// RenderJSON is Render serialized for the browser bridge.
func (e *Engine) RenderJSON() string {
	result, _ := DrawCommandsToJSON(e.Render())
	return result
}

// scene rebuilds the scene graph if the store or selection changed.
func (e *Engine) scene() *SceneGraph {
	if e.dirty || e.sceneGraph.Dirty || e.builtVersion != e.store.Version() {
		e.sceneGraph = BuildSceneGraph(e.store.List(), e.selection.IsSelected)
		e.builtVersion = e.store.Version()
		e.dirty = false
	}
	return e.sceneGraph
}
