// Package store holds the ordered element collection and is the only place
// element fields are written.
package store

import (
	"fmt"
	"log/slog"

	"github.com/tableplan/tableplan/internal/document"
	"github.com/tableplan/tableplan/internal/geometry"
	"github.com/tableplan/tableplan/internal/typeid"
)

// DuplicateGap is the horizontal gap left between an element and its copy.
const DuplicateGap = 10

// IDGenerator allocates element identifiers.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// TypeIDs generates "tbl_..." TypeIDs.
var TypeIDs IDGenerator = IDFunc(typeid.NewElementID)

// Sequence generates "<prefix>1", "<prefix>2", ... and is meant for tests
// and deterministic fixtures.
type Sequence struct {
	Prefix string
	n      int
}

func (s *Sequence) NewID() string {
	s.n++
	return fmt.Sprintf("%s%d", s.Prefix, s.n)
}

// Patch lists the fields to change on one element. Nil fields are left
// alone.
type Patch struct {
	Label *string
	Pax   *int
	// Path commits new geometry and discards any preview.
	Path *geometry.Path
	// NextPath sets the preview overlay.
	NextPath     *geometry.Path
	ClearPreview bool
}

// Store is the element collection. It is not safe for concurrent use; the
// owner serializes access.
type Store struct {
	ids      IDGenerator
	order    []string
	elements map[string]document.Element
	version  uint64
}

type Option func(*Store)

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

func New(opts ...Option) *Store {
	s := &Store{
		ids:      TypeIDs,
		elements: make(map[string]document.Element),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID allocates an identifier that is not currently in use.
func (s *Store) NewID() string {
	return s.newID(nil)
}

func (s *Store) newID(pending map[string]bool) string {
	for {
		id := s.ids.NewID()
		if _, taken := s.elements[id]; !taken && id != "" && !pending[id] {
			return id
		}
	}
}

// Create builds a new element from defaults without inserting it. Only the
// committed path and pax of defaults are used; the label is always the
// default label for the new id.
func (s *Store) Create(defaults document.Element) document.Element {
	id := s.NewID()
	return document.Element{
		ID:       id,
		Label:    document.DefaultLabel(id),
		Pax:      defaults.Pax,
		Geometry: document.NewGeometry(defaults.Geometry.Committed.Path),
	}
}

// AddMany inserts elements in batch order. An id already present is
// overwritten in place; within the batch, later entries win.
func (s *Store) AddMany(batch []document.Element) {
	added := 0
	for _, el := range batch {
		if el.ID == "" {
			slog.Debug("store: skipping element without id")
			continue
		}
		if _, exists := s.elements[el.ID]; !exists {
			s.order = append(s.order, el.ID)
		}
		s.elements[el.ID] = el
		added++
	}
	if added > 0 {
		s.version++
	}
}

// Patch merges p into the element named id. It reports false, and changes
// nothing, when the element does not exist.
func (s *Store) Patch(id string, p Patch) bool {
	el, ok := s.elements[id]
	if !ok {
		slog.Debug("store: patch ignored for unknown element", "id", id)
		return false
	}

	if p.Label != nil {
		el.Label = *p.Label
	}
	if p.Pax != nil {
		el.Pax = *p.Pax
	}
	if p.Path != nil {
		el.Geometry = el.Geometry.WithCommit(*p.Path)
	}
	if p.ClearPreview {
		el.Geometry = el.Geometry.WithoutPreview()
	}
	if p.NextPath != nil {
		el.Geometry = el.Geometry.WithPreview(*p.NextPath)
	}

	s.elements[id] = el
	s.version++
	return true
}

// Preview writes a preview path for id.
func (s *Store) Preview(id string, p geometry.Path) bool {
	return s.Patch(id, Patch{NextPath: &p})
}

// Commit writes a committed path for id, clearing its preview.
func (s *Store) Commit(id string, p geometry.Path) bool {
	return s.Patch(id, Patch{Path: &p})
}

// ClearPreview drops the preview overlay of id.
func (s *Store) ClearPreview(id string) bool {
	return s.Patch(id, Patch{ClearPreview: true})
}

// Duplicate copies every existing element in ids, placing each copy to the
// right of its source, and inserts the copies in one batch. Unknown and
// repeated ids are skipped. The copies are returned in source order.
func (s *Store) Duplicate(ids []string) []document.Element {
	var (
		copies  []document.Element
		seen    = make(map[string]bool, len(ids))
		pending = make(map[string]bool, len(ids))
	)
	for _, id := range ids {
		src, ok := s.elements[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		committed := src.Geometry.Committed
		moved := geometry.Translate(committed.Path, committed.BBox.Width+DuplicateGap, 0)

		newID := s.newID(pending)
		pending[newID] = true
		copies = append(copies, document.Element{
			ID:       newID,
			Label:    fmt.Sprintf("%s (%s)", src.Label, newID),
			Pax:      src.Pax,
			Geometry: document.NewGeometry(moved.Path),
		})
	}

	s.AddMany(copies)
	return copies
}

// ReplaceAll decodes a serialized snapshot and replaces the whole
// collection with it. On error the store is left untouched.
func (s *Store) ReplaceAll(data []byte) error {
	snap, err := document.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	s.Reset(snap)
	return nil
}

// Reset replaces the collection with snap.
func (s *Store) Reset(snap document.Snapshot) {
	s.order = make([]string, 0, len(snap))
	s.elements = make(map[string]document.Element, len(snap))
	for _, el := range snap {
		if _, exists := s.elements[el.ID]; !exists {
			s.order = append(s.order, el.ID)
		}
		s.elements[el.ID] = el
	}
	s.version++
}

// Get returns the element named id.
func (s *Store) Get(id string) (document.Element, bool) {
	el, ok := s.elements[id]
	return el, ok
}

func (s *Store) Has(id string) bool {
	_, ok := s.elements[id]
	return ok
}

// List returns every element in insertion order.
func (s *Store) List() []document.Element {
	out := make([]document.Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.elements[id])
	}
	return out
}

func (s *Store) Len() int {
	return len(s.order)
}

// Snapshot returns the collection as an ordered snapshot.
func (s *Store) Snapshot() document.Snapshot {
	return document.Snapshot(s.List())
}

// Version increases on every successful mutation.
func (s *Store) Version() uint64 {
	return s.version
}
