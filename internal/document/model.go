// Package document defines the table element, its two-phase geometry and
// the ordered snapshot format exchanged with the import/export panel.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tableplan/tableplan/internal/geometry"
)

var (
	ErrNotObject   = errors.New("snapshot must be a JSON object")
	ErrIDMismatch  = errors.New("element id does not match its key")
	ErrMissingID   = errors.New("element id is empty")
	ErrMissingPath = errors.New("element has no path")
	ErrInvalidPax  = errors.New("pax must be an integer")
)

// Shape is a path together with its cached bounding box.
type Shape struct {
	Path geometry.Path
	BBox geometry.Rect
}

// NewShape wraps p and computes its bounds.
func NewShape(p geometry.Path) Shape {
	return Shape{Path: p, BBox: geometry.Bounds(p)}
}

// Geometry is the committed shape plus an optional in-flight preview.
type Geometry struct {
	Committed Shape
	Preview   *Shape
}

// NewGeometry returns a geometry committed to p with no preview.
func NewGeometry(p geometry.Path) Geometry {
	return Geometry{Committed: NewShape(p)}
}

// Current resolves the preview if one is present, else the committed shape.
func (g Geometry) Current() Shape {
	if g.Preview != nil {
		return *g.Preview
	}
	return g.Committed
}

func (g Geometry) HasPreview() bool {
	return g.Preview != nil
}

// WithPreview sets the preview overlay. A preview equal to the committed
// path is dropped instead of stored.
func (g Geometry) WithPreview(p geometry.Path) Geometry {
	if p.Equal(g.Committed.Path) {
		g.Preview = nil
		return g
	}
	s := NewShape(p)
	g.Preview = &s
	return g
}

// WithCommit replaces the committed shape and discards the preview.
func (g Geometry) WithCommit(p geometry.Path) Geometry {
	return Geometry{Committed: NewShape(p)}
}

func (g Geometry) WithoutPreview() Geometry {
	g.Preview = nil
	return g
}

// Element is one placed table.
type Element struct {
	ID       string
	Label    string
	Pax      int
	Geometry Geometry
}

// DefaultLabel is the label given to freshly created elements.
func DefaultLabel(id string) string {
	return "Table " + id
}

// BBox returns the bounds of the current (preview-resolved) geometry.
func (e Element) BBox() geometry.Rect {
	return e.Geometry.Current().BBox
}

// Path returns the current (preview-resolved) path.
func (e Element) Path() geometry.Path {
	return e.Geometry.Current().Path
}

type elementJSON struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Pax      paxValue       `json:"pax"`
	Path     geometry.Path  `json:"path"`
	BBox     geometry.Rect  `json:"bbox"`
	NextPath *geometry.Path `json:"nextPath"`
	NextBBox *geometry.Rect `json:"nextBbox"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	out := elementJSON{
		ID:    e.ID,
		Label: e.Label,
		Pax:   paxValue(e.Pax),
		Path:  e.Geometry.Committed.Path,
		BBox:  e.Geometry.Committed.BBox,
	}
	if p := e.Geometry.Preview; p != nil {
		path, bbox := p.Path, p.BBox
		out.NextPath = &path
		out.NextBBox = &bbox
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an element record. Bounding boxes in the input are
// ignored and recomputed from the paths.
func (e *Element) UnmarshalJSON(data []byte) error {
	var in elementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.ID == "" {
		return ErrMissingID
	}
	if in.Path.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrMissingPath, in.ID)
	}

	g := NewGeometry(in.Path)
	if in.NextPath != nil && !in.NextPath.IsEmpty() {
		g = g.WithPreview(*in.NextPath)
	}

	*e = Element{
		ID:       in.ID,
		Label:    in.Label,
		Pax:      int(in.Pax),
		Geometry: g,
	}
	return nil
}

// paxValue accepts a JSON number or a numeric string. The inspector field
// historically stored the raw text the user typed.
type paxValue int

func (p paxValue) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(p))), nil
}

func (p *paxValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*p = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPax, s)
		}
		*p = paxValue(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPax, data)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%w: %s", ErrInvalidPax, data)
	}
	*p = paxValue(int(f))
	return nil
}

// Snapshot is the full element collection in store order. It serializes as
// a JSON object keyed by element id, preserving that order.
type Snapshot []Element

func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, el := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(el.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(el)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", el.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an id-keyed object. A repeated key overwrites the
// earlier record but keeps its position.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	var (
		out   Snapshot
		index = make(map[string]int)
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return ErrNotObject
		}

		var el Element
		if err := dec.Decode(&el); err != nil {
			return fmt.Errorf("element %q: %w", key, err)
		}
		if el.ID != key {
			return fmt.Errorf("%w: key %q, id %q", ErrIDMismatch, key, el.ID)
		}

		if i, seen := index[key]; seen {
			out[i] = el
			continue
		}
		index[key] = len(out)
		out = append(out, el)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = out
	return nil
}

// Encode renders the snapshot pretty-printed with two-space indentation.
func (s Snapshot) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// DecodeSnapshot parses a serialized snapshot. Trailing data or any invalid
// record fails the whole decode.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}
