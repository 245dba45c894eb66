package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableplan/tableplan/internal/geometry"
)

const square = "M 0 0 L 100 0 L 100 100 L 0 100 Z"

func element(id string, path string) Element {
	return Element{
		ID:       id,
		Label:    DefaultLabel(id),
		Pax:      2,
		Geometry: NewGeometry(geometry.MustParse(path)),
	}
}

func TestGeometryPreview(t *testing.T) {
	g := NewGeometry(geometry.MustParse(square))
	assert.False(t, g.HasPreview())

	moved := geometry.Translate(g.Committed.Path, 10, 0).Path
	g = g.WithPreview(moved)
	require.True(t, g.HasPreview())
	assert.Equal(t, 10.0, g.Current().BBox.X)
	assert.Equal(t, 0.0, g.Committed.BBox.X)

	// A preview equal to the committed path never lingers.
	g = g.WithPreview(geometry.MustParse(square))
	assert.False(t, g.HasPreview())
	assert.Equal(t, g.Committed, g.Current())

	g = g.WithPreview(moved).WithCommit(moved)
	assert.False(t, g.HasPreview())
	assert.Equal(t, 10.0, g.Committed.BBox.X)
}

func TestElementJSON(t *testing.T) {
	el := element("a", square)
	el.Label = "Window"

	data, err := json.Marshal(el)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "a",
		"label": "Window",
		"pax": 2,
		"path": "M 0 0 L 100 0 L 100 100 L 0 100 Z",
		"bbox": {"x": 0, "y": 0, "width": 100, "height": 100},
		"nextPath": null,
		"nextBbox": null
	}`, string(data))

	el.Geometry = el.Geometry.WithPreview(geometry.MustParse("M 5 5 L 10 10"))
	data, err = json.Marshal(el)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"nextPath":"M 5 5 L 10 10"`)
	assert.Contains(t, string(data), `"nextBbox":{"x":5,"y":5,"width":5,"height":5}`)

	var back Element
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, el, back)
}

func TestElementDecodeRecomputesBounds(t *testing.T) {
	var el Element
	err := json.Unmarshal([]byte(`{
		"id": "a", "label": "x", "pax": 1,
		"path": "M 0 0 L 10 0 L 10 10 Z",
		"bbox": {"x": 99, "y": 99, "width": 1, "height": 1},
		"nextPath": "M 0 0 L 10 0 L 10 10 Z"
	}`), &el)
	require.NoError(t, err)
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}, el.Geometry.Committed.BBox)
	assert.False(t, el.Geometry.HasPreview(), "preview equal to path is dropped")
}

func TestPaxDecoding(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{raw: `4`, want: 4, ok: true},
		{raw: `"6"`, want: 6, ok: true},
		{raw: `" 8 "`, want: 8, ok: true},
		{raw: `""`, want: 0, ok: true},
		{raw: `null`, want: 0, ok: true},
		{raw: `2.5`, ok: false},
		{raw: `"four"`, ok: false},
		{raw: `true`, ok: false},
	}
	for _, c := range cases {
		doc := fmt.Sprintf(`{"id":"a","label":"","pax":%s,"path":%q}`, c.raw, square)
		var el Element
		err := json.Unmarshal([]byte(doc), &el)
		if !c.ok {
			assert.Error(t, err, c.raw)
			continue
		}
		require.NoError(t, err, c.raw)
		assert.Equal(t, c.want, el.Pax, c.raw)
	}
}

func TestSnapshotKeepsOrder(t *testing.T) {
	s := Snapshot{element("z", square), element("a", square), element("m", square)}

	data, err := s.Encode()
	require.NoError(t, err)

	z := bytes.Index(data, []byte(`"z": {`))
	a := bytes.Index(data, []byte(`"a": {`))
	m := bytes.Index(data, []byte(`"m": {`))
	require.True(t, z > 0 && a > 0 && m > 0, string(data))
	assert.Less(t, z, a)
	assert.Less(t, a, m)
	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"z\": {\n    \"id\": \"z\",")), string(data))

	back, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestSnapshotLosslessWithPreview(t *testing.T) {
	el := element("a", square)
	el.Geometry = el.Geometry.WithPreview(geometry.MustParse("M 0 0 L 50 50"))
	s := Snapshot{el, element("b", "M 3 4 Z")}

	data, err := s.Encode()
	require.NoError(t, err)
	back, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	again, err := back.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestSnapshotRepeatedKey(t *testing.T) {
	doc := fmt.Sprintf(`{
		"a": {"id":"a","label":"first","pax":1,"path":%[1]q},
		"b": {"id":"b","label":"b","pax":1,"path":%[1]q},
		"a": {"id":"a","label":"second","pax":1,"path":%[1]q}
	}`, square)

	s, err := DecodeSnapshot([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, "a", s[0].ID)
	assert.Equal(t, "second", s[0].Label)
	assert.Equal(t, "b", s[1].ID)
}

func TestSnapshotDecodeErrors(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`[]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeSnapshot([]byte(`null`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeSnapshot([]byte(`{"a": {"id": "b", "path": "M 0 0"}}`))
	assert.ErrorIs(t, err, ErrIDMismatch)

	_, err = DecodeSnapshot([]byte(`{"a": {"id": "a", "label": "x"}}`))
	assert.ErrorIs(t, err, ErrMissingPath)

	_, err = DecodeSnapshot([]byte(`{"a": {"id": "a", "path": "C 1 2"}}`))
	assert.Error(t, err)

	_, err = DecodeSnapshot([]byte(`{"a": {"id": "a", "path": "M 0 0"}`))
	assert.Error(t, err)

	_, err = DecodeSnapshot([]byte(`{} {}`))
	assert.Error(t, err)

	empty, err := DecodeSnapshot([]byte(` {} `))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSample(t *testing.T) {
	n := 0
	s := Sample(func() string {
		n++
		return fmt.Sprintf("tbl_%d", n)
	})
	require.Len(t, s, 8)

	seen := map[string]bool{}
	for _, el := range s {
		assert.False(t, seen[el.ID])
		seen[el.ID] = true
		assert.False(t, el.Geometry.HasPreview())
		assert.Positive(t, el.BBox().Width)
	}
	assert.Equal(t, "Table tbl_1", s[0].Label)
	assert.Equal(t, "Round 1", s[3].Label)
	assert.InDelta(t, 120, s[3].BBox().Width, 1e-6)
	assert.InDelta(t, 65, s[3].BBox().X, 1e-6)
}
