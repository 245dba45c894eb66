package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableplan/tableplan/internal/auth"
	"github.com/tableplan/tableplan/internal/engine"
	"github.com/tableplan/tableplan/internal/session"
)

type fixture struct {
	router http.Handler
	hub    *session.Hub
	tokens *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens, err := auth.NewService("test-secret", time.Hour)
	require.NoError(t, err)

	hub := session.NewHub(func() *engine.Engine { return engine.NewEngine(engine.DefaultOptions()) }, 0)
	go hub.Run()
	t.Cleanup(hub.Stop)

	r := mux.NewRouter()
	NewHandler(NewService(hub, tokens, 1<<20), hub, tokens).Register(r)
	return &fixture{router: r, hub: hub, tokens: tokens}
}

func (f *fixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) create(t *testing.T, sample bool) Created {
	t.Helper()
	body := `{"sample":false}`
	if sample {
		body = `{"sample":true}`
	}
	rec := f.do(t, http.MethodPost, "/plans", "", strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c Created
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	require.NotEmpty(t, c.ID)
	require.NotEmpty(t, c.Token)
	return c
}

func snapshotKeys(t *testing.T, data []byte) int {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	return len(m)
}

func TestCreateAndSnapshot(t *testing.T) {
	f := newFixture(t)

	empty := f.create(t, false)
	rec := f.do(t, http.MethodGet, "/plans/"+empty.ID+"/snapshot", empty.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", strings.TrimSpace(rec.Body.String()))

	sample := f.create(t, true)
	rec = f.do(t, http.MethodGet, "/plans/"+sample.ID+"/snapshot", sample.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, snapshotKeys(t, rec.Body.Bytes()))
	assert.Contains(t, rec.Body.String(), "\n  \"", "pretty printed")

	// No body means an empty plan.
	rec = f.do(t, http.MethodPost, "/plans", "", nil, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/plans", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthorization(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, false)
	b := f.create(t, false)

	rec := f.do(t, http.MethodGet, "/plans/"+a.ID+"/snapshot", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/plans/"+a.ID+"/snapshot", b.Token, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ghost, err := f.tokens.IssueToken("plan_ghost")
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/plans/plan_ghost/snapshot", ghost, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/plans/"+a.ID+"/token", a.Token, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPutSnapshot(t *testing.T) {
	f := newFixture(t)
	src := f.create(t, true)
	dst := f.create(t, false)

	rec := f.do(t, http.MethodGet, "/plans/"+src.ID+"/snapshot", src.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := rec.Body.Bytes()

	rec = f.do(t, http.MethodPut, "/plans/"+dst.ID+"/snapshot", dst.Token, bytes.NewReader(snapshot), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"seq":1}`, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/plans/"+dst.ID+"/snapshot", dst.Token, strings.NewReader(`{"a": {"id": "b", "path": "M 0 0"}}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid snapshot")

	rec = f.do(t, http.MethodGet, "/plans/"+dst.ID+"/snapshot", dst.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, snapshotKeys(t, rec.Body.Bytes()), "a rejected snapshot keeps the plan")
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, false)

	rec := f.do(t, http.MethodDelete, "/plans/"+p.ID, p.Token, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/plans/"+p.ID+"/snapshot", p.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodDelete, "/plans/"+p.ID, p.Token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, true)

	rec := f.do(t, http.MethodGet, "/plans/"+p.ID+"/export.svg", p.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".svg")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg "))
	assert.Equal(t, 8, strings.Count(rec.Body.String(), "data-id="))

	rec = f.do(t, http.MethodGet, "/plans/"+p.ID+"/export.png?width=200", p.Token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())

	rec = f.do(t, http.MethodGet, "/plans/"+p.ID+"/export.png?width=wide", p.Token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartSVG(t *testing.T, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="room.svg"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportSVG(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, false)
	path := "/plans/" + p.ID + "/import/svg"

	body, ct := multipartSVG(t, "image/svg+xml", `<svg xmlns="http://www.w3.org/2000/svg"><rect width="80" height="40" data-label="Bar" data-pax="5"/><polygon points="0,0 10,0 5,10"/></svg>`)
	rec := f.do(t, http.MethodPost, path, p.Token, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Len(t, result.IDs, 2)
	assert.Equal(t, int64(1), result.Seq)

	rec = f.do(t, http.MethodGet, "/plans/"+p.ID+"/snapshot", p.Token, nil, "")
	assert.Contains(t, rec.Body.String(), `"label": "Bar"`)
	assert.Contains(t, rec.Body.String(), `"pax": 5`)

	body, ct = multipartSVG(t, "image/svg+xml", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	rec = f.do(t, http.MethodPost, path, p.Token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartSVG(t, "image/png", "not an svg")
	rec = f.do(t, http.MethodPost, path, p.Token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, path, p.Token, strings.NewReader("x"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSocketRoute(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, false)

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/plans/" + p.ID

	_, resp, err := websocket.Dial(ctx, base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.Dial(ctx, base+"?token="+p.Token, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg session.Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, session.TypeWelcome, msg.Type)
	assert.Equal(t, p.ID, msg.PlanID)

	// REST changes reach the connected editor.
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, session.TypeDocSync, msg.Type)

	snap := `{"a": {"id": "a", "label": "A", "pax": 2, "path": "M 0 0 L 10 0 L 10 10 Z"}}`
	rec := f.do(t, http.MethodPut, "/plans/"+p.ID+"/snapshot", p.Token, strings.NewReader(snap), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, session.TypeState, msg.Type)
	assert.Equal(t, int64(1), msg.Seq)
}
