package plan

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/tableplan/tableplan/internal/auth"
	"github.com/tableplan/tableplan/internal/session"
)

type Handler struct {
	service *Service
	hub     *session.Hub
	tokens  *auth.Service
	// OriginPatterns are the hosts allowed to open editor websockets.
	OriginPatterns []string
}

func NewHandler(service *Service, hub *session.Hub, tokens *auth.Service) *Handler {
	return &Handler{service: service, hub: hub, tokens: tokens}
}

// Register mounts the plan routes on r. Everything under a plan id needs a
// token for that plan.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/plans", h.Create).Methods("POST")

	api := r.PathPrefix("/plans/{planId}").Subrouter()
	api.Use(h.tokens.PlanMiddleware)
	api.HandleFunc("", h.Delete).Methods("DELETE")
	api.HandleFunc("/snapshot", h.GetSnapshot).Methods("GET")
	api.HandleFunc("/snapshot", h.PutSnapshot).Methods("PUT")
	api.HandleFunc("/export.svg", h.ExportSVG).Methods("GET")
	api.HandleFunc("/export.png", h.ExportPNG).Methods("GET")
	api.HandleFunc("/import/svg", h.ImportSVG).Methods("POST")
	api.HandleFunc("/token", auth.NewHandler(h.tokens).Refresh).Methods("POST")

	ws := r.PathPrefix("/ws/plans/{planId}").Subrouter()
	ws.Use(h.tokens.PlanMiddleware)
	ws.HandleFunc("", h.Socket)
}

type createRequest struct {
	Sample bool `json:"sample"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := h.service.Create(req.Sample)
	if err != nil {
		slog.Error("create plan failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]

	doc, err := h.service.Snapshot(planID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request too large"})
		return
	}

	seq, err := h.service.ReplaceSnapshot(planID, body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"seq": seq})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]

	if err := h.service.Delete(planID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Socket upgrades to the editor websocket. A plan takes one editor at a
// time; a second one gets 409 before the upgrade.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["planId"]
	h.hub.HandleWebSocket(w, r, planID, &websocket.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrInvalidSnapshot), errors.Is(err, ErrInvalidSVG):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
