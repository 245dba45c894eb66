package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type tokenResponse struct {
	PlanID string `json:"planId"`
	Token  string `json:"token"`
}

// Refresh exchanges a valid plan token for a fresh one. It must run behind
// PlanMiddleware.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	planID := PlanIDFromContext(r.Context())
	if planID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}

	token, err := h.service.IssueToken(planID)
	if err != nil {
		slog.Error("refresh token failed", "plan", planID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{PlanID: planID, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
