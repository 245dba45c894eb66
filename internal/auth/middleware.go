package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const PlanIDKey contextKey = "planID"

// PlanMiddleware admits requests carrying a token for the plan named by the
// {planId} route variable. The token is read from the Authorization header,
// or from the token query parameter for websocket upgrades where browsers
// cannot set headers.
func (s *Service) PlanMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			return
		}

		planID, err := s.ValidateToken(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		if want := mux.Vars(r)["planId"]; want != "" && want != planID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "token is not valid for this plan"})
			return
		}

		ctx := context.WithValue(r.Context(), PlanIDKey, planID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		t := r.URL.Query().Get("token")
		return t, t != ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func PlanIDFromContext(ctx context.Context) string {
	planID, _ := ctx.Value(PlanIDKey).(string)
	return planID
}
