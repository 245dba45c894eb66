package main

import (
	"net/http"

	"github.com/gorilla/mux"

	mw "github.com/tableplan/tableplan/internal/middleware"
	"github.com/tableplan/tableplan/internal/plan"
)

// newRouter assembles the HTTP surface. The middleware chain wraps the
// router itself so preflight requests are answered before route matching.
func newRouter(planHandler *plan.Handler, origins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	planHandler.Register(r)

	return mw.Recovery(mw.Logger(mw.CORS(origins)(r)))
}
