package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
)

// BackendMessage is the body of the backend app's root page.
const BackendMessage = "app is running"

// SnapshotSource exposes the last published snapshot.
type SnapshotSource interface {
	Last() (snapshot.Snapshot, time.Time)
}

// BackendRouter serves the sample backend: "/" answers with a plain text
// banner and "/health" with {"status":"UP"}.
func BackendRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(BackendMessage))
	})
	r.Get("/health", healthHandler)
	return r
}

// StatusRouter serves the prober's status endpoints.
func StatusRouter(source SnapshotSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Get("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap, publishedAt := source.Last()
		if snap == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot published yet"})
			return
		}
		writeJSON(w, http.StatusOK, snapshotResponse{Services: snap, PublishedAt: publishedAt})
	})
	return r
}

type snapshotResponse struct {
	Services    snapshot.Snapshot `json:"services"`
	PublishedAt time.Time         `json:"published_at"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
