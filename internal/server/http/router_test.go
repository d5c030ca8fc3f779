package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
)

type fixedSource struct {
	snap snapshot.Snapshot
	at   time.Time
}

func (s fixedSource) Last() (snapshot.Snapshot, time.Time) { return s.snap, s.at }

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestBackendRouter(t *testing.T) {
	h := BackendRouter()

	resp, body := get(t, h, "/")
	if resp.StatusCode != http.StatusOK || body != BackendMessage {
		t.Errorf("unexpected root response %d %q", resp.StatusCode, body)
	}

	resp, body = get(t, h, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expect 200 from /health, got %d", resp.StatusCode)
	}
	var health map[string]string
	if err := json.Unmarshal([]byte(body), &health); err != nil || health["status"] != "UP" {
		t.Errorf("unexpected health body %q", body)
	}

	if resp, _ := get(t, h, "/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expect 404, got %d", resp.StatusCode)
	}
}

func TestStatusRouterSnapshot(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	h := StatusRouter(fixedSource{snap: snapshot.Snapshot{"A": {"10.0.0.1"}, "B": {}}, at: at})

	resp, body := get(t, h, "/snapshot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expect 200, got %d", resp.StatusCode)
	}
	var got snapshotResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Services["A"]) != 1 || got.Services["A"][0] != "10.0.0.1" || !got.PublishedAt.Equal(at) {
		t.Errorf("unexpected snapshot response %+v", got)
	}
}

func TestStatusRouterBeforeFirstPublish(t *testing.T) {
	h := StatusRouter(fixedSource{})

	if resp, _ := get(t, h, "/snapshot"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expect 503 before first publish, got %d", resp.StatusCode)
	}
	if resp, _ := get(t, h, "/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("expect 200 from /health, got %d", resp.StatusCode)
	}
}
