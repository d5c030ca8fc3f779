// Package consultest runs an in-process fake of the Consul HTTP API subset
// used by the registry and store backends: KV get and CAS put, and service
// health listing.
package consultest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/consul/api"
)

type kvEntry struct {
	value       []byte
	modifyIndex uint64
}

// Server is a fake Consul agent.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	index    uint64
	kv       map[string]kvEntry
	services map[string][]*api.ServiceEntry
	failKV   bool
}

// NewServer starts a fake agent and closes it when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		index:    1,
		kv:       make(map[string]kvEntry),
		services: make(map[string][]*api.ServiceEntry),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// Client returns a Consul client pointed at the fake agent.
func (s *Server) Client(t *testing.T) *api.Client {
	t.Helper()
	cfg := api.DefaultConfig()
	cfg.Address = strings.TrimPrefix(s.srv.URL, "http://")
	cfg.Scheme = "http"
	client, err := api.NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to create consul client: %v", err)
	}
	return client
}

// SetService replaces the health entries returned for a service.
func (s *Server) SetService(name string, entries ...*api.ServiceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[name] = entries
}

// PutKV stores a value unconditionally, bumping its modify index.
func (s *Server) PutKV(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index++
	s.kv[key] = kvEntry{value: value, modifyIndex: s.index}
}

// KV returns the raw value stored under key.
func (s *Server) KV(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.kv[key]
	return e.value, ok
}

// FailKV makes every KV request answer 500.
func (s *Server) FailKV(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failKV = fail
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("X-Consul-Index", strconv.FormatUint(s.index, 10))
	w.Header().Set("X-Consul-LastContact", "0")
	w.Header().Set("X-Consul-KnownLeader", "true")

	switch {
	case strings.HasPrefix(r.URL.Path, "/v1/kv/"):
		if s.failKV {
			http.Error(w, "kv unavailable", http.StatusInternalServerError)
			return
		}
		s.handleKV(w, r, strings.TrimPrefix(r.URL.Path, "/v1/kv/"))
	case strings.HasPrefix(r.URL.Path, "/v1/health/service/"):
		s.handleHealth(w, r, strings.TrimPrefix(r.URL.Path, "/v1/health/service/"))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleKV(w http.ResponseWriter, r *http.Request, key string) {
	switch r.Method {
	case http.MethodGet:
		e, ok := s.kv[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, []*api.KVPair{{
			Key:         key,
			Value:       e.value,
			CreateIndex: e.modifyIndex,
			ModifyIndex: e.modifyIndex,
		}})
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if cas := r.URL.Query().Get("cas"); cas != "" {
			want, err := strconv.ParseUint(cas, 10, 64)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			e, exists := s.kv[key]
			if (want == 0 && exists) || (want != 0 && (!exists || e.modifyIndex != want)) {
				_, _ = io.WriteString(w, "false")
				return
			}
		}
		s.index++
		s.kv[key] = kvEntry{value: body, modifyIndex: s.index}
		_, _ = io.WriteString(w, "true")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, name string) {
	tag := r.URL.Query().Get("tag")
	entries := make([]*api.ServiceEntry, 0)
	for _, e := range s.services[name] {
		if tag != "" && !hasTag(e.Service, tag) {
			continue
		}
		entries = append(entries, e)
	}
	writeJSON(w, entries)
}

func hasTag(svc *api.AgentService, tag string) bool {
	if svc == nil {
		return false
	}
	for _, t := range svc.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
