package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the admin HTTP surface: health, metrics, cache and key
// pool management, and usage reporting.
type Server struct {
	svc    *Service
	server *http.Server
}

// NewServer creates the admin server.
func NewServer(svc *Service, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		svc: svc,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/cache/stats", s.handleCacheStats)
	mux.HandleFunc("/cache/clear", s.handleCacheClear)
	mux.HandleFunc("/cache/cleanup", s.handleCacheCleanup)
	mux.HandleFunc("/keys", s.handleKeys)
	mux.HandleFunc("/keys/reset", s.handleKeysReset)
	mux.HandleFunc("/usage/summary", s.handleUsageSummary)
	mux.HandleFunc("/usage/recent", s.handleUsageRecent)
	mux.HandleFunc("/budget", s.handleBudget)
	mux.HandleFunc("/provider/stats", s.handleProviderStats)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Healthy means calls can go out: at least one enabled key.
	healthy := false
	for _, k := range s.svc.client.Rotator().Snapshot() {
		if !k.Disabled {
			healthy = true
			break
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "critical"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]string{"status": status})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.client.Cache().Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.svc.client.Cache().Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	removed := s.svc.client.Cache().CleanupExpired()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.client.Rotator().Snapshot())
}

func (s *Server) handleKeysReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.svc.client.Rotator().Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleUsageSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.usage.Summary(r.Context(), r.URL.Query().Get("feature"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleUsageRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := s.svc.usage.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.client.Budget().GetSnapshot())
}

func (s *Server) handleProviderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.upstream.Monitor.GetStats())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
