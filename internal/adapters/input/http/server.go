package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"smartlinc-bridge/internal/domain/model"
	"smartlinc-bridge/internal/domain/protocol"
	"smartlinc-bridge/internal/domain/service"
	"smartlinc-bridge/internal/ports"
	"sync"
	"time"

	"github.com/amimof/huego"
	"go.uber.org/zap"
)

type Server struct {
	controller  ports.ControllerPort
	metrics     http.Handler
	metricsPath string
	log         *zap.Logger

	// The gateway buffer is shared state; one operation at a time.
	mu sync.Mutex
}

func NewServer(controller ports.ControllerPort, metricsPath string, metrics http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		controller:  controller,
		metrics:     metrics,
		metricsPath: metricsPath,
		log:         log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /devices/{address}", s.handleGetDevice)
	mux.HandleFunc("PUT /devices/{address}/state", s.handleSetState)
	if s.metrics != nil && s.metricsPath != "" {
		mux.Handle("GET "+s.metricsPath, s.metrics)
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transport_failures": s.controller.FailureCount(),
	})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	deviceType := model.DeviceType(r.URL.Query().Get("type"))

	s.mu.Lock()
	device, err := s.controller.DeviceState(r.Context(), address, deviceType)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, address, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	deviceType := model.DeviceType(r.URL.Query().Get("type"))

	var state huego.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		http.Error(w, "invalid state body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.controller.Apply(r.Context(), address, deviceType, &state)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, address, err)
		return
	}
	writeJSON(w, http.StatusOK, []map[string]interface{}{
		{"success": map[string]interface{}{"/devices/" + address + "/state/on": state.On}},
	})
}

func (s *Server) writeError(w http.ResponseWriter, address string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, protocol.ErrInvalidAddress):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrProtocolMismatch):
		code = http.StatusBadGateway
	case errors.Is(err, service.ErrRetriesExhausted),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		code = http.StatusGatewayTimeout
	}
	s.log.Warn("device request failed", zap.String("address", address), zap.Int("code", code), zap.Error(err))
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
