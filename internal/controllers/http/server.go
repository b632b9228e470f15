package httpctrl

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/home-easy/easybridge/internal/climate"
	"github.com/home-easy/easybridge/internal/ports"
)

type Server struct {
	svc ports.Climate
	srv *http.Server
}

// New returns a runnable server.
func New(svc ports.Climate, addr string) *Server {
	mux := http.NewServeMux()
	s := &Server{svc: svc}

	// Read
	mux.HandleFunc("GET /v1", s.handleGet)

	// Write: one endpoint per command
	mux.HandleFunc("POST /v1/hvac_mode", s.handlePostHVACMode)
	mux.HandleFunc("POST /v1/target_temperature", s.handlePostTargetTemperature)
	mux.HandleFunc("POST /v1/fan_mode", s.handlePostFanMode)
	mux.HandleFunc("POST /v1/swing_mode", s.handlePostSwingMode)

	// Explicit refresh, useful when the entity is in poll mode.
	mux.HandleFunc("POST /v1/update", s.handlePostUpdate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ---- DTOs ----

type entityDTO struct {
	UniqueID              string   `json:"unique_id"`
	Name                  string   `json:"name"`
	HVACMode              string   `json:"hvac_mode"`
	HVACModes             []string `json:"hvac_modes"`
	CurrentTemperature    float64  `json:"current_temperature"`
	TargetTemperature     float64  `json:"target_temperature"`
	TargetTemperatureStep float64  `json:"target_temperature_step"`
	MinTemp               float64  `json:"min_temp"`
	MaxTemp               float64  `json:"max_temp"`
	TemperatureUnit       string   `json:"temperature_unit"`
	FanMode               string   `json:"fan_mode"`
	FanModes              []string `json:"fan_modes"`
	SwingMode             string   `json:"swing_mode"`
	SwingModes            []string `json:"swing_modes"`
}

func toDTO(svc ports.Climate) entityDTO {
	return entityDTO{
		UniqueID:              svc.UniqueID(),
		Name:                  svc.Name(),
		HVACMode:              svc.HVACMode(),
		HVACModes:             climate.HVACModes(),
		CurrentTemperature:    svc.CurrentTemperature(),
		TargetTemperature:     svc.TargetTemperature(),
		TargetTemperatureStep: climate.TargetTemperatureStep,
		MinTemp:               climate.MinTemp,
		MaxTemp:               climate.MaxTemp,
		TemperatureUnit:       svc.TemperatureUnit(),
		FanMode:               svc.FanMode(),
		FanModes:              climate.FanModes(),
		SwingMode:             svc.SwingMode(),
		SwingModes:            climate.SwingModes(),
	}
}

// ---- Handlers ----

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.respondEntity(w)
}

func (s *Server) handlePostHVACMode(w http.ResponseWriter, r *http.Request) {
	// body: {"value": "cool"}
	postValue(s, w, r, func(v string) error {
		return s.svc.SetHVACMode(v)
	})
}

func (s *Server) handlePostTargetTemperature(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v float64) error {
		return s.svc.SetTemperature(&v)
	})
}

func (s *Server) handlePostFanMode(w http.ResponseWriter, r *http.Request) {
	// body: {"value": "Mid-low"}
	postValue(s, w, r, func(v string) error {
		return s.svc.SetFanMode(v)
	})
}

func (s *Server) handlePostSwingMode(w http.ResponseWriter, r *http.Request) {
	postValue(s, w, r, func(v string) error {
		return s.svc.SetSwingMode(v)
	})
}

func (s *Server) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Update(r.Context()); err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondEntity(w)
}

// ---- generic helpers ----

func (s *Server) respondEntity(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, toDTO(s.svc))
}

func postValue[T any](s *Server, w http.ResponseWriter, r *http.Request, apply func(T) error) {
	dec := json.NewDecoder(r.Body)
	var req struct {
		Value *T `json:"value"`
	}
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Value == nil {
		writeErr(w, http.StatusBadRequest, "missing field 'value'")
		return
	}

	if err := apply(*req.Value); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondEntity(w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
