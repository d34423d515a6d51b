package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bayneri/burnrate/internal/burnrate"
	"github.com/bayneri/burnrate/internal/sweep"
	"go.uber.org/zap"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Curve recomputes the sweep on every request. base and samples may be
// overridden per request within the server's bounds.
func (s *Server) Curve(w http.ResponseWriter, r *http.Request) {
	opts := s.sweep
	q := r.URL.Query()
	if v := q.Get("base"); v != "" {
		base, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "base must be a number")
			return
		}
		if !(base >= MinBase && base <= MaxBase) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("base must be between %v and %v", MinBase, MaxBase))
			return
		}
		opts.Base = base
	}
	if v := q.Get("samples"); v != "" {
		samples, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "samples must be an integer")
			return
		}
		if samples > s.maxSamples {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("samples must be at most %d", s.maxSamples))
			return
		}
		opts.Samples = samples
	}

	curve, err := sweep.Run(s.model, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if detected, ok := curve.Lookup(sweep.DetectedSeries); ok {
		s.metrics.setCurvePoints(len(detected.Points))
	}
	writeJSON(w, http.StatusOK, curve)
}

func (s *Server) Probe(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("errorRate")
	if raw == "" {
		s.metrics.probeRejectedInc()
		writeError(w, http.StatusBadRequest, "errorRate is required")
		return
	}
	errorRate, err := burnrate.ParseErrorRate(raw)
	if err != nil {
		s.metrics.probeRejectedInc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := sweep.Probe(s.model, errorRate)
	if err != nil {
		s.log.Error("probe failed", zap.Float64("errorRate", errorRate), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "probe failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) PlanHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.plan)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
