package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/dopamind/dopamind/internal/app/pipeline"
	"github.com/dopamind/dopamind/internal/domain"
	"github.com/dopamind/dopamind/internal/health"
	"github.com/dopamind/dopamind/internal/logging"
	"github.com/dopamind/dopamind/internal/validation"
)

// ─── Health & Version ───────────────────────────────────────────────────────

type healthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Checks    []health.Status `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Checks:    []health.Status{},
	}
	code := http.StatusOK
	if s.checker != nil {
		resp.Checks = s.checker.Statuses()
		if !s.checker.IsHealthy() {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// ─── Rewards ────────────────────────────────────────────────────────────────

func (s *Server) handleProcessReward(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RewardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.engine.ProcessReward(r.Context(), req)
	if err != nil {
		writeServiceError(w, "process reward", err)
		return
	}
	logging.Info().
		Str("user_id", res.UserID).
		Str("reward_type", req.RewardType).
		Str("event_id", res.EventID).
		Msg("processed reward")
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePredictEmotion(w http.ResponseWriter, r *http.Request) {
	var req pipeline.PredictRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.engine.PredictEmotion(r.Context(), req)
	if err != nil {
		writeServiceError(w, "predict emotion", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleBatchProcess(w http.ResponseWriter, r *http.Request) {
	var req pipeline.BatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeServiceError(w, "batch process", err)
		return
	}

	report := s.engine.BatchProcess(r.Context(), req.Rewards)
	logging.Info().
		Int("total", report.TotalProcessed).
		Int("failed", report.Failed()).
		Msg("processed batch")
	writeJSON(w, http.StatusOK, report)
}

// ─── Analytics ──────────────────────────────────────────────────────────────

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	// Missing, unparseable, zero and negative values all use the default
	// window; Analytics treats days <= 0 that way on purpose.
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil {
		days = 0
	}

	writeJSON(w, http.StatusOK, s.engine.Analytics(userID, days))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"insights":  s.engine.Insights(),
		"timestamp": s.engine.Now(),
	})
}

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	var req pipeline.SessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	summary, err := s.engine.SummarizeSession(req)
	if err != nil {
		writeServiceError(w, "session summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// decodeBody reads a JSON body into v. On failure it writes a 400 and
// returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrMalformedBody, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeServiceError maps pipeline errors onto status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logging.Error().Err(err).Str("op", op).Msg("request failed")
	writeInternal(w, err)
}
