// Package pipeline composes the generators, the personalization store,
// the analytics log and the session summarizer into the operations the
// HTTP layer and the CLI call.
//
// One Engine is built at startup and shared by every request. All of its
// state lives in the store and the aggregator, which do their own locking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dopamind/dopamind/internal/app/analytics"
	"github.com/dopamind/dopamind/internal/app/emotion"
	"github.com/dopamind/dopamind/internal/app/personalize"
	"github.com/dopamind/dopamind/internal/app/session"
	"github.com/dopamind/dopamind/internal/domain"
	"github.com/dopamind/dopamind/internal/infra/metrics"
	"github.com/dopamind/dopamind/internal/logging"
	"github.com/dopamind/dopamind/internal/validation"
)

// DefaultWindowDays is the analytics window used when none is given.
const DefaultWindowDays = 7

// Journal persists recorded observations. Implemented by sqlite.DB.
type Journal interface {
	AppendHistory(userID, key string, e domain.HistoryEntry, limit int) error
	AppendEmotion(rec domain.AnalyticsRecord) error
	LoadHistory() (domain.UserHistory, error)
	LoadEmotions() ([]domain.AnalyticsRecord, error)
}

// Engine runs the scoring pipeline.
type Engine struct {
	gen   *emotion.Generator
	store *personalize.Store
	agg   *analytics.Aggregator

	journal    Journal
	windowDays int
	newEventID func() string
	log        zerolog.Logger
}

// NewEngine wires a store and an aggregator around gen. Both share the
// generator's clock.
func NewEngine(gen *emotion.Generator, historyCap int) *Engine {
	return &Engine{
		gen:        gen,
		store:      personalize.NewStore(gen, historyCap),
		agg:        analytics.NewAggregator(gen.Now),
		windowDays: DefaultWindowDays,
		newEventID: uuid.NewString,
		log:        logging.With().Str("component", "pipeline").Logger(),
	}
}

// SetJournal enables durable recording. Call Replay afterwards to load
// what the journal already holds.
func (e *Engine) SetJournal(j Journal) { e.journal = j }

// SetDefaultWindow sets the analytics window used for days <= 0.
func (e *Engine) SetDefaultWindow(days int) {
	if days > 0 {
		e.windowDays = days
	}
}

// Store exposes the personalization store.
func (e *Engine) Store() *personalize.Store { return e.store }

// Aggregator exposes the analytics log.
func (e *Engine) Aggregator() *analytics.Aggregator { return e.agg }

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.gen.Now() }

// ─── Process ────────────────────────────────────────────────────────────────

// ProcessReward validates the request, predicts, then records the
// observation in the user's profile and the analytics log.
func (e *Engine) ProcessReward(ctx context.Context, req RewardRequest) (RewardResult, error) {
	if err := ctx.Err(); err != nil {
		return RewardResult{}, err
	}
	if err := validation.ValidateStruct(&req); err != nil {
		metrics.RewardErrors.WithLabelValues(errorReason(err)).Inc()
		return RewardResult{}, err
	}
	cat, err := domain.ParseRewardCategory(req.RewardType)
	if err != nil {
		metrics.RewardErrors.WithLabelValues("invalid_reward_type").Inc()
		return RewardResult{}, err
	}

	emo, dop, path := e.store.Predict(req.UserID, cat, req.Context)
	eventID := e.newEventID()

	key, entry := e.store.Record(req.UserID, emo, cat)
	rec := e.agg.Record(eventID, emo, cat)
	e.persist(req.UserID, key, entry, rec)

	metrics.RewardsProcessed.WithLabelValues(string(cat), string(path)).Inc()
	metrics.EmotionIntensity.WithLabelValues(string(cat)).Observe(emo.Intensity)
	metrics.AnalyticsLogEntries.Set(float64(e.agg.Len()))
	metrics.UsersTracked.Set(float64(e.store.Users()))

	e.log.Debug().
		Str("user_id", req.UserID).
		Str("reward_type", string(cat)).
		Str("path", string(path)).
		Float64("intensity", emo.Intensity).
		Msg("reward processed")

	return RewardResult{
		EventID:  eventID,
		Emotion:  emo,
		Dopamine: dop,
		Context:  req.Context,
		UserID:   req.UserID,
		Path:     path,
	}, nil
}

// persist appends to the journal when one is set. Failures are logged
// and counted; the in-memory state stays authoritative.
func (e *Engine) persist(userID, key string, entry domain.HistoryEntry, rec domain.AnalyticsRecord) {
	if e.journal == nil {
		return
	}
	if err := e.journal.AppendHistory(userID, key, entry, e.store.Cap()); err != nil {
		metrics.JournalWriteFailures.WithLabelValues("reward_history").Inc()
		e.log.Warn().Err(err).Str("user_id", userID).Msg("journal history write failed")
	}
	if err := e.journal.AppendEmotion(rec); err != nil {
		metrics.JournalWriteFailures.WithLabelValues("emotion_log").Inc()
		e.log.Warn().Err(err).Str("event_id", rec.ID).Msg("journal emotion write failed")
	}
}

// ─── Read Operations ────────────────────────────────────────────────────────

// PredictEmotion returns what ProcessReward would produce, without
// recording anything.
func (e *Engine) PredictEmotion(ctx context.Context, req PredictRequest) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return Prediction{}, err
	}
	cat, err := domain.ParseRewardCategory(req.RewardType)
	if err != nil {
		return Prediction{}, err
	}

	emo, dop, path := e.store.Predict(req.UserID, cat, req.Context)
	metrics.Predictions.WithLabelValues(string(path)).Inc()

	return Prediction{Emotion: emo, Dopamine: dop, UserID: req.UserID, Path: path}, nil
}

// Analytics reports the trends over the last days (the default window
// when days <= 0) together with the insights. Both are computed over the
// whole log; userID is only echoed back.
func (e *Engine) Analytics(userID string, days int) AnalyticsReport {
	if days <= 0 {
		days = e.windowDays
	}
	report := AnalyticsReport{
		Insights: e.agg.Insights(),
		UserID:   userID,
		Days:     days,
	}

	trends, err := e.agg.Trends(days)
	if errors.Is(err, domain.ErrNoData) {
		report.Trends = NoDataTrends{Error: "No data available"}
	} else {
		report.Trends = trends
	}
	return report
}

// Insights returns the global insight strings.
func (e *Engine) Insights() []string {
	return e.agg.Insights()
}

// SummarizeSession validates and summarizes a finished session.
func (e *Engine) SummarizeSession(req SessionRequest) (SessionSummary, error) {
	if err := validation.ValidateStruct(&req); err != nil {
		return SessionSummary{}, err
	}
	metrics.SessionSummaries.Inc()
	return SessionSummary{
		UserID:    req.UserID,
		Summary:   session.Summarize(*req.SessionData),
		Timestamp: e.gen.Now(),
	}, nil
}

// ─── Batch ──────────────────────────────────────────────────────────────────

// BatchProcess runs every item through ProcessReward independently.
// The report always has one result per input, in input order.
func (e *Engine) BatchProcess(ctx context.Context, items []json.RawMessage) BatchReport {
	results := make([]BatchItem, len(items))
	for i, raw := range items {
		res, err := e.processItem(ctx, raw)
		if err != nil {
			metrics.BatchItems.WithLabelValues("error").Inc()
			e.log.Warn().Err(err).Int("index", i).Msg("batch item failed")
			results[i] = BatchItem{Err: err.Error(), Input: raw}
			continue
		}
		metrics.BatchItems.WithLabelValues("ok").Inc()
		results[i] = BatchItem{Result: &res}
	}

	return BatchReport{
		Results:        results,
		TotalProcessed: len(results),
		Timestamp:      e.gen.Now(),
	}
}

func (e *Engine) processItem(ctx context.Context, raw json.RawMessage) (res RewardResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()

	var req RewardRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return RewardResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedBody, err)
	}
	return e.ProcessReward(ctx, req)
}

// ─── Journal Replay ─────────────────────────────────────────────────────────

// Replay loads the journal into the store and the aggregator. It is a
// no-op without a journal.
func (e *Engine) Replay() error {
	if e.journal == nil {
		return nil
	}

	hist, err := e.journal.LoadHistory()
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	entries := 0
	for userID, keys := range hist {
		for key, list := range keys {
			e.store.Restore(userID, key, list)
			entries += len(list)
		}
	}

	recs, err := e.journal.LoadEmotions()
	if err != nil {
		return fmt.Errorf("load emotions: %w", err)
	}
	e.agg.Restore(recs)

	metrics.AnalyticsLogEntries.Set(float64(e.agg.Len()))
	metrics.UsersTracked.Set(float64(e.store.Users()))

	e.log.Info().
		Int("users", len(hist)).
		Int("history_entries", entries).
		Int("analytics_records", len(recs)).
		Msg("journal replayed")
	return nil
}

// ─── Health ─────────────────────────────────────────────────────────────────

// Ping runs a throwaway simulation and checks the output is in range.
func (e *Engine) Ping() error {
	emo, dop := e.gen.Simulate(domain.RewardLike, nil, nil)
	if emo.Intensity < 0 || emo.Intensity > 1 || dop.Peak < 0.3 || dop.Peak > 1 {
		return fmt.Errorf("simulation out of range: intensity=%.3f peak=%.3f", emo.Intensity, dop.Peak)
	}
	return nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return "missing_field"
	case errors.Is(err, domain.ErrInvalidRewardCategory):
		return "invalid_reward_type"
	}
	return "invalid_input"
}
