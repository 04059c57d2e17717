package pipeline

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/dopamind/dopamind/internal/app/analytics"
	"github.com/dopamind/dopamind/internal/app/personalize"
	"github.com/dopamind/dopamind/internal/app/session"
	"github.com/dopamind/dopamind/internal/domain"
)

// ─── Requests ───────────────────────────────────────────────────────────────

// RewardRequest is one reward event to score and record.
type RewardRequest struct {
	UserID         string                `json:"user_id" validate:"required"`
	RewardType     string                `json:"reward_type" validate:"required,rewardcategory"`
	Context        domain.Context        `json:"context" validate:"required"`
	// Accepted on the wire; scoring ignores it.
	SessionHistory []domain.SessionEvent `json:"session_history,omitempty"`
}

// PredictRequest asks for a prediction without recording it.
type PredictRequest struct {
	UserID     string         `json:"user_id" validate:"required"`
	RewardType string         `json:"reward_type" validate:"required,rewardcategory"`
	Context    domain.Context `json:"context" validate:"required"`
}

// SessionRequest carries a finished session for summarizing.
type SessionRequest struct {
	UserID      string        `json:"user_id" validate:"required"`
	SessionData *session.Data `json:"session_data" validate:"required"`
}

// BatchRequest is a list of raw reward items. Items are decoded one by
// one so a malformed item only fails itself.
type BatchRequest struct {
	Rewards []json.RawMessage `json:"rewards" validate:"required"`
}

// ─── Results ────────────────────────────────────────────────────────────────

// RewardResult is the combined observation for one processed reward.
type RewardResult struct {
	EventID  string                     `json:"event_id"`
	Emotion  domain.EmotionObservation  `json:"emotion"`
	Dopamine domain.DopamineObservation `json:"dopamine"`
	Context  domain.Context             `json:"context"`
	UserID   string                     `json:"user_id"`
	Path     personalize.Path           `json:"prediction_path"`
}

// Prediction is the read-only variant of RewardResult.
type Prediction struct {
	Emotion  domain.EmotionObservation  `json:"emotion"`
	Dopamine domain.DopamineObservation `json:"dopamine"`
	UserID   string                     `json:"user_id"`
	Path     personalize.Path           `json:"prediction_path"`
}

// NoDataTrends is reported in place of a TrendReport when the window is empty.
type NoDataTrends struct {
	Error string `json:"error"`
}

// AnalyticsReport pairs the global trend report with the insights.
// Trends holds either an analytics.TrendReport or a NoDataTrends.
type AnalyticsReport struct {
	Trends   any      `json:"trends"`
	Insights []string `json:"insights"`
	UserID   string   `json:"user_id"`
	Days     int      `json:"days"`
}

// HasData reports whether Trends carries a real report.
func (r AnalyticsReport) HasData() bool {
	_, ok := r.Trends.(analytics.TrendReport)
	return ok
}

// SessionSummary is a session report tagged with the user and time.
type SessionSummary struct {
	UserID string `json:"user_id"`
	session.Summary
	Timestamp time.Time `json:"timestamp"`
}

// BatchItem is the outcome of one batch entry: either Result or
// Err with the original input echoed back.
type BatchItem struct {
	Result *RewardResult
	Err    string
	Input  json.RawMessage
}

// OK reports whether the item was processed.
func (b BatchItem) OK() bool { return b.Result != nil }

// MarshalJSON writes the result on success, or {"error", "reward_data"}.
func (b BatchItem) MarshalJSON() ([]byte, error) {
	if b.Result != nil {
		return json.Marshal(b.Result)
	}
	return json.Marshal(struct {
		Error      string          `json:"error"`
		RewardData json.RawMessage `json:"reward_data"`
	}{b.Err, b.Input})
}

// BatchReport holds one BatchItem per input, in input order.
type BatchReport struct {
	Results        []BatchItem `json:"results"`
	TotalProcessed int         `json:"total_processed"`
	Timestamp      time.Time   `json:"timestamp"`
}

// Failed counts the items that errored.
func (r BatchReport) Failed() int {
	n := 0
	for _, it := range r.Results {
		if !it.OK() {
			n++
		}
	}
	return n
}
