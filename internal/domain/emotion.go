package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ─── Emotion Labels ─────────────────────────────────────────────────────────

// EmotionLabel names a simulated affective state.
type EmotionLabel string

const (
	EmotionHappy      EmotionLabel = "happy"
	EmotionExcited    EmotionLabel = "excited"
	EmotionCalm       EmotionLabel = "calm"
	EmotionFocused    EmotionLabel = "focused"
	EmotionAnxious    EmotionLabel = "anxious"
	EmotionFrustrated EmotionLabel = "frustrated"
	EmotionContent    EmotionLabel = "content"
	EmotionEnergetic  EmotionLabel = "energetic"
	EmotionTired      EmotionLabel = "tired"
	EmotionSad        EmotionLabel = "sad"
)

var emotionLabels = []EmotionLabel{
	EmotionHappy, EmotionExcited, EmotionCalm, EmotionFocused, EmotionAnxious,
	EmotionFrustrated, EmotionContent, EmotionEnergetic, EmotionTired, EmotionSad,
}

// ParseEmotionLabel validates s against the closed set of labels.
func ParseEmotionLabel(s string) (EmotionLabel, error) {
	for _, l := range emotionLabels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidEmotionLabel, s)
}

// ─── Observations ───────────────────────────────────────────────────────────

// EmotionObservation is the simulated emotional response to one reward.
type EmotionObservation struct {
	Emotion    EmotionLabel `json:"type"`
	Intensity  float64      `json:"intensity"`
	Confidence float64      `json:"confidence"`
	Timestamp  time.Time    `json:"timestamp"`
	Context    Context      `json:"-"`
}

// DopamineObservation describes the simulated dopamine response curve.
type DopamineObservation struct {
	Baseline        float64 `json:"baseline"`
	Peak            float64 `json:"peak"`
	Duration        float64 `json:"duration"`
	DecayRate       float64 `json:"decay_rate"`
	EmotionalImpact float64 `json:"emotional_impact"`
}

// HistoryEntry is one stored observation in a user profile.
type HistoryEntry struct {
	Intensity  float64   `json:"intensity"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserHistory is every stored entry grouped by user, then by history key.
type UserHistory map[string]map[string][]HistoryEntry

// AnalyticsRecord is one row of the process-wide analytics log.
type AnalyticsRecord struct {
	ID             string         `json:"id,omitempty"`
	Emotion        EmotionLabel   `json:"emotion"`
	Intensity      float64        `json:"intensity"`
	Confidence     float64        `json:"confidence"`
	RewardCategory RewardCategory `json:"reward_type"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ─── Context ────────────────────────────────────────────────────────────────

// Context is the free-form signal map sent with a reward.
type Context map[string]any

// Context keys understood by the generators.
const (
	ContextFatigue = "fatigue_level"
	ContextStress  = "stress_level"
	ContextMood    = "mood"

	MoodPositive = "positive"
	MoodNeutral  = "neutral"
)

// FatigueLevel returns the numeric fatigue signal, 0 when absent.
func (c Context) FatigueLevel() float64 { return c.number(ContextFatigue) }

// StressLevel returns the numeric stress signal, 0 when absent.
func (c Context) StressLevel() float64 { return c.number(ContextStress) }

// Mood returns the mood string, "neutral" when absent.
func (c Context) Mood() string {
	if s, ok := c[ContextMood].(string); ok {
		return s
	}
	return MoodNeutral
}

// Fatigued, Stressed and Positive are the thresholds the generators apply.
func (c Context) Fatigued() bool { return c.FatigueLevel() > 0.7 }
func (c Context) Stressed() bool { return c.StressLevel() > 0.6 }
func (c Context) Positive() bool { return c.Mood() == MoodPositive }

func (c Context) number(key string) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case interface{ Float64() (float64, error) }:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}
