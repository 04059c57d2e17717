// Package analytics keeps the process-wide emotion log and derives
// windowed trend reports and qualitative insights from it.
//
// The log is global: every user's observations land in the same slice,
// and trends and insights are computed across all of them.
package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/dopamind/dopamind/internal/domain"
)

// Insight messages, in the order they are evaluated.
const (
	InsightHighIntensity = "You're experiencing high emotional intensity - great for engagement!"
	InsightCalm          = "Your emotional responses are quite calm - consider trying different reward types"
	InsightVariety       = "Try exploring different types of interactions for more emotional variety"
	InsightConfident     = "The AI is very confident in predicting your emotional responses"
	InsightNeedMoreData  = "More data would help improve emotion prediction accuracy"
	InsightNoData        = "No data available for insights"
)

const dateLayout = "2006-01-02"

// DailyPattern aggregates one calendar date.
type DailyPattern struct {
	Intensity  float64 `json:"intensity"`
	Confidence float64 `json:"confidence"`
	Count      int     `json:"count"`
}

// TrendReport summarizes the observations inside a time window.
type TrendReport struct {
	EmotionDistribution map[domain.EmotionLabel]int `json:"emotion_distribution"`
	AverageIntensity    float64                     `json:"average_intensity"`
	AverageConfidence   float64                     `json:"average_confidence"`
	DailyPatterns       map[string]DailyPattern     `json:"daily_patterns"`
	TotalEntries        int                         `json:"total_entries"`
}

// Aggregator is the append-only analytics log.
type Aggregator struct {
	now func() time.Time

	mu  sync.RWMutex
	log []domain.AnalyticsRecord
}

// NewAggregator creates an empty log. A nil clock uses time.Now.
func NewAggregator(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

// Record appends one observation and returns the stored record.
func (a *Aggregator) Record(id string, obs domain.EmotionObservation, cat domain.RewardCategory) domain.AnalyticsRecord {
	rec := domain.AnalyticsRecord{
		ID:             id,
		Emotion:        obs.Emotion,
		Intensity:      obs.Intensity,
		Confidence:     obs.Confidence,
		RewardCategory: cat,
		Timestamp:      obs.Timestamp,
	}
	a.mu.Lock()
	a.log = append(a.log, rec)
	a.mu.Unlock()
	return rec
}

// Restore appends journaled records, oldest first.
func (a *Aggregator) Restore(recs []domain.AnalyticsRecord) {
	a.mu.Lock()
	a.log = append(a.log, recs...)
	a.mu.Unlock()
}

// Len returns the number of records in the log.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.log)
}

// Trends reports on records no older than days. Returns domain.ErrNoData
// when the window is empty.
func (a *Aggregator) Trends(days int) (TrendReport, error) {
	now := a.now()
	cutoff := now.AddDate(0, 0, -days)

	a.mu.RLock()
	var recent []domain.AnalyticsRecord
	for _, r := range a.log {
		if !r.Timestamp.Before(cutoff) {
			recent = append(recent, r)
		}
	}
	a.mu.RUnlock()

	if len(recent) == 0 {
		return TrendReport{}, domain.ErrNoData
	}

	report := TrendReport{
		EmotionDistribution: make(map[domain.EmotionLabel]int),
		DailyPatterns:       make(map[string]DailyPattern),
		TotalEntries:        len(recent),
	}

	type daySum struct {
		intensity, confidence float64
		n                     int
	}
	perDay := make(map[string]*daySum)

	var sumIntensity, sumConfidence float64
	for _, r := range recent {
		report.EmotionDistribution[r.Emotion]++
		sumIntensity += r.Intensity
		sumConfidence += r.Confidence

		date := r.Timestamp.In(now.Location()).Format(dateLayout)
		d, ok := perDay[date]
		if !ok {
			d = &daySum{}
			perDay[date] = d
		}
		d.intensity += r.Intensity
		d.confidence += r.Confidence
		d.n++
	}

	n := float64(len(recent))
	report.AverageIntensity = sumIntensity / n
	report.AverageConfidence = sumConfidence / n
	for date, d := range perDay {
		report.DailyPatterns[date] = DailyPattern{
			Intensity:  d.intensity / float64(d.n),
			Confidence: d.confidence / float64(d.n),
			Count:      d.n,
		}
	}
	return report, nil
}

// Insights derives qualitative messages from the whole log.
func (a *Aggregator) Insights() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.log) == 0 {
		return []string{InsightNoData}
	}

	var sumIntensity, sumConfidence float64
	labels := make(map[domain.EmotionLabel]struct{})
	for _, r := range a.log {
		sumIntensity += r.Intensity
		sumConfidence += r.Confidence
		labels[r.Emotion] = struct{}{}
	}
	n := float64(len(a.log))

	insights := []string{}
	switch avg := sumIntensity / n; {
	case avg > 0.7:
		insights = append(insights, InsightHighIntensity)
	case avg < 0.4:
		insights = append(insights, InsightCalm)
	}
	if len(labels) < 3 {
		insights = append(insights, InsightVariety)
	}
	switch avg := sumConfidence / n; {
	case avg > 0.8:
		insights = append(insights, InsightConfident)
	case avg < 0.5:
		insights = append(insights, InsightNeedMoreData)
	}
	return insights
}

// Dates returns the report's dates in ascending order.
func (r TrendReport) Dates() []string {
	out := make([]string, 0, len(r.DailyPatterns))
	for d := range r.DailyPatterns {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
