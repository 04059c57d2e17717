// Package session summarizes a caller-supplied batch of session rewards.
// It is stateless: nothing is recorded anywhere.
package session

import (
	"fmt"

	"github.com/dopamind/dopamind/internal/domain"
)

// Insight and recommendation messages.
const (
	InsightHighEngagement = "High engagement session - great dopamine response!"
	InsightCalm           = "Calm session - good for mindfulness practice"
	InsightVeryActive     = "Very active session - lots of interactions"
	InsightMinimal        = "Minimal session - consider longer engagement"
	InsightLongSession    = "Long session - good for building habits"
	InsightIncreasing     = "Dopamine levels increased during session - great momentum!"
	InsightDecreasing     = "Dopamine levels decreased - consider taking breaks"

	RecommendInteractMore  = "Try interacting more to get better insights"
	RecommendLonger        = "Try longer sessions for better habit formation"
	RecommendShorter       = "Consider shorter, more focused sessions"
	RecommendHighIntensity = "High intensity session - great for building excitement!"
	RecommendLowIntensity  = "Low intensity session - good for calm, mindful practice"
)

// Dopamine trend labels. The metric is either increasing or stable; a
// falling session shows up only in the insights.
const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
)

// Data is the session payload: the rewards seen and the session length.
type Data struct {
	Rewards  []domain.SessionEvent `json:"rewards"`
	Duration float64               `json:"duration"`
}

// Metrics are the numeric session statistics.
type Metrics struct {
	TotalRewards     int     `json:"total_rewards"`
	AverageIntensity float64 `json:"average_intensity"`
	SessionDuration  float64 `json:"session_duration"`
	DopamineTrend    string  `json:"dopamine_trend"`
}

// Summary is the full session report.
type Summary struct {
	Metrics         Metrics  `json:"session_metrics"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// Summarize computes metrics, insights and recommendations.
func Summarize(d Data) Summary {
	total := len(d.Rewards)
	avg := meanIntensity(d.Rewards)
	first, second, split := halves(d.Rewards)

	insights := []string{}
	switch {
	case avg > 0.7:
		insights = append(insights, InsightHighEngagement)
	case avg < 0.4:
		insights = append(insights, InsightCalm)
	}
	switch {
	case total > 10:
		insights = append(insights, InsightVeryActive)
	case total < 3:
		insights = append(insights, InsightMinimal)
	}
	if d.Duration > 300 {
		insights = append(insights, InsightLongSession)
	}
	if split {
		switch {
		case second > first*1.1:
			insights = append(insights, InsightIncreasing)
		case second < first*0.9:
			insights = append(insights, InsightDecreasing)
		}
	}

	trend := TrendStable
	if split && second > first {
		trend = TrendIncreasing
	}

	return Summary{
		Metrics: Metrics{
			TotalRewards:     total,
			AverageIntensity: avg,
			SessionDuration:  d.Duration,
			DopamineTrend:    trend,
		},
		Insights:        insights,
		Recommendations: Recommend(d),
	}
}

// Recommend suggests what to try next session.
func Recommend(d Data) []string {
	if len(d.Rewards) == 0 {
		return []string{RecommendInteractMore}
	}

	recs := []string{}
	most, least, mostCount := usage(d.Rewards)
	if float64(mostCount) > float64(len(d.Rewards))*0.6 {
		recs = append(recs, fmt.Sprintf("You used %s rewards frequently - try exploring %s for variety", most, least))
	}

	switch {
	case d.Duration < 60:
		recs = append(recs, RecommendLonger)
	case d.Duration > 1800:
		recs = append(recs, RecommendShorter)
	}

	switch avg := meanIntensity(d.Rewards); {
	case avg > 0.8:
		recs = append(recs, RecommendHighIntensity)
	case avg < 0.3:
		recs = append(recs, RecommendLowIntensity)
	}
	return recs
}

// usage finds the most and least used reward types among those seen.
// Ties go to the type seen first.
func usage(rewards []domain.SessionEvent) (most, least string, mostCount int) {
	counts := make(map[string]int)
	var order []string
	for _, r := range rewards {
		if _, ok := counts[r.Type]; !ok {
			order = append(order, r.Type)
		}
		counts[r.Type]++
	}

	most, least = order[0], order[0]
	for _, t := range order[1:] {
		if counts[t] > counts[most] {
			most = t
		}
		if counts[t] < counts[least] {
			least = t
		}
	}
	return most, least, counts[most]
}

// meanIntensity divides by max(len, 1).
func meanIntensity(rewards []domain.SessionEvent) float64 {
	var sum float64
	for _, r := range rewards {
		sum += r.Intensity
	}
	return sum / float64(max(len(rewards), 1))
}

// halves returns the mean intensity of each half, splitting at len/2.
// split is false when there are fewer than two rewards.
func halves(rewards []domain.SessionEvent) (first, second float64, split bool) {
	if len(rewards) < 2 {
		return 0, 0, false
	}
	mid := len(rewards) / 2
	return meanIntensity(rewards[:mid]), meanIntensity(rewards[mid:]), true
}
