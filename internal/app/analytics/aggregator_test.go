package analytics

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dopamind/dopamind/internal/domain"
)

var now = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func newTestAggregator() *Aggregator {
	return NewAggregator(func() time.Time { return now })
}

func record(a *Aggregator, e domain.EmotionLabel, intensity, confidence float64, ts time.Time) {
	a.Record("", domain.EmotionObservation{
		Emotion: e, Intensity: intensity, Confidence: confidence, Timestamp: ts,
	}, domain.RewardLike)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTrends_EmptyLogReportsNoData(t *testing.T) {
	a := newTestAggregator()
	_, err := a.Trends(7)
	if !errors.Is(err, domain.ErrNoData) {
		t.Errorf("Trends() err = %v, want ErrNoData", err)
	}
}

func TestTrends_WindowExcludesOldEntries(t *testing.T) {
	a := newTestAggregator()
	record(a, domain.EmotionHappy, 0.9, 0.9, now.AddDate(0, 0, -30))

	if _, err := a.Trends(7); !errors.Is(err, domain.ErrNoData) {
		t.Errorf("Trends(7) err = %v, want ErrNoData", err)
	}
	report, err := a.Trends(31)
	if err != nil {
		t.Fatalf("Trends(31) error: %v", err)
	}
	if report.TotalEntries != 1 {
		t.Errorf("TotalEntries = %d, want 1", report.TotalEntries)
	}
}

func TestTrends_Aggregates(t *testing.T) {
	a := newTestAggregator()
	day1 := now.AddDate(0, 0, -1)
	record(a, domain.EmotionHappy, 0.4, 0.5, day1)
	record(a, domain.EmotionHappy, 0.6, 0.7, day1)
	record(a, domain.EmotionExcited, 0.8, 0.9, now)

	report, err := a.Trends(7)
	if err != nil {
		t.Fatalf("Trends() error: %v", err)
	}
	if report.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", report.TotalEntries)
	}
	wantDist := map[domain.EmotionLabel]int{domain.EmotionHappy: 2, domain.EmotionExcited: 1}
	if !reflect.DeepEqual(report.EmotionDistribution, wantDist) {
		t.Errorf("EmotionDistribution = %v, want %v", report.EmotionDistribution, wantDist)
	}
	if !approx(report.AverageIntensity, 0.6) {
		t.Errorf("AverageIntensity = %v, want 0.6", report.AverageIntensity)
	}
	if !approx(report.AverageConfidence, 0.7) {
		t.Errorf("AverageConfidence = %v, want 0.7", report.AverageConfidence)
	}

	dates := report.Dates()
	if !reflect.DeepEqual(dates, []string{"2025-07-09", "2025-07-10"}) {
		t.Fatalf("Dates() = %v", dates)
	}
	d1 := report.DailyPatterns["2025-07-09"]
	if d1.Count != 2 || !approx(d1.Intensity, 0.5) || !approx(d1.Confidence, 0.6) {
		t.Errorf("day 1 = %+v", d1)
	}
	d2 := report.DailyPatterns["2025-07-10"]
	if d2.Count != 1 || !approx(d2.Intensity, 0.8) {
		t.Errorf("day 2 = %+v", d2)
	}
}

func TestInsights_Empty(t *testing.T) {
	a := newTestAggregator()
	got := a.Insights()
	if !reflect.DeepEqual(got, []string{InsightNoData}) {
		t.Errorf("Insights() = %v", got)
	}
}

func TestInsights_Thresholds(t *testing.T) {
	type row struct {
		e          domain.EmotionLabel
		intensity  float64
		confidence float64
	}
	tests := []struct {
		name string
		rows []row
		want []string
	}{
		{
			name: "high intensity, low variety, high confidence",
			rows: []row{{domain.EmotionExcited, 0.9, 0.85}, {domain.EmotionExcited, 0.8, 0.9}},
			want: []string{InsightHighIntensity, InsightVariety, InsightConfident},
		},
		{
			name: "calm and uncertain",
			rows: []row{{domain.EmotionCalm, 0.2, 0.3}},
			want: []string{InsightCalm, InsightVariety, InsightNeedMoreData},
		},
		{
			name: "middle of the road with variety",
			rows: []row{
				{domain.EmotionHappy, 0.5, 0.6},
				{domain.EmotionExcited, 0.5, 0.6},
				{domain.EmotionFocused, 0.5, 0.6},
			},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAggregator()
			for _, r := range tt.rows {
				record(a, r.e, r.intensity, r.confidence, now)
			}
			got := a.Insights()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Insights() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsights_UseWholeLog(t *testing.T) {
	a := newTestAggregator()
	record(a, domain.EmotionCalm, 0.1, 0.3, now.AddDate(-1, 0, 0))
	got := a.Insights()
	if len(got) == 0 || got[0] != InsightCalm {
		t.Errorf("Insights() = %v, want calm insight from year-old entry", got)
	}
}

func TestRestoreAndLen(t *testing.T) {
	a := newTestAggregator()
	a.Restore([]domain.AnalyticsRecord{
		{Emotion: domain.EmotionHappy, Intensity: 0.5, Confidence: 0.5, Timestamp: now},
		{Emotion: domain.EmotionSad, Intensity: 0.5, Confidence: 0.5, Timestamp: now},
	})
	record(a, domain.EmotionCalm, 0.5, 0.5, now)
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestRecord_Concurrent(t *testing.T) {
	a := newTestAggregator()
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				record(a, domain.EmotionHappy, 0.5, 0.5, now)
			}
		}()
	}
	wg.Wait()
	if a.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", a.Len())
	}
}
