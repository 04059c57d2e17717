package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dopamind/dopamind/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func historyCount(d *DB, userID, key string) (int, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM reward_history WHERE user_id = ? AND reward_key = ?`,
		userID, key,
	).Scan(&n)
	return n, err
}

func emotionCount(d *DB) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM emotion_log`).Scan(&n)
	return n, err
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
		t.Errorf("%s should exist", FileName)
	}
	if db.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", db.Path())
	}
}

func TestOpen_Ping(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	rec := domain.AnalyticsRecord{
		ID: "evt-1", Emotion: domain.EmotionHappy, Intensity: 0.5,
		Confidence: 0.5, RewardCategory: domain.RewardLike, Timestamp: time.Now(),
	}
	if err := db.AppendEmotion(rec); err != nil {
		t.Fatalf("AppendEmotion() error: %v", err)
	}
	db.Close()

	// Migrations must be idempotent and data must survive.
	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()
	n, err := emotionCount(db)
	if err != nil {
		t.Fatalf("emotionCount() error: %v", err)
	}
	if n != 1 {
		t.Errorf("emotionCount() = %d, want 1", n)
	}
}

// ─── Reward History ─────────────────────────────────────────────────────────

func TestAppendHistory_TrimsToLimit(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		e := domain.HistoryEntry{
			Intensity:  float64(i) / 10,
			Confidence: 0.5,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}
		if err := db.AppendHistory("u1", "like_happy", e, 3); err != nil {
			t.Fatalf("AppendHistory(%d) error: %v", i, err)
		}
	}

	n, err := historyCount(db, "u1", "like_happy")
	if err != nil {
		t.Fatalf("historyCount() error: %v", err)
	}
	if n != 3 {
		t.Fatalf("historyCount() = %d, want 3", n)
	}

	hist, err := db.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory() error: %v", err)
	}
	got := hist["u1"]["like_happy"]
	if len(got) != 3 {
		t.Fatalf("loaded %d entries, want 3", len(got))
	}
	// Oldest two dropped, remaining in insertion order.
	for i, want := range []float64{0.2, 0.3, 0.4} {
		if got[i].Intensity != want {
			t.Errorf("entry %d intensity = %v, want %v", i, got[i].Intensity, want)
		}
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Errorf("entry 0 timestamp = %v", got[0].Timestamp)
	}
}

func TestAppendHistory_KeysIndependent(t *testing.T) {
	db := newTestDB(t)
	e := domain.HistoryEntry{Intensity: 0.6, Confidence: 0.7, Timestamp: time.Now()}

	for i := 0; i < 3; i++ {
		if err := db.AppendHistory("u1", "like_happy", e, 2); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.AppendHistory("u1", "share_excited", e, 2); err != nil {
		t.Fatal(err)
	}
	if err := db.AppendHistory("u2", "like_happy", e, 2); err != nil {
		t.Fatal(err)
	}

	hist, err := db.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory() error: %v", err)
	}
	if len(hist) != 2 {
		t.Errorf("users = %d, want 2", len(hist))
	}
	if n := len(hist["u1"]["like_happy"]); n != 2 {
		t.Errorf("u1 like_happy = %d, want 2", n)
	}
	if n := len(hist["u1"]["share_excited"]); n != 1 {
		t.Errorf("u1 share_excited = %d, want 1", n)
	}
	if n := len(hist["u2"]["like_happy"]); n != 1 {
		t.Errorf("u2 like_happy = %d, want 1", n)
	}
}

func TestLoadHistory_Empty(t *testing.T) {
	db := newTestDB(t)
	hist, err := db.LoadHistory()
	if err != nil {
		t.Fatalf("LoadHistory() error: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("LoadHistory() = %v, want empty", hist)
	}
}

// ─── Emotion Log ────────────────────────────────────────────────────────────

func TestAppendEmotion_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ts := time.Date(2026, 3, 1, 9, 30, 0, 123, time.UTC)

	recs := []domain.AnalyticsRecord{
		{ID: "a", Emotion: domain.EmotionExcited, Intensity: 1.0, Confidence: 0.5, RewardCategory: domain.RewardMilestone, Timestamp: ts},
		{ID: "b", Emotion: domain.EmotionHappy, Intensity: 0.4, Confidence: 0.6, RewardCategory: domain.RewardLike, Timestamp: ts.Add(time.Minute)},
	}
	for _, r := range recs {
		if err := db.AppendEmotion(r); err != nil {
			t.Fatalf("AppendEmotion(%s) error: %v", r.ID, err)
		}
	}

	got, err := db.LoadEmotions()
	if err != nil {
		t.Fatalf("LoadEmotions() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadEmotions() len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order = %s,%s, want a,b", got[0].ID, got[1].ID)
	}
	if got[0].Emotion != domain.EmotionExcited || got[0].RewardCategory != domain.RewardMilestone {
		t.Errorf("record 0 = %+v", got[0])
	}
	if !got[0].Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, ts)
	}
}

func TestAppendEmotion_DuplicateIDIgnored(t *testing.T) {
	db := newTestDB(t)
	rec := domain.AnalyticsRecord{
		ID: "dup", Emotion: domain.EmotionHappy, Intensity: 0.5,
		Confidence: 0.5, RewardCategory: domain.RewardLike, Timestamp: time.Now(),
	}
	for i := 0; i < 2; i++ {
		if err := db.AppendEmotion(rec); err != nil {
			t.Fatalf("AppendEmotion() error: %v", err)
		}
	}
	n, err := emotionCount(db)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("emotionCount() = %d, want 1", n)
	}
}

func TestLoad_RejectsCorruptRows(t *testing.T) {
	db := newTestDB(t)
	e := domain.HistoryEntry{Intensity: 0.5, Confidence: 0.5, Timestamp: time.Now()}
	if err := db.AppendHistory("u1", "like_bored", e, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := db.LoadHistory(); !errors.Is(err, domain.ErrInvalidEmotionLabel) {
		t.Errorf("LoadHistory() err = %v, want ErrInvalidEmotionLabel", err)
	}

	rec := domain.AnalyticsRecord{
		ID: "bad", Emotion: domain.EmotionHappy, Intensity: 0.5,
		Confidence: 0.5, RewardCategory: "hug", Timestamp: time.Now(),
	}
	if err := db.AppendEmotion(rec); err != nil {
		t.Fatal(err)
	}
	if _, err := db.LoadEmotions(); !errors.Is(err, domain.ErrInvalidRewardCategory) {
		t.Errorf("LoadEmotions() err = %v, want ErrInvalidRewardCategory", err)
	}
}
