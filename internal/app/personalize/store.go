// Package personalize holds per-user reward history and turns it into
// personalized emotion and dopamine predictions.
//
// A profile maps "{category}_{emotion}" keys to a FIFO-capped list of
// observations. Prediction averages every entry whose key starts with
// the requested category and scales the mean by a time-of-day and
// context multiplier. Users without history fall back to the stateless
// generators.
package personalize

import (
	"strings"
	"sync"
	"time"

	"github.com/dopamind/dopamind/internal/app/emotion"
	"github.com/dopamind/dopamind/internal/domain"
)

// DefaultHistoryCap is the number of entries kept per profile key.
const DefaultHistoryCap = 100

// Path tells which branch produced a prediction.
type Path string

const (
	PathDefault      Path = "default"
	PathPersonalized Path = "personalized"
)

// Hours that boost or dampen a personalized prediction.
var (
	peakHours  = map[int]bool{9: true, 10: true, 11: true, 14: true, 15: true, 16: true}
	quietHours = map[int]bool{22: true, 23: true, 0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
)

// profile is one user's history. Guarded by its own mutex so that
// different users never contend.
type profile struct {
	mu      sync.Mutex
	entries map[string][]domain.HistoryEntry
}

// Store owns every user profile for the lifetime of the process.
type Store struct {
	gen *emotion.Generator
	cap int
	now func() time.Time

	mu    sync.RWMutex
	users map[string]*profile
}

// NewStore creates an empty store. historyCap <= 0 uses DefaultHistoryCap.
func NewStore(gen *emotion.Generator, historyCap int) *Store {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Store{
		gen:   gen,
		cap:   historyCap,
		now:   gen.Now,
		users: make(map[string]*profile),
	}
}

// Cap returns the per-key history limit.
func (s *Store) Cap() int { return s.cap }

// Predict returns the emotion and dopamine prediction for a reward.
// It never mutates the store. The default path simulates with no
// session history, so a first contact always has confidence 0.5.
func (s *Store) Predict(userID string, cat domain.RewardCategory, ctx domain.Context) (domain.EmotionObservation, domain.DopamineObservation, Path) {
	pooled := s.pool(userID, cat)
	if len(pooled) == 0 {
		emo, dop := s.gen.Simulate(cat, ctx, nil)
		return emo, dop, PathDefault
	}

	var sumIntensity, sumConfidence float64
	for _, e := range pooled {
		sumIntensity += e.Intensity
		sumConfidence += e.Confidence
	}
	n := float64(len(pooled))
	now := s.now()

	emo := domain.EmotionObservation{
		// The averaged pool spans every emotion recorded for the category,
		// so no single label is recovered; happy stands in.
		Emotion:    domain.EmotionHappy,
		Intensity:  domain.Clamp(sumIntensity/n*Adjustment(now, ctx), 0, 1),
		Confidence: domain.Clamp(sumConfidence/n, 0, 1),
		Timestamp:  now,
		Context:    ctx,
	}
	return emo, s.gen.Dopamine(cat, emo, ctx), PathPersonalized
}

// pool copies every entry whose key starts with the category name.
func (s *Store) pool(userID string, cat domain.RewardCategory) []domain.HistoryEntry {
	s.mu.RLock()
	p, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var out []domain.HistoryEntry
	for key, entries := range p.entries {
		if strings.HasPrefix(key, string(cat)) {
			out = append(out, entries...)
		}
	}
	return out
}

// Adjustment is the compounded time-of-day, fatigue and stress multiplier.
func Adjustment(now time.Time, ctx domain.Context) float64 {
	adj := 1.0
	switch h := now.Hour(); {
	case peakHours[h]:
		adj *= 1.1
	case quietHours[h]:
		adj *= 0.9
	}
	if ctx.Fatigued() {
		adj *= 0.8
	}
	if ctx.Stressed() {
		adj *= 0.9
	}
	return adj
}

// Record appends an observation under "{category}_{emotion}" and drops
// the oldest entries beyond the cap. It returns the stored entry and key.
func (s *Store) Record(userID string, obs domain.EmotionObservation, cat domain.RewardCategory) (string, domain.HistoryEntry) {
	key := domain.HistoryKey(cat, obs.Emotion)
	entry := domain.HistoryEntry{
		Intensity:  obs.Intensity,
		Confidence: obs.Confidence,
		Timestamp:  obs.Timestamp,
	}

	p := s.profile(userID)
	p.mu.Lock()
	p.entries[key] = s.trim(append(p.entries[key], entry))
	p.mu.Unlock()

	return key, entry
}

// Restore loads previously journaled entries for a key, oldest first.
func (s *Store) Restore(userID, key string, entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		return
	}
	p := s.profile(userID)
	p.mu.Lock()
	p.entries[key] = s.trim(append(p.entries[key], entries...))
	p.mu.Unlock()
}

// History returns a copy of one key's entries, oldest first.
func (s *Store) History(userID, key string) []domain.HistoryEntry {
	s.mu.RLock()
	p, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.HistoryEntry(nil), p.entries[key]...)
}

// Users returns how many user profiles exist.
func (s *Store) Users() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// profile returns the user's profile, creating it on first contact.
func (s *Store) profile(userID string) *profile {
	s.mu.RLock()
	p, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.users[userID]; ok {
		return p
	}
	p = &profile{entries: make(map[string][]domain.HistoryEntry)}
	s.users[userID] = p
	return p
}

// trim keeps the newest cap entries. The backing array is reallocated
// once it grows past twice the cap so evicted entries can be collected.
func (s *Store) trim(entries []domain.HistoryEntry) []domain.HistoryEntry {
	if len(entries) <= s.cap {
		return entries
	}
	kept := entries[len(entries)-s.cap:]
	if cap(entries) > 2*s.cap {
		kept = append(make([]domain.HistoryEntry, 0, s.cap), kept...)
	}
	return kept
}
