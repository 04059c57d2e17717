// Package domain holds the pure types of the dopamind scoring pipeline:
// reward categories, emotion labels, observations, and sentinel errors.
// Nothing in here touches infrastructure.
package domain

import (
	"fmt"
	"strings"
)

// ─── Reward Categories ──────────────────────────────────────────────────────

// RewardCategory is the kind of interaction that triggered a response.
type RewardCategory string

const (
	RewardLike        RewardCategory = "like"
	RewardComment     RewardCategory = "comment"
	RewardShare       RewardCategory = "share"
	RewardAchievement RewardCategory = "achievement"
	RewardConnection  RewardCategory = "connection"
	RewardDiscovery   RewardCategory = "discovery"
	RewardStreak      RewardCategory = "streak"
	RewardMilestone   RewardCategory = "milestone"
)

// RewardProfile carries the fixed per-category constants.
type RewardProfile struct {
	Emotion           EmotionLabel
	IntensityModifier float64
	PeakBase          float64
	DurationSeconds   float64
}

// Used for any category that slipped past validation.
var fallbackProfile = RewardProfile{
	Emotion:           EmotionHappy,
	IntensityModifier: 0.5,
	PeakBase:          0.6,
	DurationSeconds:   3.0,
}

// rewardTable is ordered; RewardCategories returns it in this order.
var rewardTable = []struct {
	category RewardCategory
	profile  RewardProfile
}{
	{RewardLike, RewardProfile{EmotionHappy, 0.3, 0.6, 2.0}},
	{RewardComment, RewardProfile{EmotionExcited, 0.5, 0.7, 3.0}},
	{RewardShare, RewardProfile{EmotionEnergetic, 0.7, 0.8, 4.0}},
	{RewardAchievement, RewardProfile{EmotionExcited, 0.8, 0.9, 5.0}},
	{RewardConnection, RewardProfile{EmotionHappy, 0.6, 0.7, 3.5}},
	{RewardDiscovery, RewardProfile{EmotionFocused, 0.6, 0.8, 4.5}},
	{RewardStreak, RewardProfile{EmotionEnergetic, 0.7, 0.8, 5.0}},
	{RewardMilestone, RewardProfile{EmotionExcited, 0.9, 0.95, 6.0}},
}

// RewardCategories returns every valid category in declaration order.
func RewardCategories() []RewardCategory {
	out := make([]RewardCategory, len(rewardTable))
	for i, row := range rewardTable {
		out[i] = row.category
	}
	return out
}

// ParseRewardCategory validates s against the closed set of categories.
func ParseRewardCategory(s string) (RewardCategory, error) {
	for _, row := range rewardTable {
		if string(row.category) == s {
			return row.category, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidRewardCategory, s)
}

// Valid reports whether c is one of the known categories.
func (c RewardCategory) Valid() bool {
	_, err := ParseRewardCategory(string(c))
	return err == nil
}

// Profile returns the constants for c.
func (c RewardCategory) Profile() RewardProfile {
	for _, row := range rewardTable {
		if row.category == c {
			return row.profile
		}
	}
	return fallbackProfile
}

// DefaultEmotion is the emotion a reward of this category produces.
func (c RewardCategory) DefaultEmotion() EmotionLabel {
	return c.Profile().Emotion
}

// HistoryKey builds the "{category}_{emotion}" key used by user profiles.
func HistoryKey(c RewardCategory, e EmotionLabel) string {
	return string(c) + "_" + string(e)
}

// ParseHistoryKey splits a key built by HistoryKey back into its parts.
func ParseHistoryKey(key string) (RewardCategory, EmotionLabel, error) {
	cat, label, ok := strings.Cut(key, "_")
	if !ok {
		return "", "", fmt.Errorf("%w: history key %q", ErrInvalidInput, key)
	}
	c, err := ParseRewardCategory(cat)
	if err != nil {
		return "", "", err
	}
	l, err := ParseEmotionLabel(label)
	if err != nil {
		return "", "", err
	}
	return c, l, nil
}

// InvalidRewardMessage lists the accepted categories, for boundary errors.
func InvalidRewardMessage() string {
	names := make([]string, len(rewardTable))
	for i, row := range rewardTable {
		names[i] = "'" + string(row.category) + "'"
	}
	return "Invalid reward type. Must be one of: [" + strings.Join(names, ", ") + "]"
}

// ─── Session Events ─────────────────────────────────────────────────────────

// SessionEvent is one entry of a caller-supplied recent-session list.
// Only Type matters to the emotion generator; Intensity feeds summaries.
type SessionEvent struct {
	Type      string  `json:"type"`
	Intensity float64 `json:"intensity"`
}
