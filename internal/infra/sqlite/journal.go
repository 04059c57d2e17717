package sqlite

import (
	"fmt"
	"time"

	"github.com/dopamind/dopamind/internal/domain"
)

// ─── Reward History ─────────────────────────────────────────────────────────

// AppendHistory stores one entry and deletes the oldest rows beyond limit
// for the same (user, key).
func (d *DB) AppendHistory(userID, key string, e domain.HistoryEntry, limit int) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO reward_history (user_id, reward_key, intensity, confidence, ts)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, key, e.Intensity, e.Confidence, e.Timestamp.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	if limit > 0 {
		if _, err := tx.Exec(
			`DELETE FROM reward_history
			 WHERE user_id = ? AND reward_key = ? AND id NOT IN (
				SELECT id FROM reward_history
				WHERE user_id = ? AND reward_key = ?
				ORDER BY id DESC LIMIT ?
			 )`,
			userID, key, userID, key, limit,
		); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}

	return tx.Commit()
}

// LoadHistory reads every stored entry, oldest first within each key.
// A row whose key does not name a known reward and emotion fails the load.
func (d *DB) LoadHistory() (domain.UserHistory, error) {
	rows, err := d.db.Query(
		`SELECT user_id, reward_key, intensity, confidence, ts
		 FROM reward_history ORDER BY user_id, reward_key, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(domain.UserHistory)
	for rows.Next() {
		var (
			userID, key string
			e           domain.HistoryEntry
			ts          int64
		)
		if err := rows.Scan(&userID, &key, &e.Intensity, &e.Confidence, &ts); err != nil {
			return nil, err
		}
		if _, _, err := domain.ParseHistoryKey(key); err != nil {
			return nil, fmt.Errorf("history row for %s: %w", userID, err)
		}
		e.Timestamp = time.Unix(0, ts)

		keys, ok := out[userID]
		if !ok {
			keys = make(map[string][]domain.HistoryEntry)
			out[userID] = keys
		}
		keys[key] = append(keys[key], e)
	}
	return out, rows.Err()
}

// ─── Emotion Log ────────────────────────────────────────────────────────────

// AppendEmotion stores one analytics record. Records are keyed by event ID;
// re-appending the same ID is a no-op.
func (d *DB) AppendEmotion(rec domain.AnalyticsRecord) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO emotion_log (event_id, emotion, intensity, confidence, reward_type, ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Emotion), rec.Intensity, rec.Confidence,
		string(rec.RewardCategory), rec.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert emotion: %w", err)
	}
	return nil
}

// LoadEmotions reads the whole analytics log in arrival order.
// Unknown emotion or reward values fail the load.
func (d *DB) LoadEmotions() ([]domain.AnalyticsRecord, error) {
	rows, err := d.db.Query(
		`SELECT event_id, emotion, intensity, confidence, reward_type, ts
		 FROM emotion_log ORDER BY seq`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AnalyticsRecord
	for rows.Next() {
		var (
			r               domain.AnalyticsRecord
			emotion, reward string
			ts              int64
		)
		if err := rows.Scan(&r.ID, &emotion, &r.Intensity, &r.Confidence, &reward, &ts); err != nil {
			return nil, err
		}
		if r.Emotion, err = domain.ParseEmotionLabel(emotion); err != nil {
			return nil, fmt.Errorf("emotion row %s: %w", r.ID, err)
		}
		if r.RewardCategory, err = domain.ParseRewardCategory(reward); err != nil {
			return nil, fmt.Errorf("emotion row %s: %w", r.ID, err)
		}
		r.Timestamp = time.Unix(0, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
