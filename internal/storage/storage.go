package storage

import (
	"database/sql"
	"strconv"

	"harvest-analytics-api/internal/models"
)

// Settings keys.
const (
	KeyDailyTarget    = "daily_target"
	KeyRotationTarget = "rotation_target"
	KeySeasonOverride = "season_accumulated_override"
)

// Store wraps the sqlite handle with the queries the service needs.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value,
	)
	return err
}

// GetTargets reads the persisted planning scalars, falling back to the
// configured defaults for unset keys.
func (s *Store) GetTargets(defaults models.Targets) (models.Targets, error) {
	targets := defaults

	if v, ok, err := s.GetSetting(KeyDailyTarget); err != nil {
		return targets, err
	} else if ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			targets.DailyTarget = parsed
		}
	}

	if v, ok, err := s.GetSetting(KeyRotationTarget); err != nil {
		return targets, err
	} else if ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			targets.RotationTarget = parsed
		}
	}

	return targets, nil
}

func (s *Store) SetTargets(targets models.Targets) error {
	if err := s.SetSetting(KeyDailyTarget, strconv.FormatFloat(targets.DailyTarget, 'f', -1, 64)); err != nil {
		return err
	}
	return s.SetSetting(KeyRotationTarget, strconv.FormatFloat(targets.RotationTarget, 'f', -1, 64))
}

// SeasonOverride returns the manually set season accumulation, if any.
func (s *Store) SeasonOverride() (float64, bool, error) {
	v, ok, err := s.GetSetting(KeySeasonOverride)
	if err != nil || !ok {
		return 0, false, err
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, nil
	}
	return parsed, true, nil
}
