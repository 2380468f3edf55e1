package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT p.user_id, u.email, p.full_name, p.work_duration, p.short_break_duration,
		        p.long_break_duration, p.long_break_interval, p.notifications_enabled, p.sound_enabled
		 FROM profiles p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ?`,
		userID,
	)

	var profile model.Profile
	var fullName sql.NullString
	var notifications, sound int
	err := row.Scan(
		&profile.UserID,
		&profile.Email,
		&fullName,
		&profile.Preferences.WorkMinutes,
		&profile.Preferences.ShortBreakMinutes,
		&profile.Preferences.LongBreakMinutes,
		&profile.Preferences.LongBreakInterval,
		&notifications,
		&sound,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if fullName.Valid {
		value := fullName.String
		profile.FullName = &value
	}
	profile.Preferences.NotificationsEnabled = notifications != 0
	profile.Preferences.SoundEnabled = sound != 0
	return &profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *model.Profile, now time.Time) error {
	prefs := profile.Preferences
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE profiles
		 SET full_name = ?,
		     work_duration = ?,
		     short_break_duration = ?,
		     long_break_duration = ?,
		     long_break_interval = ?,
		     notifications_enabled = ?,
		     sound_enabled = ?,
		     updated_at = ?
		 WHERE user_id = ?`,
		nullableString(profile.FullName),
		prefs.WorkMinutes,
		prefs.ShortBreakMinutes,
		prefs.LongBreakMinutes,
		prefs.LongBreakInterval,
		boolInt(prefs.NotificationsEnabled),
		boolInt(prefs.SoundEnabled),
		formatTime(now),
		profile.UserID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
