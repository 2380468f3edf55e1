package timer

import (
	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

// Config holds durations in whole seconds.
type Config struct {
	WorkSeconds       int
	ShortBreakSeconds int
	LongBreakSeconds  int
	LongBreakInterval int
}

func DefaultConfig() Config {
	return Config{
		WorkSeconds:       model.DefaultWorkMinutes * 60,
		ShortBreakSeconds: model.DefaultShortBreakMinutes * 60,
		LongBreakSeconds:  model.DefaultLongBreakMinutes * 60,
		LongBreakInterval: model.DefaultLongBreakInterval,
	}
}

func (c Config) Validate() error {
	const op = "configure timer"
	switch {
	case c.WorkSeconds <= 0:
		return apperrors.Validation(op, apperrors.CodeInvalidDuration, "work duration must be positive")
	case c.ShortBreakSeconds <= 0:
		return apperrors.Validation(op, apperrors.CodeInvalidDuration, "short break duration must be positive")
	case c.LongBreakSeconds <= 0:
		return apperrors.Validation(op, apperrors.CodeInvalidDuration, "long break duration must be positive")
	case c.LongBreakInterval <= 0:
		return apperrors.Validation(op, apperrors.CodeInvalidDuration, "long break interval must be at least 1")
	}
	return nil
}

func (c Config) durationFor(t model.SessionType) int {
	switch t {
	case model.SessionShortBreak:
		return c.ShortBreakSeconds
	case model.SessionLongBreak:
		return c.LongBreakSeconds
	default:
		return c.WorkSeconds
	}
}

// breakAfter picks the break that follows completedWork finished work
// sessions.
func (c Config) breakAfter(completedWork int) model.SessionType {
	if completedWork > 0 && c.LongBreakInterval > 0 && completedWork%c.LongBreakInterval == 0 {
		return model.SessionLongBreak
	}
	return model.SessionShortBreak
}
