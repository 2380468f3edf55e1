// Package preferences binds the user's saved settings to the timer. Minute
// values from the profile or a local file are converted to seconds and pushed
// into the engine, which applies them at the next Start.
package preferences

import (
	"context"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/timer"
)

const maxMinutes = 240

// Configurer receives timer configuration. *timer.Engine implements it.
type Configurer interface {
	Configure(cfg timer.Config) error
}

type Source interface {
	Load(ctx context.Context) (model.Preferences, error)
}

type Store interface {
	Source
	Save(ctx context.Context, prefs model.Preferences) (model.Preferences, error)
}

// Validate checks that every duration is a positive number of minutes and the
// long break interval is at least one.
func Validate(p model.Preferences) error {
	const op = "validate preferences"
	check := func(name string, minutes int) error {
		if minutes < 1 || minutes > maxMinutes {
			return apperrors.Validation(op, apperrors.CodeInvalidDuration, name+" must be between 1 and 240 minutes")
		}
		return nil
	}
	if err := check("work duration", p.WorkMinutes); err != nil {
		return err
	}
	if err := check("short break duration", p.ShortBreakMinutes); err != nil {
		return err
	}
	if err := check("long break duration", p.LongBreakMinutes); err != nil {
		return err
	}
	if p.LongBreakInterval < 1 {
		return apperrors.Validation(op, apperrors.CodeInvalidDuration, "long break interval must be at least 1")
	}
	return nil
}

func ToConfig(p model.Preferences) (timer.Config, error) {
	if err := Validate(p); err != nil {
		return timer.Config{}, err
	}
	return timer.Config{
		WorkSeconds:       p.WorkMinutes * 60,
		ShortBreakSeconds: p.ShortBreakMinutes * 60,
		LongBreakSeconds:  p.LongBreakMinutes * 60,
		LongBreakInterval: p.LongBreakInterval,
	}, nil
}

type Binder struct {
	target Configurer
	logger *zap.Logger

	mu      sync.Mutex
	current model.Preferences
}

func NewBinder(target Configurer, logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{target: target, logger: logger, current: model.DefaultPreferences()}
}

func (b *Binder) Apply(prefs model.Preferences) error {
	cfg, err := ToConfig(prefs)
	if err != nil {
		return err
	}
	if err := b.target.Configure(cfg); err != nil {
		return err
	}

	b.mu.Lock()
	b.current = prefs
	b.mu.Unlock()

	b.logger.Debug("preferences applied",
		zap.Int("work_seconds", cfg.WorkSeconds),
		zap.Int("short_break_seconds", cfg.ShortBreakSeconds),
		zap.Int("long_break_seconds", cfg.LongBreakSeconds),
		zap.Int("long_break_interval", cfg.LongBreakInterval),
	)
	return nil
}

func (b *Binder) Load(ctx context.Context, src Source) (model.Preferences, error) {
	prefs, err := src.Load(ctx)
	if err != nil {
		return model.Preferences{}, err
	}
	if err := b.Apply(prefs); err != nil {
		return model.Preferences{}, err
	}
	return prefs, nil
}

// Save validates prefs, persists them and applies what the store returned.
// Nothing is applied when persisting fails.
func (b *Binder) Save(ctx context.Context, store Store, prefs model.Preferences) (model.Preferences, error) {
	if err := Validate(prefs); err != nil {
		return model.Preferences{}, err
	}
	saved, err := store.Save(ctx, prefs)
	if err != nil {
		return model.Preferences{}, err
	}
	if err := b.Apply(saved); err != nil {
		return model.Preferences{}, err
	}
	return saved, nil
}

func (b *Binder) Current() model.Preferences {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
