package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/cache"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/config"
	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/messages"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/preferences"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/remote"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/tasks"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/timer"
)

const cachePrefix = "do-it-with-ease"

type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Client   *remote.Client
	Tasks    *tasks.Service
	Messages *messages.Translator
	Clock    timer.Clock

	closers []func()
}

func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	translator, err := messages.New()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	client := remote.New(remote.Options{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeout,
		Logger:  logger.Named("remote"),
	})

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Client:   client,
		Messages: translator,
		Clock:    timer.RealClock(),
	}

	var taskCache cache.Cache
	if cfg.CacheRedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.CacheRedisAddr)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, redisClient.Close)
		taskCache = cache.NewRedis(redisClient, cachePrefix, cfg.CacheTTL)
	} else {
		taskCache = cache.NewMemory(cfg.CacheTTL)
	}
	app.Tasks = tasks.NewService(client.Tasks(), taskCache, client, logger.Named("tasks"))
	return app, nil
}

func (a *App) Close() {
	for _, closeFn := range a.closers {
		closeFn()
	}
	a.closers = nil
}

func (a *App) Describe(err error) string {
	return a.Messages.Describe(a.Config.Lang, err)
}

// signIn authenticates with the configured credentials unless a token is
// already held.
func (a *App) signIn(ctx context.Context) error {
	if _, err := a.Client.UserID(); err == nil {
		return nil
	}
	if a.Config.AuthEmail == "" || a.Config.AuthPassword == "" {
		return apperrors.NotAuthenticated("sign in")
	}
	_, err := a.Client.SignIn(ctx, a.Config.AuthEmail, a.Config.AuthPassword)
	return err
}

func (a *App) newEngine() *timer.Engine {
	return timer.New(a.Client.Sessions(), a.Tasks, timer.Options{
		Clock:   a.Clock,
		Logger:  a.Logger.Named("timer"),
		Timeout: a.Config.RequestTimeout,
	})
}

// preferenceStore returns the local file when one is configured and the
// profile otherwise.
func (a *App) preferenceStore() preferences.Store {
	if a.Config.PreferencesFile != "" {
		return preferences.FileStore{Path: a.Config.PreferencesFile}
	}
	return a.Client.Profiles()
}

func (a *App) needsAuthForPreferences() bool {
	return a.Config.PreferencesFile == ""
}
