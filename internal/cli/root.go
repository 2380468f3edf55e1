// Package cli is the pomodoro command line: task management, focus sessions
// driven by the timer engine, preferences and session history.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/config"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/logging"
)

func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "pomodoro",
		Short: "Tasks and Pomodoro focus sessions",
		Long: `pomodoro manages your task list and runs focus sessions against the hosted backend.

Credentials come from AUTH_EMAIL and AUTH_PASSWORD; the backend from API_URL and API_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSignUpCmd(app))
	root.AddCommand(newWhoAmICmd(app))
	root.AddCommand(newTasksCmd(app))
	root.AddCommand(newFocusCmd(app))
	root.AddCommand(newPrefsCmd(app))
	root.AddCommand(newHistoryCmd(app))
	return root
}

func Execute(ctx context.Context, version string) error {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := NewApp(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	defer app.Close()

	root := NewRootCmd(app)
	root.Version = version
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", app.Describe(err))
		return err
	}
	return nil
}
