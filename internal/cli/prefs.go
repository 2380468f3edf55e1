package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/preferences"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change timer preferences",
		Long: `prefs reads and writes the timer preferences. They live on your profile, or in
the YAML file named by PREFERENCES_FILE when it is set.`,
	}
	cmd.AddCommand(newPrefsShowCmd(app))
	cmd.AddCommand(newPrefsSetCmd(app))
	return cmd
}

func newPrefsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.needsAuthForPreferences() {
				if err := app.signIn(cmd.Context()); err != nil {
					return err
				}
			}

			prefs, err := app.preferenceStore().Load(cmd.Context())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(prefs)
			if err != nil {
				return fmt.Errorf("encode preferences: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newPrefsSetCmd(app *App) *cobra.Command {
	var (
		work, shortBreak, longBreak, interval int
		notifications, sound                  bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change preferences; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if app.needsAuthForPreferences() {
				if err := app.signIn(ctx); err != nil {
					return err
				}
			}

			engine := app.newEngine()
			defer engine.Stop()
			binder := preferences.NewBinder(engine, app.Logger.Named("preferences"))

			store := app.preferenceStore()
			prefs, err := binder.Load(ctx, store)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("work") {
				prefs.WorkMinutes = work
			}
			if flags.Changed("short-break") {
				prefs.ShortBreakMinutes = shortBreak
			}
			if flags.Changed("long-break") {
				prefs.LongBreakMinutes = longBreak
			}
			if flags.Changed("interval") {
				prefs.LongBreakInterval = interval
			}
			if flags.Changed("notifications") {
				prefs.NotificationsEnabled = notifications
			}
			if flags.Changed("sound") {
				prefs.SoundEnabled = sound
			}

			if _, err := binder.Save(ctx, store, prefs); err != nil {
				return err
			}
			saved := binder.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved: work %dm, short break %dm, long break %dm every %d sessions\n",
				saved.WorkMinutes, saved.ShortBreakMinutes, saved.LongBreakMinutes, saved.LongBreakInterval)
			fmt.Fprintf(cmd.OutOrStdout(), "Next work session: %s\n", clock(engine.Snapshot().RemainingSeconds))
			return nil
		},
	}

	cmd.Flags().IntVar(&work, "work", 0, "Work session minutes")
	cmd.Flags().IntVar(&shortBreak, "short-break", 0, "Short break minutes")
	cmd.Flags().IntVar(&longBreak, "long-break", 0, "Long break minutes")
	cmd.Flags().IntVar(&interval, "interval", 0, "Work sessions between long breaks")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "Enable notifications")
	cmd.Flags().BoolVar(&sound, "sound", true, "Enable sound")
	return cmd
}
