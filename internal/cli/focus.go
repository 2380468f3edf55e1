package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/preferences"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/timer"
)

const focusHelp = "Commands: p pause, r resume, c complete, q quit"

func newFocusCmd(app *App) *cobra.Command {
	var (
		rounds int
		breaks bool
	)

	cmd := &cobra.Command{
		Use:   "focus TASK_ID",
		Short: "Run focus sessions on a task",
		Long: `focus runs work sessions bound to a task. Each completed work session adds one
to the task's completed pomodoros. A break follows every work session unless
--breaks=false; every long_break_interval-th break is a long one.

While running, type p, r, c or q and Enter to pause, resume, complete early or quit.
Interrupting the process cancels the running session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rounds < 1 {
				rounds = 1
			}
			return runFocus(cmd, app, args[0], rounds, breaks)
		},
	}

	cmd.Flags().IntVarP(&rounds, "rounds", "n", 1, "Number of work sessions to run")
	cmd.Flags().BoolVar(&breaks, "breaks", true, "Take a break after each work session")
	return cmd
}

type focusRun struct {
	app      *App
	engine   *timer.Engine
	out      *printer
	finished chan timer.Event
	commands <-chan string
	// Lines read after a session ended, held for the next one.
	pending []string
}

func runFocus(cmd *cobra.Command, app *App, taskID string, rounds int, breaks bool) error {
	ctx := cmd.Context()
	if err := app.signIn(ctx); err != nil {
		return err
	}

	task, err := app.Tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}

	engine := app.newEngine()
	defer engine.Stop()

	run := &focusRun{
		app:      app,
		engine:   engine,
		out:      &printer{w: cmd.OutOrStdout()},
		finished: make(chan timer.Event, 2),
	}
	engine.OnEvent(run.onEvent)

	followCtx, stopFollow := context.WithCancel(ctx)
	defer stopFollow()
	if err := run.bindPreferences(followCtx); err != nil {
		return err
	}

	run.commands = readCommands(followCtx, cmd.InOrStdin())
	run.out.line("Focusing on %q. %s", task.Title, focusHelp)

	for round := 1; round <= rounds; round++ {
		if err := engine.Start(ctx, &task); err != nil {
			return err
		}
		if !run.completed(ctx) {
			return nil
		}

		// The completed count moved on the server; start the next round from it.
		if task, err = app.Tasks.Get(ctx, task.ID); err != nil {
			return err
		}

		if !breaks {
			continue
		}
		if err := engine.StartBreak(ctx); err != nil {
			return err
		}
		if !run.completed(ctx) {
			return nil
		}
	}

	run.out.line("Done: %d/%d pomodoros on %q.", task.CompletedPomodoros, task.EstimatedPomodoros, task.Title)
	return nil
}

func (f *focusRun) bindPreferences(ctx context.Context) error {
	binder := preferences.NewBinder(f.engine, f.app.Logger.Named("preferences"))
	store := f.app.preferenceStore()
	if _, err := binder.Load(ctx, store); err != nil {
		return err
	}

	fileStore, ok := store.(preferences.FileStore)
	if !ok {
		return nil
	}
	go func() {
		err := preferences.Follow(ctx, binder, fileStore, func(err error) {
			f.app.Logger.Warn("reload preferences", zap.String("path", fileStore.Path), zap.Error(err))
		})
		if err != nil {
			f.app.Logger.Warn("watch preferences", zap.String("path", fileStore.Path), zap.Error(err))
		}
	}()
	return nil
}

// completed waits for the running session and reports whether it completed
// with the command still live.
func (f *focusRun) completed(ctx context.Context) bool {
	ev := f.wait(ctx)
	return ev.Type == timer.EventCompleted && ctx.Err() == nil
}

// wait blocks until the running session ends. Cancelling ctx resets the
// session and reports it as cancelled.
func (f *focusRun) wait(ctx context.Context) timer.Event {
	for {
		select {
		case ev := <-f.finished:
			return ev
		default:
		}

		if len(f.pending) > 0 && f.engine.State() != timer.StateIdle {
			line := f.pending[0]
			f.pending = f.pending[1:]
			f.handle(ctx, line)
			continue
		}

		select {
		case ev := <-f.finished:
			return ev
		case <-ctx.Done():
			if err := f.engine.Reset(context.Background()); err != nil && apperrors.IsCritical(err) {
				f.out.line("%s", f.app.Describe(err))
			}
			select {
			case ev := <-f.finished:
				return ev
			default:
				return timer.Event{Type: timer.EventCancelled, Snapshot: f.engine.Snapshot()}
			}
		case line, ok := <-f.commands:
			if !ok {
				f.commands = nil
				continue
			}
			if f.engine.State() == timer.StateIdle {
				f.pending = append(f.pending, line)
				continue
			}
			f.handle(ctx, line)
		}
	}
}

func (f *focusRun) handle(ctx context.Context, line string) {
	var err error
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return
	case "p", "pause":
		err = f.engine.Pause()
	case "r", "resume":
		err = f.engine.Resume()
	case "c", "complete":
		err = f.engine.Complete(ctx)
	case "q", "quit", "reset":
		err = f.engine.Reset(ctx)
	default:
		f.out.line("%s", focusHelp)
		return
	}

	// Finalize failures are reported by the event listener.
	if err != nil && apperrors.KindOf(err) != apperrors.KindRemoteFinalize {
		f.out.line("%s", f.app.Describe(err))
	}
}

func (f *focusRun) onEvent(ev timer.Event) {
	snap := ev.Snapshot
	switch ev.Type {
	case timer.EventStarted:
		f.out.line("%s started, %s", sessionLabel(snap.SessionType), clock(snap.RemainingSeconds))
	case timer.EventTick:
		if snap.RemainingSeconds%60 == 0 {
			f.out.line("%s remaining (%.0f%%)", clock(snap.RemainingSeconds), snap.Progress)
		}
	case timer.EventPaused:
		f.out.line("Paused at %s", clock(snap.RemainingSeconds))
	case timer.EventResumed:
		f.out.line("Resumed, %s left", clock(snap.RemainingSeconds))
	case timer.EventCompleted:
		f.out.line("Session completed. Work sessions this run: %d", snap.CompletedWork)
		f.finished <- ev
	case timer.EventCancelled:
		f.out.line("Session cancelled")
		f.finished <- ev
	case timer.EventFinalizeFailed:
		f.out.line("%s", f.app.Describe(ev.Err))
	}
}

func sessionLabel(t model.SessionType) string {
	switch t {
	case model.SessionShortBreak:
		return "Short break"
	case model.SessionLongBreak:
		return "Long break"
	default:
		return "Work session"
	}
}

func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func readCommands(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// printer serializes output from the engine's goroutines.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format+"\n", args...)
}
