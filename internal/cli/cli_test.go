package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/config"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/db"
	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/router"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/timer"
)

var createdID = regexp.MustCompile(`Created (\S+) `)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database, db.Migrations()))

	server := httptest.NewServer(router.NewFromDB(database, router.Options{
		APIKey:    "test-key",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}))
	t.Cleanup(server.Close)

	cfg := config.Config{
		APIURL:         server.URL,
		APIKey:         "test-key",
		AuthEmail:      "cli@example.com",
		AuthPassword:   "secret-pass",
		RequestTimeout: 5 * time.Second,
		CacheTTL:       time.Minute,
		Lang:           "en",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	app.Clock = timer.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	t.Cleanup(app.Close)
	return app
}

func runCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, app *App, stdin string, args ...string) string {
	t.Helper()
	out, err := runCmd(t, app, stdin, args...)
	require.NoError(t, err, out)
	return out
}

func addTask(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out := mustRun(t, app, "", append([]string{"tasks", "add"}, args...)...)
	match := createdID.FindStringSubmatch(out)
	require.Len(t, match, 2, out)
	return match[1]
}

func TestSignUpAndWhoAmI(t *testing.T) {
	app := newTestApp(t, nil)

	out := mustRun(t, app, "", "signup")
	assert.Contains(t, out, "Signed up as cli@example.com")

	out = mustRun(t, app, "", "whoami")
	assert.Contains(t, out, "cli@example.com")
}

func TestTasksCommands(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")

	id := addTask(t, app, "Write", "report", "-p", "high", "-t", "work,writing", "-e", "2")
	addTask(t, app, "Water plants", "-t", "home")

	out := mustRun(t, app, "", "tasks", "list")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "0/2")
	assert.Contains(t, out, "work,writing")
	assert.Contains(t, out, "Water plants")

	out = mustRun(t, app, "", "tasks", "list", "--priority", "high")
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Water plants")

	out = mustRun(t, app, "", "tasks", "list", "-s", "PLANTS")
	assert.Contains(t, out, "Water plants")
	assert.NotContains(t, out, "Write report")

	out = mustRun(t, app, "", "tasks", "list", "-t", "nothing")
	assert.Contains(t, out, "No tasks found.")

	out = mustRun(t, app, "", "tasks", "done", id)
	assert.Contains(t, out, `"Write report" completed`)

	out = mustRun(t, app, "", "tasks", "list", "--completed=false")
	assert.NotContains(t, out, "Write report")
	assert.Contains(t, out, "Water plants")

	out = mustRun(t, app, "", "tasks", "rm", id)
	assert.Contains(t, out, "Deleted "+id)

	_, err := runCmd(t, app, "", "tasks", "add", " ")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestFocus_CompleteFromInput(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")
	id := addTask(t, app, "Deep work")

	out := mustRun(t, app, "c\n", "focus", id, "--breaks=false")
	assert.Contains(t, out, "Work session started, 25:00")
	assert.Contains(t, out, "Session completed. Work sessions this run: 1")
	assert.Contains(t, out, `Done: 1/1 pomodoros on "Deep work".`)

	task, err := app.Tasks.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, task.CompletedPomodoros)
}

func TestFocus_BreakFollowsWork(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")
	id := addTask(t, app, "Deep work")

	out := mustRun(t, app, "p\nr\nc\nc\n", "focus", id)
	assert.Contains(t, out, "Paused at 25:00")
	assert.Contains(t, out, "Resumed, 25:00 left")
	assert.Contains(t, out, "Short break started, 05:00")

	out = mustRun(t, app, "", "history")
	assert.Contains(t, out, "short_break")
	assert.Contains(t, out, "work")
	assert.Equal(t, 2, strings.Count(out, "completed"))
}

func TestFocus_InputDrivesEverySession(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")
	id := addTask(t, app, "Deep work", "-e", "40")

	for i := 1; i <= 20; i++ {
		done := make(chan string, 1)
		go func() {
			out, err := runCmd(t, app, "c\nc\nc\nc\n", "focus", id, "--rounds", "2")
			if err != nil {
				out += err.Error()
			}
			done <- out
		}()

		var out string
		select {
		case out = <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("run %d: focus did not return", i)
		}
		assert.Equal(t, 2, strings.Count(out, "Short break started, 05:00"), "run %d:\n%s", i, out)
		assert.NotContains(t, out, "no session in progress", "run %d", i)
		assert.Contains(t, out, fmt.Sprintf("Done: %d/40 pomodoros", 2*i), "run %d:\n%s", i, out)
	}
}

func TestFocus_QuitCancelsWithoutIncrement(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")
	id := addTask(t, app, "Deep work")

	out := mustRun(t, app, "q\n", "focus", id)
	assert.Contains(t, out, "Session cancelled")
	assert.NotContains(t, out, "Done:")

	task, err := app.Tasks.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, task.CompletedPomodoros)

	out = mustRun(t, app, "", "history")
	assert.Contains(t, out, "cancelled")
}

func TestFocus_UnknownTask(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")

	_, err := runCmd(t, app, "", "focus", "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPrefs_ProfileRoundTrip(t *testing.T) {
	app := newTestApp(t, nil)
	mustRun(t, app, "", "signup")

	out := mustRun(t, app, "", "prefs", "show")
	assert.Contains(t, out, "work_duration: 25")

	out = mustRun(t, app, "", "prefs", "set", "--work", "40", "--sound=false")
	assert.Contains(t, out, "Saved: work 40m, short break 5m, long break 15m every 4 sessions")
	assert.Contains(t, out, "Next work session: 40:00")

	out = mustRun(t, app, "", "prefs", "show")
	assert.Contains(t, out, "work_duration: 40")
	assert.Contains(t, out, "sound_enabled: false")

	_, err := runCmd(t, app, "", "prefs", "set", "--interval", "0")
	assert.Equal(t, apperrors.CodeInvalidDuration, apperrors.CodeOf(err))
}

func TestPrefs_FileDrivesFocus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.PreferencesFile = path
	})
	mustRun(t, app, "", "signup")

	out := mustRun(t, app, "", "prefs", "set", "--work", "50", "--short-break", "10")
	assert.Contains(t, out, "Saved: work 50m, short break 10m")
	assert.Contains(t, out, "Next work session: 50:00")

	id := addTask(t, app, "Long focus")
	out = mustRun(t, app, "c\nc\n", "focus", id)
	assert.Contains(t, out, "Work session started, 50:00")
	assert.Contains(t, out, "Short break started, 10:00")
}

func TestNotSignedIn(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.AuthEmail = ""
	})

	_, err := runCmd(t, app, "", "tasks", "list")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotAuthenticated, apperrors.KindOf(err))
	assert.Contains(t, app.Describe(err), "You are not signed in")
}
