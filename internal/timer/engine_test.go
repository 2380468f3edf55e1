package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

func TestNew_IdleAtWorkDuration(t *testing.T) {
	h := newHarness(t, shortConfig())

	snap := h.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 3, snap.RemainingSeconds)
	assert.Empty(t, snap.SessionID)
	assert.Zero(t, snap.Progress)
}

func TestScenarioA_FullWorkSessionAutoCompletes(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)
	h.task.CompletedPomodoros = 2
	h.tasks = newFakeTasks(h.task)
	h.engine = New(h.sessions, h.tasks, Options{Clock: h.clock, Config: &cfg})
	t.Cleanup(h.engine.Stop)

	h.start(t)
	sessionID := h.engine.Snapshot().SessionID
	require.NotEmpty(t, sessionID)

	h.ticks(t, 1500)

	assert.Equal(t, StateIdle, h.engine.State())
	assert.Equal(t, 3, h.tasks.get("task-1").CompletedPomodoros)
	assert.Equal(t, 4, h.tasks.get("task-1").EstimatedPomodoros)
	assert.Equal(t, []model.SessionStatus{model.SessionCompleted}, h.sessions.finalizedAs(sessionID))
	assert.Equal(t, 1500, h.engine.Snapshot().RemainingSeconds)
}

func TestTicks_ExactlyOneAutoComplete(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)

	h.ticks(t, 10)

	assert.Equal(t, 1, h.sessions.finalizeCount())
	assert.Equal(t, 1, h.tasks.updateCount())
	assert.Equal(t, 1, h.events.count(EventCompleted))
	assert.Equal(t, 2, h.events.count(EventTick))
}

func TestScenarioB_PauseGatesTicks(t *testing.T) {
	cfg := shortConfig()
	cfg.WorkSeconds = 60
	h := newHarness(t, cfg)
	h.start(t)
	h.ticks(t, 7)

	require.NoError(t, h.engine.Pause())
	before := h.engine.Snapshot().RemainingSeconds
	h.ticks(t, 10)
	assert.Equal(t, before, h.engine.Snapshot().RemainingSeconds)

	require.NoError(t, h.engine.Resume())
	h.ticks(t, 5)
	assert.Equal(t, before-5, h.engine.Snapshot().RemainingSeconds)
}

func TestScenarioC_CreateFailureStaysIdle(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.sessions.createErr = errors.New("connection refused")

	task := h.task
	err := h.engine.Start(context.Background(), &task)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindRemoteCreate, apperrors.KindOf(err))
	snap := h.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.SessionID)
	assert.Equal(t, 3, snap.RemainingSeconds)
	assert.Zero(t, h.tasks.updateCount())
	assert.Zero(t, h.clock.ActiveTickers())
}

func TestScenarioD_ResetCancelsWithoutIncrement(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	sessionID := h.engine.Snapshot().SessionID
	h.ticks(t, 1)

	require.NoError(t, h.engine.Reset(context.Background()))

	assert.Equal(t, []model.SessionStatus{model.SessionCancelled}, h.sessions.finalizedAs(sessionID))
	assert.Equal(t, 1, h.tasks.get("task-1").CompletedPomodoros)
	assert.Zero(t, h.tasks.updateCount())
	snap := h.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 3, snap.RemainingSeconds)
	assert.Zero(t, h.clock.ActiveTickers())
}

func TestStart_WithoutTaskRejectedBeforeRemote(t *testing.T) {
	h := newHarness(t, shortConfig())

	err := h.engine.Start(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, &apperrors.Error{Kind: apperrors.KindValidation, Code: apperrors.CodeTaskRequired}))
	assert.Zero(t, h.sessions.createCount())
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestStart_CreatesWorkSessionRecord(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)

	require.Len(t, h.sessions.created, 1)
	created := h.sessions.created[0]
	assert.Equal(t, "task-1", created.TaskID)
	assert.Equal(t, 3, created.DurationSeconds)
	assert.Equal(t, model.SessionWork, created.SessionType)
	assert.Equal(t, h.clock.Now().UTC(), created.StartedAt)
	assert.Equal(t, StateRunning, h.engine.State())
	assert.Equal(t, 1, h.clock.ActiveTickers())
}

func TestStart_WhileActiveRejected(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)

	task := h.task
	err := h.engine.Start(context.Background(), &task)

	assert.Equal(t, apperrors.CodeSessionActive, apperrors.CodeOf(err))
	assert.Equal(t, 1, h.sessions.createCount())
	assert.Equal(t, 1, h.clock.ActiveTickers())
}

func TestStart_NotAuthenticatedPassesThrough(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.sessions.createErr = apperrors.NotAuthenticated("create session")

	task := h.task
	err := h.engine.Start(context.Background(), &task)

	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestStart_TimeoutIsRemoteCreateError(t *testing.T) {
	cfg := shortConfig()
	sessions := newFakeSessions()
	sessions.hang = true
	engine := New(sessions, newFakeTasks(), Options{Clock: NewFakeClock(time.Now()), Timeout: 20 * time.Millisecond, Config: &cfg})
	t.Cleanup(engine.Stop)

	task := model.Task{ID: "task-1"}
	err := engine.Start(context.Background(), &task)

	assert.Equal(t, apperrors.KindRemoteCreate, apperrors.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, engine.State())
}

func TestPauseResume_Idempotent(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)

	require.NoError(t, h.engine.Pause())
	require.NoError(t, h.engine.Pause())
	assert.Equal(t, StatePaused, h.engine.State())
	assert.Equal(t, 1, h.events.count(EventPaused))
	assert.Zero(t, h.clock.ActiveTickers())

	require.NoError(t, h.engine.Resume())
	require.NoError(t, h.engine.Resume())
	assert.Equal(t, StateRunning, h.engine.State())
	assert.Equal(t, 1, h.events.count(EventResumed))
	assert.Equal(t, 1, h.clock.ActiveTickers())

	assert.Equal(t, 1, h.sessions.createCount())
	assert.Zero(t, h.sessions.finalizeCount())
}

func TestPauseCompleteInIdle_NoActiveSession(t *testing.T) {
	h := newHarness(t, shortConfig())

	assert.Equal(t, apperrors.CodeNoActiveSession, apperrors.CodeOf(h.engine.Pause()))
	assert.Equal(t, apperrors.CodeNoActiveSession, apperrors.CodeOf(h.engine.Resume()))
	assert.Equal(t, apperrors.CodeNoActiveSession, apperrors.CodeOf(h.engine.Complete(context.Background())))
	assert.NoError(t, h.engine.Reset(context.Background()))
	assert.Zero(t, h.sessions.finalizeCount())
}

func TestComplete_FromPausedIncrementsOnce(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	require.NoError(t, h.engine.Pause())

	require.NoError(t, h.engine.Complete(context.Background()))

	assert.Equal(t, 2, h.tasks.get("task-1").CompletedPomodoros)
	assert.Equal(t, 4, h.tasks.get("task-1").EstimatedPomodoros)
	assert.Equal(t, StateIdle, h.engine.State())
	assert.Equal(t, 1, h.engine.Snapshot().CompletedWork)
}

func TestComplete_ConsecutiveSessionsUseUpdatedCount(t *testing.T) {
	h := newHarness(t, shortConfig())

	for i := 0; i < 2; i++ {
		h.task = h.tasks.get("task-1")
		h.start(t)
		require.NoError(t, h.engine.Complete(context.Background()))
	}

	assert.Equal(t, 3, h.tasks.get("task-1").CompletedPomodoros)
}

func TestComplete_FinalizeFailureStillGoesIdle(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	h.sessions.finalizeErr = errors.New("503 service unavailable")

	err := h.engine.Complete(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindRemoteFinalize, apperrors.KindOf(err))
	assert.True(t, apperrors.IsCritical(err))
	assert.Zero(t, h.tasks.updateCount())
	snap := h.engine.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.SessionID)
	assert.Equal(t, 3, snap.RemainingSeconds)

	ev, ok := h.events.last(EventFinalizeFailed)
	require.True(t, ok)
	assert.ErrorIs(t, ev.Err, err)

	h.ticks(t, 5)
	assert.Equal(t, 1, h.sessions.finalizeCount())
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestComplete_IncrementFailureIsReported(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	h.tasks.err = errors.New("timeout")

	err := h.engine.Complete(context.Background())

	assert.Equal(t, apperrors.KindRemoteFinalize, apperrors.KindOf(err))
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestReset_CancelFailureIsNonCritical(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	h.sessions.finalizeErr = errors.New("network down")

	err := h.engine.Reset(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindRemoteFinalize, apperrors.KindOf(err))
	assert.False(t, apperrors.IsCritical(err))
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestFinalizePending_BlocksOtherOperations(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	release := make(chan struct{})
	h.sessions.block = release

	done := make(chan error, 1)
	go func() { done <- h.engine.Complete(context.Background()) }()

	require.Eventually(t, func() bool { return h.engine.State() == StateCompleting }, time.Second, time.Millisecond)
	snap := h.engine.Snapshot()
	assert.Empty(t, snap.SessionID)
	assert.Zero(t, h.clock.ActiveTickers())

	task := h.task
	assert.Equal(t, apperrors.CodeOperationPending, apperrors.CodeOf(h.engine.Start(context.Background(), &task)))
	assert.Equal(t, apperrors.CodeOperationPending, apperrors.CodeOf(h.engine.Pause()))
	assert.Equal(t, apperrors.CodeOperationPending, apperrors.CodeOf(h.engine.Reset(context.Background())))
	assert.NoError(t, h.engine.tick(nil))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, h.engine.State())
	assert.Equal(t, 1, h.sessions.createCount())
}

func TestConfigure_WhileRunningAppliesOnNextStart(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)
	h.ticks(t, 1)

	next := shortConfig()
	next.WorkSeconds = 10
	require.NoError(t, h.engine.Configure(next))

	snap := h.engine.Snapshot()
	assert.Equal(t, 2, snap.RemainingSeconds)
	assert.Equal(t, 3, snap.DurationSeconds)

	require.NoError(t, h.engine.Reset(context.Background()))
	assert.Equal(t, 10, h.engine.Snapshot().RemainingSeconds)

	h.start(t)
	assert.Equal(t, 10, h.engine.Snapshot().RemainingSeconds)
	assert.Equal(t, 10, h.sessions.created[1].DurationSeconds)
}

func TestConfigure_RejectsInvalid(t *testing.T) {
	h := newHarness(t, shortConfig())

	err := h.engine.Configure(Config{WorkSeconds: 0, ShortBreakSeconds: 1, LongBreakSeconds: 1, LongBreakInterval: 1})

	assert.Equal(t, apperrors.CodeInvalidDuration, apperrors.CodeOf(err))
	assert.Equal(t, 3, h.engine.Snapshot().RemainingSeconds)
}

func TestStartBreak_ShortThenLong(t *testing.T) {
	h := newHarness(t, shortConfig())

	assert.Equal(t, apperrors.CodeTaskRequired, apperrors.CodeOf(h.engine.StartBreak(context.Background())))

	h.start(t)
	require.NoError(t, h.engine.Complete(context.Background()))
	require.NoError(t, h.engine.StartBreak(context.Background()))
	snap := h.engine.Snapshot()
	assert.Equal(t, model.SessionShortBreak, snap.SessionType)
	assert.Equal(t, 2, snap.RemainingSeconds)
	h.ticks(t, 2)
	assert.Equal(t, StateIdle, h.engine.State())
	assert.Equal(t, 1, h.tasks.updateCount())

	h.task = h.tasks.get("task-1")
	h.start(t)
	require.NoError(t, h.engine.Complete(context.Background()))
	require.NoError(t, h.engine.StartBreak(context.Background()))
	assert.Equal(t, model.SessionLongBreak, h.engine.Snapshot().SessionType)
	assert.Equal(t, 4, h.engine.Snapshot().RemainingSeconds)
}

func TestProgress_Clamped(t *testing.T) {
	assert.Zero(t, progress(0, 0))
	assert.Equal(t, 0.0, progress(10, 12))
	assert.Equal(t, 50.0, progress(10, 5))
	assert.Equal(t, 100.0, progress(10, -1))
}

func TestDriver_AdvanceCompletesOnce(t *testing.T) {
	h := newHarness(t, shortConfig())
	h.start(t)

	h.clock.Advance(10 * time.Second)

	require.Eventually(t, func() bool { return h.engine.State() == StateIdle }, time.Second, time.Millisecond)
	assert.Equal(t, 1, h.sessions.finalizeCount())
	assert.Equal(t, 2, h.tasks.get("task-1").CompletedPomodoros)
	assert.Zero(t, h.clock.ActiveTickers())
}

func TestDriver_NoTicksAfterReset(t *testing.T) {
	cfg := shortConfig()
	cfg.WorkSeconds = 60
	h := newHarness(t, cfg)
	h.start(t)

	h.clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return h.engine.Snapshot().RemainingSeconds == 58 }, time.Second, time.Millisecond)

	require.NoError(t, h.engine.Reset(context.Background()))
	ticksBefore := h.events.count(EventTick)

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, ticksBefore, h.events.count(EventTick))
	assert.Equal(t, 60, h.engine.Snapshot().RemainingSeconds)
}

func TestDriver_StaleDriverTicksIgnored(t *testing.T) {
	cfg := shortConfig()
	cfg.WorkSeconds = 60
	h := newHarness(t, cfg)
	h.start(t)

	h.engine.mu.Lock()
	current := h.engine.driver
	h.engine.mu.Unlock()
	require.NotNil(t, current)

	stale := &driver{stop: make(chan struct{})}
	require.NoError(t, h.engine.tick(stale))
	assert.Equal(t, 60, h.engine.Snapshot().RemainingSeconds)

	require.NoError(t, h.engine.tick(current))
	assert.Equal(t, 59, h.engine.Snapshot().RemainingSeconds)
}

func TestStop_NoFurtherTicksAndRejectsStart(t *testing.T) {
	cfg := shortConfig()
	cfg.WorkSeconds = 60
	h := newHarness(t, cfg)
	h.start(t)

	h.engine.Stop()
	h.engine.Stop()
	assert.Zero(t, h.clock.ActiveTickers())

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 60, h.engine.Snapshot().RemainingSeconds)

	task := h.task
	assert.Equal(t, apperrors.CodeEngineStopped, apperrors.CodeOf(h.engine.Start(context.Background(), &task)))
	assert.Equal(t, apperrors.CodeEngineStopped, apperrors.CodeOf(h.engine.Reset(context.Background())))
}
