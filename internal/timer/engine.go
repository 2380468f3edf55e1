// Package timer implements the Pomodoro session engine: a countdown state
// machine bound to a task whose sessions are persisted on a remote store.
//
// The engine owns at most one session and one one-second ticker. Remote calls
// are made without holding the engine lock; while one is outstanding the
// engine sits in a transient state (Starting, Completing or Resetting) and
// rejects every other transition. Local state always wins: once a finalize is
// attempted the session is dropped and the engine returns to Idle, whatever
// the remote outcome.
package timer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

const DefaultRemoteTimeout = 10 * time.Second

type SessionStore interface {
	Create(ctx context.Context, session model.NewSession) (string, error)
	Finalize(ctx context.Context, sessionID string, finalize model.SessionFinalize) error
}

type TaskUpdater interface {
	Update(ctx context.Context, taskID string, patch model.TaskPatch) (model.Task, error)
}

type Options struct {
	Clock  Clock
	Logger *zap.Logger
	// Timeout bounds every create and finalize call.
	Timeout time.Duration
	Config  *Config
}

type Engine struct {
	sessions SessionStore
	tasks    TaskUpdater
	clock    Clock
	logger   *zap.Logger
	timeout  time.Duration

	mu            sync.Mutex
	state         State
	cfg           Config
	session       *activeSession
	selected      *model.Task
	remaining     int
	completedWork int
	driver        *driver
	stopped       bool
	listeners     []Listener
}

type activeSession struct {
	id          string
	task        model.Task
	sessionType model.SessionType
	duration    int
}

type driver struct {
	ticker Ticker
	stop   chan struct{}
}

func New(sessions SessionStore, tasks TaskUpdater, opts Options) *Engine {
	e := &Engine{
		sessions: sessions,
		tasks:    tasks,
		clock:    opts.Clock,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
		cfg:      DefaultConfig(),
	}
	if e.clock == nil {
		e.clock = RealClock()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.timeout <= 0 {
		e.timeout = DefaultRemoteTimeout
	}
	if opts.Config != nil {
		e.cfg = *opts.Config
	}
	e.remaining = e.cfg.WorkSeconds
	return e
}

// OnEvent registers a listener. Listeners run on the goroutine that caused
// the transition, after the engine lock is released.
func (e *Engine) OnEvent(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Configure stores the configuration used by the next Start. An in-flight
// session keeps its duration and remaining time.
func (e *Engine) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	e.cfg = cfg
	if e.state == StateIdle {
		e.remaining = cfg.WorkSeconds
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventConfigured, Snapshot: snap})
	return nil
}

func (e *Engine) Start(ctx context.Context, task *model.Task) error {
	const op = "start session"
	if task == nil {
		return apperrors.Validation(op, apperrors.CodeTaskRequired, "select a task before starting a session")
	}
	if task.ID == "" {
		return apperrors.Validation(op, apperrors.CodeInvalidTask, "selected task has no id")
	}
	return e.begin(ctx, op, *task, model.SessionWork)
}

// StartBreak opens a break session bound to the last selected task. A long
// break follows every LongBreakInterval completed work sessions.
func (e *Engine) StartBreak(ctx context.Context) error {
	const op = "start break"

	e.mu.Lock()
	selected := e.selected
	kind := e.cfg.breakAfter(e.completedWork)
	e.mu.Unlock()

	if selected == nil {
		return apperrors.Validation(op, apperrors.CodeTaskRequired, "select a task before starting a break")
	}
	return e.begin(ctx, op, *selected, kind)
}

func (e *Engine) begin(ctx context.Context, op string, task model.Task, kind model.SessionType) error {
	e.mu.Lock()
	if err := e.requireIdleLocked(op); err != nil {
		e.mu.Unlock()
		return err
	}
	duration := e.cfg.durationFor(kind)
	e.state = StateStarting
	e.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	sessionID, err := e.sessions.Create(callCtx, model.NewSession{
		TaskID:          task.ID,
		DurationSeconds: duration,
		SessionType:     kind,
		StartedAt:       e.clock.Now().UTC(),
	})
	cancel()

	e.mu.Lock()
	if err != nil {
		e.state = StateIdle
		e.remaining = e.cfg.WorkSeconds
		e.mu.Unlock()
		if apperrors.KindOf(err) == apperrors.KindNotAuthenticated {
			return err
		}
		return apperrors.RemoteCreate(op, err)
	}

	if e.stopped {
		e.state = StateIdle
		e.mu.Unlock()
		e.cancelOrphan(sessionID)
		return apperrors.Validation(op, apperrors.CodeEngineStopped, "timer was stopped")
	}

	e.session = &activeSession{id: sessionID, task: task, sessionType: kind, duration: duration}
	e.selected = &task
	e.remaining = duration
	e.state = StateRunning
	e.startDriverLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.logger.Info("session started",
		zap.String("session_id", sessionID),
		zap.String("task_id", task.ID),
		zap.String("session_type", string(kind)),
		zap.Int("duration_seconds", duration),
	)
	e.emit(Event{Type: EventStarted, Snapshot: snap})
	return nil
}

func (e *Engine) Pause() error {
	const op = "pause session"

	e.mu.Lock()
	switch {
	case e.stopped:
		e.mu.Unlock()
		return errStopped(op)
	case e.state == StatePaused:
		e.mu.Unlock()
		return nil
	case e.state.pending():
		e.mu.Unlock()
		return errPending(op)
	case e.state != StateRunning:
		e.mu.Unlock()
		return errNoSession(op)
	}
	e.stopDriverLocked()
	e.state = StatePaused
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventPaused, Snapshot: snap})
	return nil
}

func (e *Engine) Resume() error {
	const op = "resume session"

	e.mu.Lock()
	switch {
	case e.stopped:
		e.mu.Unlock()
		return errStopped(op)
	case e.state == StateRunning:
		e.mu.Unlock()
		return nil
	case e.state.pending():
		e.mu.Unlock()
		return errPending(op)
	case e.state != StatePaused:
		e.mu.Unlock()
		return errNoSession(op)
	}
	e.state = StateRunning
	e.startDriverLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.emit(Event{Type: EventResumed, Snapshot: snap})
	return nil
}

// Complete finalizes the active session as completed. A finished work session
// increments the bound task's completed count by one.
func (e *Engine) Complete(ctx context.Context) error {
	const op = "complete session"

	e.mu.Lock()
	if err := e.requireActiveLocked(op); err != nil {
		e.mu.Unlock()
		return err
	}
	return e.finishLocked(ctx, op, model.SessionCompleted)
}

// Reset cancels the active session without touching task counters. In Idle it
// only restores the configured work duration.
func (e *Engine) Reset(ctx context.Context) error {
	const op = "reset session"

	e.mu.Lock()
	if e.state == StateIdle && !e.stopped {
		e.remaining = e.cfg.WorkSeconds
		e.mu.Unlock()
		return nil
	}
	if err := e.requireActiveLocked(op); err != nil {
		e.mu.Unlock()
		return err
	}
	return e.finishLocked(ctx, op, model.SessionCancelled)
}

// Stop halts the tick driver and disables the engine. It does not finalize an
// active session; call Reset first for that. Stop is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.stopDriverLocked()
}

// tick advances a running session by one second; reaching zero completes it.
// Only the current driver may tick while one runs. A nil driver is a manual
// step and is only used in tests.
func (e *Engine) tick(from *driver) error {
	e.mu.Lock()
	if e.stopped || e.state != StateRunning || (from != nil && from != e.driver) {
		e.mu.Unlock()
		return nil
	}

	if e.remaining > 0 {
		e.remaining--
	}
	if e.remaining > 0 {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.emit(Event{Type: EventTick, Snapshot: snap})
		return nil
	}
	return e.finishLocked(context.Background(), "complete session", model.SessionCompleted)
}

// finishLocked must be called with e.mu held and an active session; it
// releases the lock.
func (e *Engine) finishLocked(ctx context.Context, op string, status model.SessionStatus) error {
	if status == model.SessionCompleted {
		e.state = StateCompleting
	} else {
		e.state = StateResetting
	}
	e.stopDriverLocked()
	session := *e.session
	e.session = nil
	e.mu.Unlock()

	finalize := model.SessionFinalize{Status: status}
	if status == model.SessionCompleted {
		completedAt := e.clock.Now().UTC()
		finalize.CompletedAt = &completedAt
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	err := e.sessions.Finalize(callCtx, session.id, finalize)
	cancel()

	var finishErr error
	var updated *model.Task
	switch {
	case err != nil && status == model.SessionCancelled:
		finishErr = apperrors.RemoteFinalize(op, err, false)
		e.logger.Warn("remote cancel failed after local reset",
			zap.String("session_id", session.id), zap.Error(err))
	case err != nil:
		finishErr = apperrors.RemoteFinalize(op, err, true)
		e.logger.Error("remote finalize failed",
			zap.String("session_id", session.id), zap.Error(err))
	case status == model.SessionCompleted && session.sessionType == model.SessionWork:
		updated, finishErr = e.incrementTask(ctx, op, session)
	}

	e.mu.Lock()
	if status == model.SessionCompleted && session.sessionType == model.SessionWork {
		e.completedWork++
	}
	if updated != nil {
		e.selected = updated
	}
	e.state = StateIdle
	e.remaining = e.cfg.WorkSeconds
	snap := e.snapshotLocked()
	e.mu.Unlock()

	evType := EventCompleted
	if status == model.SessionCancelled {
		evType = EventCancelled
	}
	e.logger.Info("session finished",
		zap.String("session_id", session.id),
		zap.String("status", string(status)),
		zap.Bool("remote_ok", finishErr == nil),
	)
	e.emit(Event{Type: evType, Snapshot: snap, Err: finishErr})
	if finishErr != nil {
		e.emit(Event{Type: EventFinalizeFailed, Snapshot: snap, Err: finishErr})
	}
	return finishErr
}

func (e *Engine) incrementTask(ctx context.Context, op string, session activeSession) (*model.Task, error) {
	next := session.task.CompletedPomodoros + 1

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	task, err := e.tasks.Update(callCtx, session.task.ID, model.TaskPatch{CompletedPomodoros: &next})
	if err != nil {
		e.logger.Error("increment completed pomodoros failed",
			zap.String("task_id", session.task.ID), zap.Error(err))
		return nil, apperrors.RemoteFinalize(op, err, true)
	}
	return &task, nil
}

func (e *Engine) cancelOrphan(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	if err := e.sessions.Finalize(ctx, sessionID, model.SessionFinalize{Status: model.SessionCancelled}); err != nil {
		e.logger.Warn("cancel session created after stop", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (e *Engine) startDriverLocked() {
	e.stopDriverLocked()
	d := &driver{ticker: e.clock.NewTicker(time.Second), stop: make(chan struct{})}
	e.driver = d
	go e.run(d)
}

func (e *Engine) stopDriverLocked() {
	if e.driver == nil {
		return
	}
	close(e.driver.stop)
	e.driver.ticker.Stop()
	e.driver = nil
}

func (e *Engine) run(d *driver) {
	for {
		select {
		case <-d.stop:
			return
		case <-d.ticker.C():
			if err := e.tick(d); err != nil && apperrors.IsCritical(err) {
				e.logger.Error("auto-complete failed", zap.Error(err))
			}
		}
	}
}

func (e *Engine) requireIdleLocked(op string) error {
	switch {
	case e.stopped:
		return errStopped(op)
	case e.state.pending():
		return errPending(op)
	case e.state != StateIdle:
		return apperrors.Validation(op, apperrors.CodeSessionActive, "a session is already in progress")
	}
	return nil
}

func (e *Engine) requireActiveLocked(op string) error {
	switch {
	case e.stopped:
		return errStopped(op)
	case e.state.pending():
		return errPending(op)
	case e.state != StateRunning && e.state != StatePaused:
		return errNoSession(op)
	}
	return nil
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:            e.state,
		RemainingSeconds: e.remaining,
		DurationSeconds:  e.cfg.WorkSeconds,
		CompletedWork:    e.completedWork,
		Config:           e.cfg,
	}
	if e.selected != nil {
		snap.TaskID = e.selected.ID
	}
	if e.session != nil {
		snap.SessionID = e.session.id
		snap.TaskID = e.session.task.ID
		snap.SessionType = e.session.sessionType
		snap.DurationSeconds = e.session.duration
	}
	snap.Progress = progress(snap.DurationSeconds, snap.RemainingSeconds)
	return snap
}

func (e *Engine) emit(ev Event) {
	e.mu.Lock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

func errStopped(op string) error {
	return apperrors.Validation(op, apperrors.CodeEngineStopped, "timer was stopped")
}

func errPending(op string) error {
	return apperrors.Validation(op, apperrors.CodeOperationPending, "wait for the current session request to finish")
}

func errNoSession(op string) error {
	return apperrors.Validation(op, apperrors.CodeNoActiveSession, "no session is in progress")
}
