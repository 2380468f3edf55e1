package timer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

type fakeSessions struct {
	mu        sync.Mutex
	nextID    int
	created   []model.NewSession
	finalized map[string][]model.SessionFinalize

	createErr   error
	finalizeErr error
	// block, when set, holds Finalize until it is closed or ctx ends.
	block chan struct{}
	// hang makes Create wait for ctx to end.
	hang bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{finalized: map[string][]model.SessionFinalize{}}
}

func (f *fakeSessions) Create(ctx context.Context, session model.NewSession) (string, error) {
	if f.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	f.created = append(f.created, session)
	return fmt.Sprintf("session-%d", f.nextID), nil
}

func (f *fakeSessions) Finalize(ctx context.Context, sessionID string, finalize model.SessionFinalize) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized[sessionID] = append(f.finalized[sessionID], finalize)
	return f.finalizeErr
}

func (f *fakeSessions) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeSessions) finalizeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, calls := range f.finalized {
		n += len(calls)
	}
	return n
}

func (f *fakeSessions) finalizedAs(sessionID string) []model.SessionStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.SessionStatus
	for _, call := range f.finalized[sessionID] {
		out = append(out, call.Status)
	}
	return out
}

type fakeTasks struct {
	mu      sync.Mutex
	tasks   map[string]model.Task
	updates int
	err     error
}

func newFakeTasks(tasks ...model.Task) *fakeTasks {
	f := &fakeTasks{tasks: map[string]model.Task{}}
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeTasks) Update(_ context.Context, taskID string, patch model.TaskPatch) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.err != nil {
		return model.Task{}, f.err
	}
	task, ok := f.tasks[taskID]
	if !ok {
		return model.Task{}, fmt.Errorf("task %s not found", taskID)
	}
	if patch.CompletedPomodoros != nil {
		task.CompletedPomodoros = *patch.CompletedPomodoros
	}
	f.tasks[taskID] = task
	return task, nil
}

func (f *fakeTasks) get(id string) model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

func (f *fakeTasks) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

type harness struct {
	engine   *Engine
	clock    *FakeClock
	sessions *fakeSessions
	tasks    *fakeTasks
	events   *eventRecorder
	task     model.Task
}

func shortConfig() Config {
	return Config{WorkSeconds: 3, ShortBreakSeconds: 2, LongBreakSeconds: 4, LongBreakInterval: 2}
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	task := model.Task{ID: "task-1", Title: "Write report", EstimatedPomodoros: 4, CompletedPomodoros: 1}
	h := &harness{
		clock:    NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)),
		sessions: newFakeSessions(),
		tasks:    newFakeTasks(task),
		events:   &eventRecorder{},
		task:     task,
	}
	h.engine = New(h.sessions, h.tasks, Options{Clock: h.clock, Timeout: time.Second, Config: &cfg})
	h.engine.OnEvent(h.events.record)
	t.Cleanup(h.engine.Stop)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	task := h.task
	require.NoError(t, h.engine.Start(context.Background(), &task))
}

func (h *harness) ticks(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, h.engine.tick(nil))
	}
}
