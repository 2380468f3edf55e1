package timer

import "github.com/MAYANKpandey14/do-it-with-ease/internal/model"

type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StatePaused
	StateCompleting
	StateResetting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleting:
		return "completing"
	case StateResetting:
		return "resetting"
	default:
		return "unknown"
	}
}

// pending reports whether a remote call owns the engine.
func (s State) pending() bool {
	return s == StateStarting || s == StateCompleting || s == StateResetting
}

type Snapshot struct {
	State            State
	SessionID        string
	TaskID           string
	SessionType      model.SessionType
	DurationSeconds  int
	RemainingSeconds int
	Progress         float64
	CompletedWork    int
	Config           Config
}

type EventType string

const (
	EventStarted        EventType = "started"
	EventTick           EventType = "tick"
	EventPaused         EventType = "paused"
	EventResumed        EventType = "resumed"
	EventCompleted      EventType = "completed"
	EventCancelled      EventType = "cancelled"
	EventFinalizeFailed EventType = "finalize_failed"
	EventConfigured     EventType = "configured"
)

// Event is delivered to listeners after the transition it describes.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Err      error
}

type Listener func(Event)

func progress(duration, remaining int) float64 {
	if duration <= 0 {
		return 0
	}
	p := float64(duration-remaining) / float64(duration) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
