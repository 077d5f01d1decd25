package publish

import (
	"errors"
	"sync"
)

// ErrNotDismissable is returned when the modal is dismissed while a publish is being narrated
var ErrNotDismissable = errors.New("modal can't be dismissed while sending")

// Phase is the visual state of the publish modal
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseSending Phase = "sending"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// ModalState is what the publish modal shows
type ModalState struct {
	RunID       string   `json:"run_id"`
	Phase       Phase    `json:"phase"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	AssetName   string   `json:"asset_name"`
	Lines       []string `json:"lines"`
	Dismissable bool     `json:"dismissable"`
	Open        bool     `json:"open"`
}

// Terminal reports whether the run shown has finished
func (s ModalState) Terminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseError
}

// EventType tells what changed in the modal
type EventType string

const (
	EventReset   EventType = "reset"
	EventLine    EventType = "line"
	EventDone    EventType = "done"
	EventDismiss EventType = "dismiss"
)

// Event is a modal change delivered to subscribers
type Event struct {
	Type  EventType  `json:"type"`
	Line  string     `json:"line,omitempty"`
	State ModalState `json:"state"`
}

// Modal is the single publish modal of the console. Every run resets and reuses it,
// changes coming from a superseded run are dropped.
type Modal struct {
	mu      sync.Mutex
	state   ModalState
	subs    map[int]chan Event
	nextSub int
}

// NewModal makes a closed, idle modal
func NewModal() *Modal {
	return &Modal{state: ModalState{Phase: PhaseIdle, Dismissable: true}, subs: map[int]chan Event{}}
}

// Snapshot returns a copy of the current state
func (m *Modal) Snapshot() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyState()
}

// Subscribe returns a channel of modal events and a func to stop the subscription.
// Slow subscribers lose events rather than block the run, the state in each event is complete.
func (m *Modal) Subscribe(buf int) (events <-chan Event, unsubscribe func()) {
	if buf <= 0 {
		buf = 32
	}
	ch := make(chan Event, buf)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Dismiss closes the modal, refused while sending
func (m *Modal) Dismiss() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Dismissable {
		return ErrNotDismissable
	}
	m.state.Open = false
	m.broadcast(Event{Type: EventDismiss, State: m.copyState()})
	return nil
}

func (m *Modal) reset(runID string, subj Subject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = ModalState{
		RunID:       runID,
		Phase:       PhaseSending,
		Title:       "Publishing News",
		Subtitle:    "Sending to terminal...",
		AssetName:   subj.AssetName,
		Lines:       []string{"Initializing connection..."},
		Dismissable: false,
		Open:        true,
	}
	m.broadcast(Event{Type: EventReset, State: m.copyState()})
}

// addLine appends a terminal line if runID is still the current run
func (m *Modal) addLine(runID, line string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.RunID != runID {
		return false
	}
	m.state.Lines = append(m.state.Lines, line)
	m.broadcast(Event{Type: EventLine, Line: line, State: m.copyState()})
	return true
}

// finish moves the current run to its terminal state and enables dismissal
func (m *Modal) finish(runID string, phase Phase, title, subtitle, line string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.RunID != runID {
		return false
	}
	m.state.Lines = append(m.state.Lines, line)
	m.state.Phase = phase
	m.state.Title = title
	m.state.Subtitle = subtitle
	m.state.Dismissable = true
	m.broadcast(Event{Type: EventDone, Line: line, State: m.copyState()})
	return true
}

// broadcast must be called with the lock held
func (m *Modal) broadcast(ev Event) {
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Modal) copyState() ModalState {
	res := m.state
	res.Lines = make([]string, len(m.state.Lines))
	copy(res.Lines, m.state.Lines)
	return res
}
