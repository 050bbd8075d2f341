package export

import (
	"errors"
	"fmt"
)

// State is a step of an export run.
type State string

const (
	StateIdle       State = "idle"
	StateCapturing  State = "capturing"
	StateEncoding   State = "encoding"
	StatePaginating State = "paginating"
	StateSaved      State = "saved"
	StateFailed     State = "failed"
)

var ErrIllegalTransition = errors.New("illegal export state transition")

var transitions = map[State][]State{
	StateIdle:       {StateCapturing, StateFailed},
	StateCapturing:  {StateEncoding, StateFailed},
	StateEncoding:   {StatePaginating, StateFailed},
	StatePaginating: {StateSaved, StateFailed},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSaved || s == StateFailed
}

// Tracker walks the export state machine and keeps the visited states.
type Tracker struct {
	state   State
	history []State
}

func NewTracker() *Tracker {
	return &Tracker{state: StateIdle, history: []State{StateIdle}}
}

func (t *Tracker) State() State { return t.state }

func (t *Tracker) History() []State {
	out := make([]State, len(t.history))
	copy(out, t.history)
	return out
}

// Transition moves to next or returns ErrIllegalTransition.
func (t *Tracker) Transition(next State) error {
	for _, allowed := range transitions[t.state] {
		if allowed == next {
			t.state = next
			t.history = append(t.history, next)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.state, next)
}
