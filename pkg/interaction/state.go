// Package interaction tracks which stage, if any, is the target of a pending
// promotion-style action in a pipeline view.
package interaction

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/pipeview/pkg/domain"
)

// Action is the kind of pending action.
type Action string

const (
	// ActionPromote promotes freight into a single selected stage.
	ActionPromote Action = "promote"
	// ActionPromoteSubscribers fans out to every direct subscriber of the
	// selected stage, defaulting to that stage's current freight.
	ActionPromoteSubscribers Action = "promoteSubscribers"
	// ActionManualApproval approves the selected freight for the next stage
	// clicked.
	ActionManualApproval Action = "manualApproval"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionPromote, ActionPromoteSubscribers, ActionManualApproval:
		return true
	default:
		return false
	}
}

// Selection is a copy of the current state. The zero value is idle.
type Selection struct {
	Action  Action `json:"action,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Freight string `json:"freight,omitempty"`
}

// Idle reports whether nothing is selected.
func (s Selection) Idle() bool {
	return s.Action == ""
}

// Approval is the mutation committed by clicking a stage in manual approval mode.
type Approval struct {
	Stage   string
	Freight string
}

// State is the interaction state of one view session. It is safe for
// concurrent use.
type State struct {
	mu  sync.RWMutex
	cur Selection
}

// New returns an idle state.
func New() *State {
	return &State{}
}

// Select moves to selecting. Selecting the stage that is already selected
// toggles back to idle instead. It returns the resulting selection.
func (s *State) Select(action Action, stage, freight string) (Selection, error) {
	if !action.Valid() {
		return Selection{}, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cur.Idle() && stage != "" && s.cur.Stage == stage {
		s.cur = Selection{}
		return s.cur, nil
	}
	s.cur = Selection{Action: action, Stage: stage, Freight: freight}
	return s.cur, nil
}

// Clear returns to idle from any state.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Selection{}
}

// Current returns a copy of the current selection.
func (s *State) Current() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// IsPromoting reports whether an action is pending.
func (s *State) IsPromoting() bool {
	return !s.Current().Idle()
}

// IsFaded reports whether stage is outside the target set of the pending
// action. subscribers maps a stage name to its direct subscribers.
func (s *State) IsFaded(stage string, subscribers map[string][]string) bool {
	return s.Current().IsFaded(stage, subscribers)
}

// IsFaded is the predicate behind State.IsFaded.
func (sel Selection) IsFaded(stage string, subscribers map[string][]string) bool {
	switch sel.Action {
	case ActionPromote:
		return sel.Stage != stage
	case ActionPromoteSubscribers:
		return !slices.Contains(subscribers[sel.Stage], stage)
	default:
		return false
	}
}

// Click handles a click on a stage. In manual approval mode it returns the
// approval to commit; the state is left untouched until the caller reports
// success through Clear.
func (s *State) Click(stage string) (Approval, bool, error) {
	cur := s.Current()
	if cur.Action != ActionManualApproval {
		return Approval{}, false, nil
	}
	if cur.Freight == "" {
		return Approval{}, false, domain.ErrNoFreightSelected
	}
	return Approval{Stage: stage, Freight: cur.Freight}, true, nil
}
