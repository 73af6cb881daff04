package workflows

// StateMachine enforces status transitions for a single entity kind
type StateMachine struct {
	allowedTransitions map[string][]string
	terminal           map[string]bool
}

// NewStateMachine creates a state machine from an allowed-transition table.
// Statuses that map to no successors are terminal.
func NewStateMachine(transitions map[string][]string) *StateMachine {
	sm := &StateMachine{
		allowedTransitions: make(map[string][]string, len(transitions)),
		terminal:           make(map[string]bool),
	}
	for from, to := range transitions {
		sm.allowedTransitions[from] = append([]string(nil), to...)
		if len(to) == 0 {
			sm.terminal[from] = true
		}
	}
	return sm
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return append([]string(nil), allowed...)
}

// IsTerminal reports whether no transition leaves the status
func (sm *StateMachine) IsTerminal(status string) bool {
	return sm.terminal[status]
}

// Knows reports whether the status appears in the table
func (sm *StateMachine) Knows(status string) bool {
	_, ok := sm.allowedTransitions[status]
	return ok
}
