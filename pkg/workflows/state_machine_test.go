package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"DRAFT":     {"SUBMITTED"},
		"SUBMITTED": {"APPROVED", "REJECTED"},
		"APPROVED":  {},
		"REJECTED":  {"DRAFT"},
	})
}

func TestCanTransition(t *testing.T) {
	sm := newTestMachine()

	assert.True(t, sm.CanTransition("DRAFT", "SUBMITTED"))
	assert.True(t, sm.CanTransition("SUBMITTED", "REJECTED"))
	assert.False(t, sm.CanTransition("DRAFT", "APPROVED"))
	assert.False(t, sm.CanTransition("APPROVED", "DRAFT"))
	assert.False(t, sm.CanTransition("UNKNOWN", "DRAFT"))
}

func TestTerminalStatuses(t *testing.T) {
	sm := newTestMachine()

	assert.True(t, sm.IsTerminal("APPROVED"))
	assert.False(t, sm.IsTerminal("REJECTED"))
	assert.False(t, sm.IsTerminal("UNKNOWN"))
	assert.True(t, sm.Knows("APPROVED"))
	assert.False(t, sm.Knows("UNKNOWN"))
}

func TestGetAllowedTransitionsReturnsCopy(t *testing.T) {
	sm := newTestMachine()

	allowed := sm.GetAllowedTransitions("SUBMITTED")
	assert.ElementsMatch(t, []string{"APPROVED", "REJECTED"}, allowed)

	allowed[0] = "MUTATED"
	assert.ElementsMatch(t, []string{"APPROVED", "REJECTED"}, sm.GetAllowedTransitions("SUBMITTED"))
	assert.Empty(t, sm.GetAllowedTransitions("UNKNOWN"))
}
