package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTokenIsOneTimeUse(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("github", "agent")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	require.NoError(t, sm.ValidateState(state, "github", "agent"))
	assert.Error(t, sm.ValidateState(state, "github", "agent"), "second use must fail")
}

func TestStateTokenProviderMismatch(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("github", "agent")
	require.NoError(t, err)

	assert.Error(t, sm.ValidateState(state, "google", "agent"))
}

func TestStateTokenUserAgentMismatchIsWarnOnly(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("google", "agent-a")
	require.NoError(t, err)

	assert.NoError(t, sm.ValidateState(state, "google", "agent-b"))
}

func TestEmptyAndUnknownStatesRejected(t *testing.T) {
	sm := NewStateManager()

	assert.Error(t, sm.ValidateState("", "github", "agent"))
	assert.Error(t, sm.ValidateState("never-issued", "github", "agent"))
}
