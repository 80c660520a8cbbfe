package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []Status
		wantErr bool
	}{
		{"bootstrap success", []Status{StatusLoading, StatusAuthenticated}, false},
		{"bootstrap failure", []Status{StatusLoading, StatusAnonymous}, false},
		{"login from anonymous", []Status{StatusAnonymous, StatusAuthenticated}, false},
		{"logout", []Status{StatusAuthenticated, StatusAnonymous}, false},
		{"login without bootstrap", []Status{StatusAuthenticated}, false},
		{"self transition", []Status{StatusLoading, StatusLoading}, false},
		{"authenticated cannot reload", []Status{StatusAuthenticated, StatusLoading}, true},
		{"nothing returns to unknown", []Status{StatusAnonymous, StatusUnknown}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			var err error
			for _, s := range tt.path {
				if err = m.Transition(s); err != nil {
					break
				}
			}
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path[len(tt.path)-1], m.Current())
		})
	}
}

func TestMachine_Listeners(t *testing.T) {
	m := NewMachine()

	var seen []string
	m.OnTransition(func(from, to Status) {
		seen = append(seen, from.String()+"->"+to.String())
	})

	require.NoError(t, m.Transition(StatusLoading))
	require.NoError(t, m.Transition(StatusLoading))
	require.NoError(t, m.Transition(StatusAuthenticated))
	require.Error(t, m.Transition(StatusUnknown))

	assert.Equal(t, []string{"unknown->loading", "loading->authenticated"}, seen)
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{From: StatusAuthenticated, To: StatusUnknown}
	assert.Equal(t, "invalid session status transition authenticated -> unknown", err.Error())
	assert.Equal(t, "status(9)", Status(9).String())
}
