package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupervisorRegisterAndCancel(t *testing.T) {
	s := NewSupervisor()
	canceled := false
	ar := s.register("p1", 1, func() { canceled = true })
	assert.NotNil(t, ar)

	assert.True(t, s.Cancel("p1", 1))
	assert.True(t, canceled)
}

func TestSupervisorCancelUnknownReturnsFalse(t *testing.T) {
	s := NewSupervisor()
	assert.False(t, s.Cancel("p1", 1))
}

func TestSupervisorLiveStatusAndOutcomes(t *testing.T) {
	s := NewSupervisor()
	s.register("p1", 1, func() {})

	status, outcomes, ok := s.LiveStatus("p1", 1)
	assert.True(t, ok)
	assert.Equal(t, "running", status)
	assert.Empty(t, outcomes)

	s.recordOutcome("p1", 1, NodeOutcome{NodeID: "a", Status: "success"})
	s.setStatus("p1", 1, "completed")

	status, outcomes, ok = s.LiveStatus("p1", 1)
	assert.True(t, ok)
	assert.Equal(t, "completed", status)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, "a", outcomes[0].NodeID)
}

func TestSupervisorUnregisterDropsState(t *testing.T) {
	s := NewSupervisor()
	s.register("p1", 1, func() {})
	s.unregister("p1", 1)

	_, _, ok := s.LiveStatus("p1", 1)
	assert.False(t, ok)
}
