package logsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownSink(t *testing.T) {
	_, err := New("does-not-exist", nil)
	require.Error(t, err)
}

func TestStdoutSinkRegistered(t *testing.T) {
	s, err := New("stdout", nil)
	require.NoError(t, err)
	assert.NotNil(t, s)

	// Broadcasting an entry without a timestamp must not panic.
	s.Broadcast(Entry{RunID: "r1", NodeID: "n1", Line: "hello", Level: LevelInfo})
}
