package exec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func frame(streamType byte, payload string) []byte {
	b := []byte(payload)
	header := []byte{streamType, 0, 0, 0,
		byte(len(b) >> 24), byte(len(b) >> 16), byte(len(b) >> 8), byte(len(b))}
	return append(header, b...)
}

func TestStreamMultiplexedEmitsCompleteLines(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(frame(1, "hello\nworld\n"))
	buf.Write(frame(2, "partial"))
	buf.Write(frame(2, " line\n"))

	var lines []string
	streamMultiplexed(&buf, func(line string) { lines = append(lines, line) })

	assert.Equal(t, []string{"hello", "world", "partial line"}, lines)
}

func TestStreamMultiplexedFlushesTrailingPartialLine(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(frame(1, "no newline at end"))

	var lines []string
	streamMultiplexed(&buf, func(line string) { lines = append(lines, line) })

	assert.Equal(t, []string{"no newline at end"}, lines)
}

func TestStreamMultiplexedNilCallback(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(frame(1, "ignored\n"))
	assert.NotPanics(t, func() { streamMultiplexed(&buf, nil) })
}
