package exec

import (
	"time"

	"github.com/fluidize-dev/fluidize-engine/pkg/logsink"
)

// LineStreamer adapts a stream of output lines for one (run_id, node_id)
// into logsink.Entry values, tagging a start and completion message the
// way the reference implementation's execute_with_logging does:
// "Starting: <description>", one INFO entry per output line, then either
// "Completed: <description>" or an ERROR line naming the failure.
type LineStreamer struct {
	sink   logsink.Sink
	runID  string
	nodeID string
}

// NewLineStreamer constructs a streamer that writes to sink.
func NewLineStreamer(sink logsink.Sink, runID, nodeID string) *LineStreamer {
	return &LineStreamer{sink: sink, runID: runID, nodeID: nodeID}
}

// Start emits the "Starting: <description>" marker line.
func (s *LineStreamer) Start(description string) {
	s.emit(logsink.LevelInfo, "Starting: "+description)
}

// Line emits a single line of process output at INFO level.
func (s *LineStreamer) Line(line string) {
	s.emit(logsink.LevelInfo, line)
}

// Complete emits either a success or failure marker line depending on ok,
// returning the (message, ok) pair C8's contract specifies.
func (s *LineStreamer) Complete(description string, ok bool, failureDetail string) (string, bool) {
	if ok {
		msg := "Completed: " + description
		s.emit(logsink.LevelInfo, msg)
		return "success", true
	}

	msg := "failure: " + failureDetail
	s.emit(logsink.LevelError, msg)
	return msg, false
}

func (s *LineStreamer) emit(level logsink.Level, line string) {
	s.sink.Broadcast(logsink.Entry{
		RunID:     s.runID,
		NodeID:    s.nodeID,
		Line:      line,
		Level:     level,
		Timestamp: time.Now(),
	})
}
