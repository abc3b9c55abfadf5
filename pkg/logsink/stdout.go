package logsink

import (
	"fmt"
	"sync"
)

func init() {
	Register("stdout", func(_ map[string]string) (Sink, error) {
		return NewStdout(), nil
	})
}

// Stdout writes every entry to standard output, prefixed with the run and
// node id. It is the default sink used when no other delivery mechanism is
// configured.
type Stdout struct {
	mu sync.Mutex
}

// NewStdout constructs a Stdout sink.
func NewStdout() *Stdout {
	return &Stdout{}
}

func (s *Stdout) Broadcast(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Printf("[%s] run=%s node=%s %s\n", e.Level, e.RunID, e.NodeID, e.Line)
}
