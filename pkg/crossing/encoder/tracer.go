package encoder

import (
	"fmt"
	"io"
	"sync"
)

// RuleSummary describes one emitted rule group.
type RuleSummary struct {
	Rule      string
	Clauses   int
	Variables int
}

type Tracer interface {
	Trace(s RuleSummary)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ RuleSummary) {
}

// LoggingTracer writes one line per rule group to Writer. Lines from
// concurrent encodings are serialized.
type LoggingTracer struct {
	Writer io.Writer

	mu sync.Mutex
}

func (t *LoggingTracer) Trace(s RuleSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.Writer, "rule %s: %d clauses, %d variables\n", s.Rule, s.Clauses, s.Variables)
}
