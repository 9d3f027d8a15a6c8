package search

import (
	"fmt"
	"io"

	"github.com/tourney/sts/pkg/tournament"
)

// Position is the state of a search right after a probe.
type Position interface {
	Instance() tournament.Instance
	// Interval is the range of bounds that was open when the probe
	// was made.
	Interval() (low, high int)
	Best() (bound int, ok bool)
	Last() Probe
}

type Tracer interface {
	Trace(p Position)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Position) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p Position) {
	last := p.Last()
	fmt.Fprintf(t.Writer, "---\n%s probe:\n", p.Instance())
	if last.Bound == NoBound {
		fmt.Fprintf(t.Writer, "- unbounded: %s\n", last.Status)
	} else {
		fmt.Fprintf(t.Writer, "- bound %d: %s\n", last.Bound, last.Status)
	}
	if last.Err != nil {
		fmt.Fprintf(t.Writer, "- error: %v\n", last.Err)
	}
	low, high := p.Interval()
	fmt.Fprintf(t.Writer, "Interval: [%d, %d]\n", low, high)
	if b, ok := p.Best(); ok {
		fmt.Fprintf(t.Writer, "Best: %d\n", b)
	} else {
		fmt.Fprintf(t.Writer, "Best: none\n")
	}
}
