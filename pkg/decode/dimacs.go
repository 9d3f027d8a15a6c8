package decode

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/solver"
)

// Output is the verdict and model printed by a DIMACS-speaking SAT or
// MaxSAT solver.
type Output struct {
	Status solver.Status
	// Optimum is set by MaxSAT solvers that proved their last cost.
	Optimum bool
	// Cost is the last "o" line, or -1 if there was none.
	Cost   int
	values map[int]bool
}

// Value reports the value of DIMACS variable id. Unlisted variables
// are false.
func (o *Output) Value(id atoms.ID) bool {
	return o.values[int(id)]
}

// ParseDIMACS reads solver output in the competition format:
//
//	c comment
//	s SATISFIABLE | UNSATISFIABLE | OPTIMUM FOUND | UNKNOWN
//	o 3
//	v 1 -2 3 ... 0
func ParseDIMACS(r io.Reader) (*Output, error) {
	out := &Output{Cost: -1, values: make(map[int]bool)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	seen := false
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "c":
		case "s":
			seen = true
			switch strings.Join(fields[1:], " ") {
			case "SATISFIABLE":
				out.Status = solver.Sat
			case "OPTIMUM FOUND":
				out.Status, out.Optimum = solver.Sat, true
			case "UNSATISFIABLE":
				out.Status = solver.Unsat
			case "UNKNOWN":
				out.Status = solver.Unknown
			default:
				return nil, malformed("line %d: unknown status %q", line, strings.Join(fields[1:], " "))
			}
		case "o":
			if len(fields) != 2 {
				return nil, malformed("line %d: expected a single cost", line)
			}
			cost, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, malformed("line %d: cost %q", line, fields[1])
			}
			out.Cost = cost
		case "v":
			for _, f := range fields[1:] {
				m, err := strconv.Atoi(f)
				if err != nil {
					return nil, malformed("line %d: literal %q", line, f)
				}
				switch {
				case m > 0:
					out.values[m] = true
				case m < 0:
					out.values[-m] = false
				}
			}
		default:
			return nil, malformed("line %d: unexpected %q", line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !seen {
		return nil, malformed("no status line")
	}
	return out, nil
}
