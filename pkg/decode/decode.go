// Package decode reconstructs schedules from solver models, either
// in-process or from the textual output of external solvers.
package decode

import (
	"fmt"
	"sort"

	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/tournament"
)

// MalformedModelError reports a model that does not describe exactly
// one match per slot, or text that does not follow the atom grammar.
type MalformedModelError struct {
	Reason string
}

func (e MalformedModelError) Error() string {
	return "malformed model: " + e.Reason
}

func malformed(format string, args ...interface{}) error {
	return MalformedModelError{Reason: fmt.Sprintf(format, args...)}
}

// FromModel builds the schedule described by the match atoms of a that
// are true under value. It does not check tournament rules beyond one
// match per slot; use tournament.Validate for that.
func FromModel(in tournament.Instance, a *atoms.Allocator, value func(atoms.ID) bool) (tournament.Schedule, error) {
	var chosen []atoms.Key
	for i, k := range a.Keys() {
		if value(atoms.ID(i + 1)) {
			chosen = append(chosen, k)
		}
	}
	return fromKeys(in, chosen)
}

// FromNames builds a schedule from atom values keyed by atom name, as
// reported by solvers that work on named variables. Names outside the
// atom grammar are ignored.
func FromNames(in tournament.Instance, values map[string]bool) (tournament.Schedule, error) {
	names := make([]string, 0, len(values))
	for name, v := range values {
		if v && atoms.IsAtomName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	chosen := make([]atoms.Key, 0, len(names))
	for _, name := range names {
		k, err := atoms.Parse(name)
		if err != nil {
			return nil, MalformedModelError{Reason: err.Error()}
		}
		chosen = append(chosen, k)
	}
	return fromKeys(in, chosen)
}

func fromKeys(in tournament.Instance, chosen []atoms.Key) (tournament.Schedule, error) {
	n, periods, weeks := in.Teams, in.Periods(), in.Weeks()
	s := tournament.NewSchedule(in)
	for _, k := range chosen {
		if k.Kind != atoms.Home {
			continue
		}
		if k.P < 1 || k.P > periods || k.W < 1 || k.W > weeks ||
			k.I < 1 || k.I > n || k.J < 1 || k.J > n || k.I == k.J {
			return nil, malformed("atom %s is outside %s", atoms.Name(k), in)
		}
		if prev := s.At(k.P, k.W); prev != nil {
			return nil, malformed("slot P%d W%d holds both %s and %d-%d", k.P, k.W, prev, k.I, k.J)
		}
		s.Set(k.P, k.W, k.I, k.J)
	}
	for p := 1; p <= periods; p++ {
		for w := 1; w <= weeks; w++ {
			if s.At(p, w) == nil {
				return nil, malformed("slot P%d W%d is unresolved", p, w)
			}
		}
	}
	return s, nil
}
