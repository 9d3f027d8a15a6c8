// Package encoding turns a tournament instance into a constraint set
// over canonical decision atoms: the structural rules, optional
// symmetry breaking and the home/away fairness objective.
package encoding

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/tournament"
)

// ErrConflictingObjectives is returned when both a bound and the soft
// objective are requested.
var ErrConflictingObjectives = errors.New("a fixed bound and the soft objective are mutually exclusive")

type settings struct {
	symmetry  SymmetryRule
	objective Objective
	bound     int
}

// Option configures Encode.
type Option func(s *settings) error

// WithSymmetry enables the given symmetry-breaking rules.
func WithSymmetry(r SymmetryRule) Option {
	return func(s *settings) error {
		s.symmetry |= r
		return nil
	}
}

// WithBound enforces |home - away| <= b for every team.
func WithBound(b int) Option {
	return func(s *settings) error {
		if s.objective == Weighted {
			return ErrConflictingObjectives
		}
		s.objective = Bounded
		s.bound = b
		return nil
	}
}

// WithSoftObjective encodes the imbalance as soft preferences.
func WithSoftObjective() Option {
	return func(s *settings) error {
		if s.objective == Bounded {
			return ErrConflictingObjectives
		}
		s.objective = Weighted
		return nil
	}
}

// Encode builds a fresh Formula for in. It fails with a
// tournament.ConfigError, before generating anything, if the instance
// or bound is out of range.
func Encode(in tournament.Instance, options ...Option) (*Formula, error) {
	if _, err := tournament.NewInstance(in.Teams); err != nil {
		return nil, err
	}
	var s settings
	for _, option := range options {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	if s.objective == Bounded {
		if err := in.CheckBound(s.bound); err != nil {
			return nil, err
		}
	}

	b := newBuilder(in)
	b.f.symmetry = s.symmetry
	b.f.objective = s.objective
	b.f.bound = s.bound

	b.structural()
	b.symmetry(s.symmetry)
	switch s.objective {
	case Bounded:
		b.boundedFairness(s.bound)
	case Weighted:
		b.softFairness()
	}
	return b.f, nil
}

type builder struct {
	in tournament.Instance
	f  *Formula
}

func newBuilder(in tournament.Instance) *builder {
	n := in.Teams
	return &builder{
		in: in,
		f: &Formula{
			instance: in,
			atoms:    atoms.NewAllocatorCap(n*(n-1)*in.Periods()*in.Weeks() + n),
		},
	}
}

// home returns the literal for "i home against j in (p, w)".
func (b *builder) home(i, j, p, w int) Lit {
	return Pos(b.f.atoms.Allocate(atoms.Match(i, j, p, w)))
}

// plays returns both directed atoms of the match between i and j in
// (p, w), home first.
func (b *builder) plays(dst []Lit, i, j, p, w int) []Lit {
	return append(dst, b.home(i, j, p, w), b.home(j, i, p, w))
}

func (b *builder) add(c Constraint) {
	b.f.constraints = append(b.f.constraints, c)
}

func (b *builder) label(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
