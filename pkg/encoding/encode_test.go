package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/tournament"
)

func sixTeams() tournament.Schedule {
	rows := [][][2]int{
		{{1, 6}, {5, 1}, {5, 3}, {4, 2}, {3, 6}},
		{{2, 5}, {6, 4}, {6, 2}, {1, 3}, {4, 5}},
		{{3, 4}, {2, 3}, {4, 1}, {5, 6}, {1, 2}},
	}
	in, _ := tournament.NewInstance(6)
	s := tournament.NewSchedule(in)
	for p, row := range rows {
		for w, m := range row {
			s.Set(p+1, w+1, m[0], m[1])
		}
	}
	return s
}

// assignment returns the atom values described by s. Indicators are
// true exactly when s respects their bound.
func assignment(f *Formula, s tournament.Schedule) func(atoms.ID) bool {
	imbalance := s.MaxImbalance(f.Instance().Teams)
	return func(id atoms.ID) bool {
		k, ok := f.Atoms().KeyOf(id)
		if !ok {
			return false
		}
		switch k.Kind {
		case atoms.Home:
			m := s.At(k.P, k.W)
			return m != nil && m.Home() == k.I && m.Away() == k.J
		case atoms.Bound:
			return imbalance <= k.I
		}
		return false
	}
}

func mustInstance(t *testing.T, n int) tournament.Instance {
	t.Helper()
	in, err := tournament.NewInstance(n)
	require.NoError(t, err)
	return in
}

func TestEncodeRejects(t *testing.T) {
	for _, tt := range []struct {
		Name    string
		In      tournament.Instance
		Options []Option
		Want    error
	}{
		{
			Name: "odd teams",
			In:   tournament.Instance{Teams: 5},
			Want: tournament.ConfigError{Field: "n", Value: 5, Reason: "the number of teams must be even"},
		},
		{
			Name: "zero value instance",
			In:   tournament.Instance{},
			Want: tournament.ConfigError{Field: "n", Value: 0, Reason: "at least two teams are required"},
		},
		{
			Name:    "negative bound",
			In:      tournament.Instance{Teams: 6},
			Options: []Option{WithBound(-1)},
			Want:    tournament.ConfigError{Field: "bound", Value: -1, Reason: "must lie in [0,5]"},
		},
		{
			Name:    "bound above n-1",
			In:      tournament.Instance{Teams: 6},
			Options: []Option{WithBound(6)},
			Want:    tournament.ConfigError{Field: "bound", Value: 6, Reason: "must lie in [0,5]"},
		},
		{
			Name:    "bound then soft",
			In:      tournament.Instance{Teams: 6},
			Options: []Option{WithBound(1), WithSoftObjective()},
			Want:    ErrConflictingObjectives,
		},
		{
			Name:    "soft then bound",
			In:      tournament.Instance{Teams: 6},
			Options: []Option{WithSoftObjective(), WithBound(1)},
			Want:    ErrConflictingObjectives,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			f, err := Encode(tt.In, tt.Options...)
			assert.Nil(t, f)
			assert.Equal(t, tt.Want, err)
		})
	}
}

func TestStructuralShape(t *testing.T) {
	for _, n := range []int{2, 4, 6, 8} {
		in := mustInstance(t, n)
		f, err := Encode(in)
		require.NoError(t, err)

		periods, weeks := in.Periods(), in.Weeks()
		assert.Equal(t, n*(n-1)*periods*weeks, f.Atoms().Len(), "n=%d", n)
		assert.Equal(t, map[Family]int{
			Slot:   periods * weeks,
			Pair:   in.Matches(),
			Weekly: n * weeks,
			Period: n * periods,
		}, f.Stats(), "n=%d", n)
		assert.False(t, f.Contradictory())
		assert.Empty(t, f.Soft())
		_, bounded := f.Bound()
		assert.False(t, bounded)
	}
}

func TestAtomIDsIndependentOfOptions(t *testing.T) {
	in := mustInstance(t, 6)
	plain, err := Encode(in)
	require.NoError(t, err)

	for _, options := range [][]Option{
		{WithSymmetry(AllSymmetry)},
		{WithBound(1)},
		{WithSymmetry(WeekOnePairing), WithSoftObjective()},
	} {
		f, err := Encode(in, options...)
		require.NoError(t, err)
		assert.Equal(t, plain.Atoms().Keys(), f.Atoms().Keys()[:plain.Atoms().Len()])
	}

	// first slot, first pair
	assert.Equal(t, Lit(1), plain.Home(1, 2, 1, 1))
	assert.Equal(t, Lit(2), plain.Home(2, 1, 1, 1))
	assert.Equal(t, Lit(0), plain.Home(1, 1, 1, 1))
}

func TestSymmetry(t *testing.T) {
	in := mustInstance(t, 6)

	for _, tt := range []struct {
		Rule SymmetryRule
		Want int
	}{
		{Rule: NoSymmetry, Want: 0},
		{Rule: WeekOnePairing, Want: 3},
		{Rule: TeamOneOpponents, Want: 5},
		{Rule: AllSymmetry, Want: 8},
	} {
		t.Run(tt.Rule.String(), func(t *testing.T) {
			f, err := Encode(in, WithSymmetry(tt.Rule))
			require.NoError(t, err)
			assert.Equal(t, tt.Rule, f.Symmetry())
			assert.Equal(t, tt.Want, f.Stats()[Symmetry])

			parsed, ok := ParseSymmetry(tt.Rule.String())
			assert.True(t, ok)
			assert.Equal(t, tt.Rule, parsed)
		})
	}

	f, err := Encode(in, WithSymmetry(WeekOnePairing))
	require.NoError(t, err)
	for _, c := range f.Constraints() {
		if c.Family == Symmetry {
			assert.Equal(t, "week 1 period 1 pairing: |{H_1_2_P1_W1, H_2_1_P1_W1}| >= 1", c.String(f.Atoms()))
			break
		}
	}

	_, ok := ParseSymmetry("sb3")
	assert.False(t, ok)
}

func TestBoundedFairness(t *testing.T) {
	in := mustInstance(t, 6)

	f, err := Encode(in, WithBound(0))
	require.NoError(t, err)
	assert.True(t, f.Contradictory(), "an odd number of games cannot split evenly")
	assert.Equal(t, 1, f.Stats()[Fairness])

	f, err = Encode(in, WithBound(1))
	require.NoError(t, err)
	assert.False(t, f.Contradictory())
	bound, ok := f.Bound()
	assert.True(t, ok)
	assert.Equal(t, 1, bound)
	// window [2,3] of 5 games: both sides for every team
	assert.Equal(t, 12, f.Stats()[Fairness])

	f, err = Encode(in, WithBound(5))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Stats()[Fairness])
}

func TestSoftFairness(t *testing.T) {
	in := mustInstance(t, 6)
	f, err := Encode(in, WithSoftObjective())
	require.NoError(t, err)
	assert.Equal(t, Weighted, f.Objective())
	assert.False(t, f.Contradictory(), "the empty window is guarded")

	require.Len(t, f.Soft(), 6)
	assert.Equal(t, 6, f.TotalSoftWeight())
	structural := 6 * 5 * 3 * 5
	for k, s := range f.Soft() {
		assert.Equal(t, Lit(structural+k+1), s.Lit)
		key, ok := f.Atoms().KeyOf(s.Lit.ID())
		require.True(t, ok)
		assert.Equal(t, atoms.Indicator(k), key)
	}

	for _, c := range f.Constraints() {
		if c.Family == Fairness {
			assert.NotZero(t, c.Guard, c.Label)
		}
	}
}

func TestViolated(t *testing.T) {
	in := mustInstance(t, 6)
	s := sixTeams()

	for _, tt := range []struct {
		Name     string
		Options  []Option
		Families []Family
	}{
		{Name: "decision"},
		{Name: "bound 1", Options: []Option{WithBound(1)}},
		{Name: "bound 0", Options: []Option{WithBound(0)}, Families: []Family{Fairness}},
		{Name: "soft", Options: []Option{WithSoftObjective()}},
		{Name: "symmetry", Options: []Option{WithSymmetry(WeekOnePairing)}, Families: []Family{Symmetry, Symmetry, Symmetry}},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			f, err := Encode(in, tt.Options...)
			require.NoError(t, err)
			var families []Family
			for _, c := range f.Violated(assignment(f, s)) {
				families = append(families, c.Family)
			}
			assert.Equal(t, tt.Families, families)
		})
	}

	f, err := Encode(in)
	require.NoError(t, err)
	broken := sixTeams()
	broken.Set(1, 1, 1, 2)
	var labels []string
	for _, c := range f.Violated(assignment(f, broken)) {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{
		"pair 1-2",
		"pair 1-6",
		"team 2 week 1",
		"team 6 week 1",
	}, labels)
}
