package tournament

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sixTeams is a valid schedule for n=6 where every team plays two or
// three home games.
func sixTeams() Schedule {
	rows := [][][2]int{
		{{1, 6}, {5, 1}, {5, 3}, {4, 2}, {3, 6}},
		{{2, 5}, {6, 4}, {6, 2}, {1, 3}, {4, 5}},
		{{3, 4}, {2, 3}, {4, 1}, {5, 6}, {1, 2}},
	}
	s := make(Schedule, len(rows))
	for p, row := range rows {
		s[p] = make([]*Match, len(row))
		for w, m := range row {
			s[p][w] = &Match{m[0], m[1]}
		}
	}
	return s
}

func TestValidate(t *testing.T) {
	in, err := NewInstance(6)
	require.NoError(t, err)

	one, zero := 1, 0

	type tc struct {
		Name     string
		Schedule func() Schedule
		Bound    *int
		Contains []string
	}

	for _, tt := range []tc{
		{
			Name:     "valid",
			Schedule: sixTeams,
		},
		{
			Name:     "valid within bound",
			Schedule: sixTeams,
			Bound:    &one,
		},
		{
			Name:     "bound too tight",
			Schedule: sixTeams,
			Bound:    &zero,
			Contains: []string{"imbalance 1 exceeds bound 0"},
		},
		{
			Name: "empty slot",
			Schedule: func() Schedule {
				s := sixTeams()
				s[0][0] = nil
				return s
			},
			Contains: []string{"slot P1 W1 is empty", "pair 1-6 meets 0 times", "team 1 plays 0 times in week 1"},
		},
		{
			Name: "duplicated pair",
			Schedule: func() Schedule {
				s := sixTeams()
				s.Set(1, 2, 1, 6)
				return s
			},
			Contains: []string{"pair 1-6 meets 2 times", "pair 1-5 meets 0 times"},
		},
		{
			Name: "period overload",
			Schedule: func() Schedule {
				s := sixTeams()
				// Swap periods 1 and 3 in week 5 only: team 1 then
				// appears three times in period 1.
				s[0][4], s[2][4] = s[2][4], s[0][4]
				return s
			},
			Contains: []string{"team 1 appears 3 times in period 1"},
		},
		{
			Name: "wrong shape",
			Schedule: func() Schedule {
				return sixTeams()[:2]
			},
			Contains: []string{"expected 3 periods, found 2"},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			err := Validate(in, tt.Schedule(), tt.Bound)
			if len(tt.Contains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, c := range tt.Contains {
				assert.Contains(t, err.Error(), c)
			}
		})
	}
}

func TestScheduleAccessors(t *testing.T) {
	s := sixTeams()
	assert.True(t, s.Complete())
	assert.Equal(t, 1, s.MaxImbalance(6))
	assert.Equal(t, []int{0, 3, 2, 2, 3, 3, 2}, s.HomeCounts(6))
	assert.Equal(t, Match{1, 6}, *s.At(1, 1))

	in, err := NewInstance(6)
	require.NoError(t, err)
	empty := NewSchedule(in)
	assert.False(t, empty.Complete())
	assert.Len(t, empty, 3)
	assert.Len(t, empty[0], 5)
}

func TestScheduleJSON(t *testing.T) {
	in, err := NewInstance(2)
	require.NoError(t, err)
	s := NewSchedule(in)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[[null]]`, string(b))

	s.Set(1, 1, 2, 1)
	b, err = json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[[[2,1]]]`, string(b))
}
