package decode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/solver"
	"github.com/tourney/sts/pkg/tournament"
)

func sixTeams(t *testing.T) (tournament.Instance, tournament.Schedule) {
	t.Helper()
	in, err := tournament.NewInstance(6)
	require.NoError(t, err)
	rows := [][][2]int{
		{{1, 6}, {5, 1}, {5, 3}, {4, 2}, {3, 6}},
		{{2, 5}, {6, 4}, {6, 2}, {1, 3}, {4, 5}},
		{{3, 4}, {2, 3}, {4, 1}, {5, 6}, {1, 2}},
	}
	s := tournament.NewSchedule(in)
	for p, row := range rows {
		for w, m := range row {
			s.Set(p+1, w+1, m[0], m[1])
		}
	}
	return in, s
}

func truth(a *atoms.Allocator, s tournament.Schedule) func(atoms.ID) bool {
	return func(id atoms.ID) bool {
		k, _ := a.KeyOf(id)
		if k.Kind != atoms.Home {
			return false
		}
		m := s.At(k.P, k.W)
		return m.Home() == k.I && m.Away() == k.J
	}
}

func TestFromModel(t *testing.T) {
	in, want := sixTeams(t)
	f, err := encoding.Encode(in, encoding.WithSoftObjective())
	require.NoError(t, err)

	got, err := FromModel(in, f.Atoms(), truth(f.Atoms(), want))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, tournament.Validate(in, got, nil))
}

func TestFromModelMalformed(t *testing.T) {
	in, s := sixTeams(t)
	f, err := encoding.Encode(in)
	require.NoError(t, err)
	a := f.Atoms()
	base := truth(a, s)

	for _, tt := range []struct {
		Name  string
		Value func(atoms.ID) bool
		Error string
	}{
		{
			Name:  "all false",
			Value: func(atoms.ID) bool { return false },
			Error: "malformed model: slot P1 W1 is unresolved",
		},
		{
			Name: "slot emptied",
			Value: func(id atoms.ID) bool {
				return base(id) && id != f.Home(3, 6, 1, 5).ID()
			},
			Error: "malformed model: slot P1 W5 is unresolved",
		},
		{
			Name: "slot doubled",
			Value: func(id atoms.ID) bool {
				return base(id) || id == f.Home(2, 1, 1, 1).ID()
			},
			Error: "malformed model: slot P1 W1 holds both 2-1 and 1-6",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			_, err := FromModel(in, a, tt.Value)
			assert.EqualError(t, err, tt.Error)
			assert.IsType(t, MalformedModelError{}, err)
		})
	}
}

func TestFromNames(t *testing.T) {
	in, want := sixTeams(t)
	values := map[string]bool{
		"B_1":         true,
		"aux_17":      true,
		"H_2_1_P1_W1": false,
	}
	for p := 1; p <= in.Periods(); p++ {
		for w := 1; w <= in.Weeks(); w++ {
			m := want.At(p, w)
			values[atoms.Name(atoms.Match(m.Home(), m.Away(), p, w))] = true
		}
	}
	got, err := FromNames(in, values)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}

	values["H_1_2_P9_W1"] = true
	_, err = FromNames(in, values)
	assert.EqualError(t, err, "malformed model: atom H_1_2_P9_W1 is outside sts(n=6)")

	delete(values, "H_1_2_P9_W1")
	values["H_1_2_W1"] = true
	_, err = FromNames(in, values)
	assert.EqualError(t, err, `malformed model: atom "H_1_2_W1": offset 5: expected "_P"`)
}

func TestParseDIMACS(t *testing.T) {
	out, err := ParseDIMACS(strings.NewReader(`c gini
o 4
o 1
s OPTIMUM FOUND
v 1 -2 3
v -4 0
`))
	require.NoError(t, err)
	assert.Equal(t, solver.Sat, out.Status)
	assert.True(t, out.Optimum)
	assert.Equal(t, 1, out.Cost)
	assert.True(t, out.Value(1))
	assert.False(t, out.Value(2))
	assert.True(t, out.Value(3))
	assert.False(t, out.Value(4))
	assert.False(t, out.Value(5))

	out, err = ParseDIMACS(strings.NewReader("s UNSATISFIABLE\n"))
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, out.Status)
	assert.Equal(t, -1, out.Cost)

	for input, msg := range map[string]string{
		"":                       "malformed model: no status line",
		"s MAYBE\n":              `malformed model: line 1: unknown status "MAYBE"`,
		"s SATISFIABLE\nv x 0\n": `malformed model: line 2: literal "x"`,
		"p cnf 1 1\n":            `malformed model: line 1: unexpected "p"`,
	} {
		_, err := ParseDIMACS(strings.NewReader(input))
		assert.EqualError(t, err, msg, input)
	}
}

func TestParseSMT(t *testing.T) {
	for _, tt := range []struct {
		Name  string
		Input string
	}{
		{
			Name: "bool model",
			Input: `sat
(model
  (define-fun H_1_2_P1_W1 () Bool true)
  (define-fun H_2_1_P1_W1 () Bool false)
  (define-fun helper () Int 7)
)`,
		},
		{
			Name: "int model without keyword",
			Input: `sat
(
  ; generated
  (define-fun |H_1_2_P1_W1| () Int 1)
  (define-fun H_2_1_P1_W1 () Int 0)
)`,
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			out, err := ParseSMT(strings.NewReader(tt.Input))
			require.NoError(t, err)
			assert.Equal(t, solver.Sat, out.Status)
			assert.Equal(t, map[string]bool{
				"H_1_2_P1_W1": true,
				"H_2_1_P1_W1": false,
			}, out.Values)
		})
	}

	out, err := ParseSMT(strings.NewReader("unsat\n"))
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, out.Status)
	assert.Empty(t, out.Values)

	for input, msg := range map[string]string{
		"sat (model":                        "malformed model: unbalanced '('",
		"sat )":                             "malformed model: unbalanced ')'",
		"(define-fun H_1_2_P1_W1 () Int 2)": "malformed model: H_1_2_P1_W1: value 2 of sort Int is not boolean",
		"maybe":                             `malformed model: unexpected "maybe"`,
	} {
		_, err := ParseSMT(strings.NewReader(input))
		assert.EqualError(t, err, msg, input)
	}
}

func TestCheckGrammar(t *testing.T) {
	assert.NoError(t, CheckGrammar(strings.NewReader("; generated\n; sts-atoms v1\n(set-logic QF_LIA)\n")))
	assert.EqualError(t, CheckGrammar(strings.NewReader("; sts-atoms v0\n")),
		`malformed model: atom grammar "sts-atoms v0", want "sts-atoms v1"`)
	assert.EqualError(t, CheckGrammar(strings.NewReader("(set-logic QF_LIA)\n")),
		"malformed model: no atom grammar stamp")

	assert.NoError(t, CheckGrammar(strings.NewReader("c sts-atoms v1\nc atoms 1..2, true 3\np cnf 3 1\n3 0\n")))
	assert.EqualError(t, CheckGrammar(strings.NewReader("c sts-atoms v2\np wcnf 3 1 2\n")),
		`malformed model: atom grammar "sts-atoms v2", want "sts-atoms v1"`)
	assert.EqualError(t, CheckGrammar(strings.NewReader("p cnf 3 1\n3 0\n")),
		"malformed model: no atom grammar stamp")
}
