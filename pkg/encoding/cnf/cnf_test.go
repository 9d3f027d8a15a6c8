package cnf

import (
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourney/sts/pkg/encoding"
	"github.com/tourney/sts/pkg/encoding/atoms"
	"github.com/tourney/sts/pkg/tournament"
)

func encode(t *testing.T, n int, options ...encoding.Option) *encoding.Formula {
	t.Helper()
	in, err := tournament.NewInstance(n)
	require.NoError(t, err)
	f, err := encoding.Encode(in, options...)
	require.NoError(t, err)
	return f
}

func load(c *CNF) *gini.Gini {
	g := gini.NewVc(c.Vars, len(c.Clauses))
	for _, cl := range c.Clauses {
		for _, m := range cl {
			g.Add(z.Dimacs2Lit(m))
		}
		g.Add(z.LitNull)
	}
	return g
}

func TestCompileTwoTeams(t *testing.T) {
	c := Compile(encode(t, 2), DefaultPolicy)
	assert.Equal(t, 2, c.Atoms)
	assert.Equal(t, 3, c.Vars)
	assert.Equal(t, 3, c.True())
	assert.Equal(t, [][]int{
		{3},
		{1, 2}, {-1, -2}, // slot
		{1, 2}, {-1, -2}, // pair
		{1, 2}, {-1, -2}, // team 1
		{2, 1}, {-2, -1}, // team 2
	}, c.Clauses)
	assert.Empty(t, c.Soft)
	assert.Empty(t, c.CostAtMost)
}

func TestCompileContradiction(t *testing.T) {
	c := Compile(encode(t, 2, encoding.WithBound(0)), DefaultPolicy)
	assert.Contains(t, c.Clauses, []int{-3})
	assert.Equal(t, -1, load(c).Solve())

	c = Compile(encode(t, 2, encoding.WithBound(1)), DefaultPolicy)
	assert.NotContains(t, c.Clauses, []int{-3})
	assert.Equal(t, 1, load(c).Solve())
}

func TestCompileSoft(t *testing.T) {
	c := Compile(encode(t, 2, encoding.WithSoftObjective()), DefaultPolicy)
	assert.Equal(t, 4, c.Atoms)
	assert.Equal(t, []WeightedClause{
		{Lits: []int{3}, Weight: 1},
		{Lits: []int{4}, Weight: 1},
	}, c.Soft)
	assert.Equal(t, 2, c.TotalSoftWeight())
	require.Len(t, c.CostAtMost, 3)
	// B_0 is guarded by an empty window
	assert.Contains(t, c.Clauses, []int{-3})

	g := load(c)
	g.Assume(z.Dimacs2Lit(c.CostAtMost[0]))
	assert.Equal(t, -1, g.Solve())
	g.Assume(z.Dimacs2Lit(c.CostAtMost[1]))
	require.Equal(t, 1, g.Solve())
	assert.False(t, g.Value(z.Dimacs2Lit(3)))
	assert.True(t, g.Value(z.Dimacs2Lit(4)))
}

func TestCompileSolves(t *testing.T) {
	for _, tt := range []struct {
		Name    string
		N       int
		Options []encoding.Option
		Policy  Policy
		Sat     bool
	}{
		{Name: "four teams", N: 4, Policy: DefaultPolicy, Sat: false},
		{Name: "four teams networks only", N: 4, Policy: Policy{}, Sat: false},
		{Name: "six teams", N: 6, Policy: DefaultPolicy, Sat: true},
		{Name: "six teams networks only", N: 6, Policy: Policy{}, Sat: true},
		{Name: "six teams symmetry", N: 6, Options: []encoding.Option{encoding.WithSymmetry(encoding.AllSymmetry)}, Policy: DefaultPolicy, Sat: true},
		{Name: "six teams bound 1", N: 6, Options: []encoding.Option{encoding.WithBound(1)}, Policy: DefaultPolicy, Sat: true},
		{Name: "six teams bound 0", N: 6, Options: []encoding.Option{encoding.WithBound(0)}, Policy: DefaultPolicy, Sat: false},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			f := encode(t, tt.N, tt.Options...)
			c := Compile(f, tt.Policy)
			g := load(c)
			res := g.Solve()
			if !tt.Sat {
				assert.Equal(t, -1, res)
				return
			}
			require.Equal(t, 1, res)
			value := func(id atoms.ID) bool {
				return g.Value(z.Dimacs2Lit(int(id)))
			}
			assert.Empty(t, f.Violated(value))
		})
	}
}
