package solver

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourney/sts/pkg/encoding"
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

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"gini", "gophersat", "maxsat"}, Names())
	for _, name := range Names() {
		b, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, b.Name())
	}

	_, err := Lookup("z3")
	assert.Equal(t, ErrMissingBackend, errors.Cause(err))
	assert.EqualError(t, err, `"z3" (have [gini gophersat maxsat]): no such backend`)
}

func TestCheck(t *testing.T) {
	for _, tt := range []struct {
		Name    string
		N       int
		Options []encoding.Option
		Want    Status
	}{
		{Name: "two teams", N: 2, Want: Sat},
		{Name: "four teams", N: 4, Want: Unsat},
		{Name: "six teams", N: 6, Want: Sat},
		{Name: "six teams symmetry", N: 6, Options: []encoding.Option{encoding.WithSymmetry(encoding.AllSymmetry)}, Want: Sat},
		{Name: "six teams bound 1", N: 6, Options: []encoding.Option{encoding.WithBound(1)}, Want: Sat},
		{Name: "six teams bound 0", N: 6, Options: []encoding.Option{encoding.WithBound(0)}, Want: Unsat},
	} {
		for _, name := range Names() {
			t.Run(tt.Name+"/"+name, func(t *testing.T) {
				b, err := Lookup(name)
				require.NoError(t, err)
				f := encode(t, tt.N, tt.Options...)

				res, err := b.Check(context.Background(), f)
				require.NoError(t, err)
				require.Equal(t, tt.Want, res.Status)
				if res.Status == Sat {
					assert.Len(t, res.Model, f.Atoms().Len()+1)
					assert.Empty(t, f.Violated(res.Model.Value))
				} else {
					assert.Nil(t, res.Model)
				}
			})
		}
	}
}

func TestOptimize(t *testing.T) {
	for _, b := range []Optimizer{NewGini(), MaxSAT{}} {
		t.Run(b.Name(), func(t *testing.T) {
			f := encode(t, 6, encoding.WithSoftObjective())
			res, err := b.Optimize(context.Background(), f)
			require.NoError(t, err)
			require.Equal(t, Sat, res.Status)
			assert.True(t, res.Optimal)
			assert.Equal(t, 1, res.Cost)
			assert.Empty(t, f.Violated(res.Model.Value))

			f = encode(t, 4, encoding.WithSoftObjective())
			res, err = b.Optimize(context.Background(), f)
			require.NoError(t, err)
			assert.Equal(t, Unsat, res.Status)
		})
	}
}

func TestOptimizeWithoutPreferences(t *testing.T) {
	res, err := NewGini().Optimize(context.Background(), encode(t, 2))
	require.NoError(t, err)
	assert.Equal(t, Sat, res.Status)
	assert.True(t, res.Optimal)
	assert.Zero(t, res.Cost)
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := encode(t, 6)
	for _, name := range Names() {
		b, err := Lookup(name)
		require.NoError(t, err)
		res, err := b.Check(ctx, f)
		assert.Equal(t, Incomplete, err, name)
		assert.Equal(t, Unknown, res.Status, name)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	res, err := run(context.Background(), "broken", func() Result {
		panic("boom")
	})
	assert.Equal(t, Result{}, res)
	var crash *CrashError
	require.ErrorAs(t, err, &crash)
	assert.Equal(t, "backend broken crashed: boom", crash.Error())
}

func TestRunAbandonsOnDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	res, err := run(ctx, "slow", func() Result {
		<-release
		return Result{Status: Sat}
	})
	assert.Equal(t, Incomplete, err)
	assert.Equal(t, Unknown, res.Status)
}

func TestModelValue(t *testing.T) {
	m := Model{false, true, false}
	assert.True(t, m.Value(1))
	assert.False(t, m.Value(2))
	assert.False(t, m.Value(0))
	assert.False(t, m.Value(3))
}
