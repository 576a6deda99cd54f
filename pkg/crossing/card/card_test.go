package card

import (
	"fmt"
	"math/bits"
	"testing"

	"github.com/crillab/gophersat/solver"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
)

type counter int

func (c *counter) Fresh() int {
	*c++
	return int(*c)
}

func satisfiable(cs []cnf.Clause, units []int) bool {
	slice := make([][]int, 0, len(cs)+len(units))
	for _, c := range cs {
		slice = append(slice, c)
	}
	for _, m := range units {
		slice = append(slice, []int{m})
	}
	return solver.New(solver.ParseSlice(slice)).Solve() == solver.Sat
}

// inputs fixes lits 1..n to the bits of mask.
func inputs(n int, mask uint) []int {
	units := make([]int, n)
	for i := range units {
		units[i] = -(i + 1)
		if mask&(1<<uint(i)) != 0 {
			units[i] = i + 1
		}
	}
	return units
}

func TestAtMostExhaustive(t *testing.T) {
	for _, s := range Strategies {
		for n := 1; n <= 5; n++ {
			for bound := -1; bound <= n+1; bound++ {
				t.Run(fmt.Sprintf("%s/n=%d/k=%d", s, n, bound), func(t *testing.T) {
					lits := make([]int, n)
					for i := range lits {
						lits[i] = i + 1
					}
					alloc := counter(n)
					cs, err := AtMost(lits, bound, s, &alloc)
					require.NoError(t, err)

					for mask := uint(0); mask < 1<<uint(n); mask++ {
						want := bits.OnesCount(mask) <= bound
						assert.Equal(t, want, satisfiable(cs, inputs(n, mask)), "mask %05b", mask)
					}
				})
			}
		}
	}
}

func TestAtLeastExhaustive(t *testing.T) {
	for _, s := range Strategies {
		for n := 1; n <= 4; n++ {
			for bound := 0; bound <= n+1; bound++ {
				t.Run(fmt.Sprintf("%s/n=%d/k=%d", s, n, bound), func(t *testing.T) {
					lits := make([]int, n)
					for i := range lits {
						lits[i] = i + 1
					}
					alloc := counter(n)
					cs, err := AtLeast(lits, bound, s, &alloc)
					require.NoError(t, err)

					for mask := uint(0); mask < 1<<uint(n); mask++ {
						want := bits.OnesCount(mask) >= bound
						assert.Equal(t, want, satisfiable(cs, inputs(n, mask)), "mask %04b", mask)
					}
				})
			}
		}
	}
}

func TestAtMostNegatedInputs(t *testing.T) {
	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			alloc := counter(3)
			cs, err := AtMost([]int{-1, -2, -3}, 1, s, &alloc)
			require.NoError(t, err)

			assert.True(t, satisfiable(cs, []int{1, 1, -3}))
			assert.True(t, satisfiable(cs, []int{1, 2, 3}))
			assert.False(t, satisfiable(cs, []int{-1, -2, 3}))
		})
	}
}

func TestAtMostEdgeCases(t *testing.T) {
	alloc := counter(3)
	lits := []int{1, 2, 3}

	cs, err := AtMost(lits, 3, Totalizer, &alloc)
	require.NoError(t, err)
	assert.Empty(t, cs)

	cs, err = AtMost(nil, 0, Totalizer, &alloc)
	require.NoError(t, err)
	assert.Empty(t, cs)

	cs, err = AtMost(lits, 0, SortingNetwork, &alloc)
	require.NoError(t, err)
	assert.Equal(t, []cnf.Clause{{-1}, {-2}, {-3}}, cs)

	cs, err = AtMost(lits, -1, SequentialCounter, &alloc)
	require.NoError(t, err)
	assert.Equal(t, []cnf.Clause{{}}, cs)

	assert.Equal(t, counter(3), alloc, "trivial bounds allocate nothing")
}

func TestUnknownStrategy(t *testing.T) {
	alloc := counter(2)
	_, err := AtMost([]int{1, 2}, 1, Strategy("ladder"), &alloc)
	var unknown UnknownStrategy
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, `unknown cardinality strategy "ladder"`, err.Error())
}

func TestAuxiliaryVariablesComeFromAllocator(t *testing.T) {
	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			alloc := counter(100)
			cs, err := AtMost([]int{1, 2, 3, 4}, 2, s, &alloc)
			require.NoError(t, err)
			for _, c := range cs {
				for _, m := range c {
					v := m
					if v < 0 {
						v = -v
					}
					assert.True(t, v <= 4 || (v > 100 && v <= int(alloc)), "variable %d", v)
				}
			}
		})
	}
}
