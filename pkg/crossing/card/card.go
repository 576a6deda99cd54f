package card

import (
	"fmt"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
)

// Strategy names a CNF encoding of a cardinality constraint.
type Strategy string

const (
	// Totalizer builds a tree of unary counters over the inputs.
	Totalizer Strategy = "totalizer"
	// SequentialCounter is Sinz's sequential counter.
	SequentialCounter Strategy = "seqcounter"
	// SortingNetwork sorts the inputs with an odd-even merge network
	// built by gini's logic package.
	SortingNetwork Strategy = "sortnet"
)

var Strategies = []Strategy{Totalizer, SequentialCounter, SortingNetwork}

// UnknownStrategy is returned for a Strategy with no encoder.
type UnknownStrategy Strategy

func (e UnknownStrategy) Error() string {
	return fmt.Sprintf("unknown cardinality strategy %q", string(e))
}

// Allocator hands out auxiliary variables that are distinct from every
// variable already in use.
type Allocator interface {
	Fresh() int
}

// AtMost returns clauses that are satisfiable exactly when at most bound
// of lits are true. Auxiliary variables are drawn from alloc.
func AtMost(lits []int, bound int, s Strategy, alloc Allocator) ([]cnf.Clause, error) {
	encode, ok := encoders[s]
	if !ok {
		return nil, UnknownStrategy(s)
	}
	switch {
	case bound < 0:
		return []cnf.Clause{{}}, nil
	case bound >= len(lits):
		return nil, nil
	case bound == 0:
		cs := make([]cnf.Clause, 0, len(lits))
		for _, m := range lits {
			cs = append(cs, cnf.Clause{-m})
		}
		return cs, nil
	}
	return encode(lits, bound, alloc), nil
}

// AtLeast returns clauses that are satisfiable exactly when at least bound
// of lits are true.
func AtLeast(lits []int, bound int, s Strategy, alloc Allocator) ([]cnf.Clause, error) {
	neg := make([]int, len(lits))
	for i, m := range lits {
		neg[i] = -m
	}
	return AtMost(neg, len(lits)-bound, s, alloc)
}

type encoder func(lits []int, bound int, alloc Allocator) []cnf.Clause

var encoders = map[Strategy]encoder{
	Totalizer:         totalizer,
	SequentialCounter: sequentialCounter,
	SortingNetwork:    sortingNetwork,
}

// totalizer counts in unary up to bound+1 at each node of a balanced
// tree and forbids the root's (bound+1)th output.
func totalizer(lits []int, bound int, alloc Allocator) []cnf.Clause {
	var cs []cnf.Clause
	var count func(ms []int) []int
	count = func(ms []int) []int {
		if len(ms) == 1 {
			return ms
		}
		mid := len(ms) / 2
		a, b := count(ms[:mid]), count(ms[mid:])
		n := len(a) + len(b)
		if n > bound+1 {
			n = bound + 1
		}
		out := make([]int, n)
		for i := range out {
			out[i] = alloc.Fresh()
		}
		// a[i-1] and b[j-1] true means at least i+j are true.
		for i := 0; i <= len(a); i++ {
			for j := 0; j <= len(b); j++ {
				k := i + j
				if k == 0 || k > n {
					continue
				}
				c := cnf.Clause{}
				if i > 0 {
					c = append(c, -a[i-1])
				}
				if j > 0 {
					c = append(c, -b[j-1])
				}
				cs = append(cs, append(c, out[k-1]))
			}
		}
		return out
	}
	root := count(lits)
	return append(cs, cnf.Clause{-root[bound]})
}

// sequentialCounter requires 0 < bound < len(lits). s[i][j] holds when
// at least j+1 of lits[0..i] are true.
func sequentialCounter(lits []int, bound int, alloc Allocator) []cnf.Clause {
	n := len(lits)
	s := make([][]int, n-1)
	for i := range s {
		s[i] = make([]int, bound)
		for j := range s[i] {
			s[i][j] = alloc.Fresh()
		}
	}

	var cs []cnf.Clause
	cs = append(cs, cnf.Clause{-lits[0], s[0][0]})
	for j := 1; j < bound; j++ {
		cs = append(cs, cnf.Clause{-s[0][j]})
	}
	for i := 1; i < n-1; i++ {
		cs = append(cs,
			cnf.Clause{-lits[i], s[i][0]},
			cnf.Clause{-s[i-1][0], s[i][0]},
		)
		for j := 1; j < bound; j++ {
			cs = append(cs,
				cnf.Clause{-lits[i], -s[i-1][j-1], s[i][j]},
				cnf.Clause{-s[i-1][j], s[i][j]},
			)
		}
		cs = append(cs, cnf.Clause{-lits[i], -s[i-1][bound-1]})
	}
	return append(cs, cnf.Clause{-lits[n-1], -s[n-2][bound-1]})
}

// sortingNetwork builds the network in a private gini circuit and
// renames the circuit's variables into the caller's: inputs map onto
// lits, every other node onto a fresh variable.
func sortingNetwork(lits []int, bound int, alloc Allocator) []cnf.Clause {
	c := logic.NewCCap(len(lits) * 8)
	ins := make([]z.Lit, len(lits))
	rename := make(map[z.Var]int, len(lits))
	for i, m := range lits {
		ins[i] = c.Lit()
		rename[ins[i].Var()] = m
	}
	root := c.CardSort(ins).Leq(bound)

	a := &adder{rename: rename, alloc: alloc}
	c.ToCnfFrom(a, root)
	a.Add(root)
	a.Add(z.LitNull)
	return a.clauses
}

// adder collects the clauses of a gini circuit as cnf clauses.
type adder struct {
	rename  map[z.Var]int
	alloc   Allocator
	clause  cnf.Clause
	clauses []cnf.Clause
}

func (a *adder) Add(m z.Lit) {
	if m == z.LitNull {
		a.clauses = append(a.clauses, a.clause)
		a.clause = nil
		return
	}
	v, ok := a.rename[m.Var()]
	if !ok {
		v = a.alloc.Fresh()
		a.rename[m.Var()] = v
	}
	if !m.IsPos() {
		v = -v
	}
	a.clause = append(a.clause, v)
}
