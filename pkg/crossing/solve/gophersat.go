package solve

import (
	"context"

	"github.com/crillab/gophersat/solver"

	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
)

type gophersatSolver struct{}

// NewGophersat returns a Solver backed by gophersat. gophersat cannot be
// interrupted, so a cancelled call returns at once and the search
// finishes in the background.
func NewGophersat() Solver {
	return gophersatSolver{}
}

func (gophersatSolver) Solve(ctx context.Context, f cnf.CNF) (Result, error) {
	if r, ok := trivial(ctx, f); ok {
		return r, nil
	}

	clauses := make([][]int, len(f.Clauses))
	for i, c := range f.Clauses {
		clauses[i] = c
	}

	done := make(chan Result, 1)
	go func() {
		s := solver.New(solver.ParseSlice(clauses))
		if s.Solve() != solver.Sat {
			done <- Result{Status: Unsatisfiable}
			return
		}
		model := s.Model()
		assignment := make([]int, f.Vars)
		for v := 1; v <= f.Vars; v++ {
			assignment[v-1] = -v
			if v <= len(model) && model[v-1] {
				assignment[v-1] = v
			}
		}
		done <- Result{Status: Satisfiable, Assignment: assignment}
	}()

	select {
	case <-ctx.Done():
		return Result{Status: Indeterminate, Reason: ctx.Err().Error()}, nil
	case r := <-done:
		return r, nil
	}
}
