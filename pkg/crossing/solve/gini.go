package solve

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

type giniSolver struct {
	poll time.Duration
}

// NewGini returns a Solver backed by gini. The search runs in the
// background and is stopped when the context is done.
func NewGini() Solver {
	return &giniSolver{poll: 5 * time.Millisecond}
}

func (s *giniSolver) Solve(ctx context.Context, f cnf.CNF) (Result, error) {
	if r, ok := trivial(ctx, f); ok {
		return r, nil
	}

	g := gini.NewVc(f.Vars, len(f.Clauses))
	for _, c := range f.Clauses {
		for _, m := range c {
			g.Add(z.Dimacs2Lit(m))
		}
		g.Add(z.LitNull)
	}

	run := g.GoSolve()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	var outcome int
	for done := false; !done; {
		select {
		case <-ctx.Done():
			if outcome = run.Stop(); outcome == 0 {
				return Result{Status: Indeterminate, Reason: ctx.Err().Error()}, nil
			}
			done = true
		case <-ticker.C:
			outcome, done = run.Test()
		}
	}

	switch outcome {
	case satisfiable:
		assignment := make([]int, f.Vars)
		top := int(g.MaxVar())
		for v := 1; v <= f.Vars; v++ {
			assignment[v-1] = -v
			if v <= top && g.Value(z.Var(v).Pos()) {
				assignment[v-1] = v
			}
		}
		return Result{Status: Satisfiable, Assignment: assignment}, nil
	case unsatisfiable:
		return Result{Status: Unsatisfiable}, nil
	}
	return Result{Status: Indeterminate, Reason: "search stopped without a result"}, nil
}
