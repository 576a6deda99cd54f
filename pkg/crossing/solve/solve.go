package solve

import (
	"context"

	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
)

// Status is the outcome of a solver call.
type Status int

const (
	Indeterminate Status = iota
	Satisfiable
	Unsatisfiable
)

func (s Status) String() string {
	switch s {
	case Satisfiable:
		return "satisfiable"
	case Unsatisfiable:
		return "unsatisfiable"
	}
	return "indeterminate"
}

// Result of a solver call. Assignment holds one signed variable for each
// of 1..Vars and is only set when Status is Satisfiable. Reason explains
// an Indeterminate result.
type Result struct {
	Status     Status `json:"status"`
	Assignment []int  `json:"assignment,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Solver decides a CNF. A cancelled or expired context yields an
// Indeterminate Result, not an error.
type Solver interface {
	Solve(ctx context.Context, f cnf.CNF) (Result, error)
}

// trivial decides f without search when it contains the empty clause or
// the context is already done.
func trivial(ctx context.Context, f cnf.CNF) (Result, bool) {
	if err := ctx.Err(); err != nil {
		return Result{Status: Indeterminate, Reason: err.Error()}, true
	}
	for _, c := range f.Clauses {
		if len(c) == 0 {
			return Result{Status: Unsatisfiable, Reason: "empty clause"}, true
		}
	}
	return Result{}, false
}
