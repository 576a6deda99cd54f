package encoder

import (
	"github.com/pkg/errors"

	"github.com/bridgeplan/crossing/pkg/crossing/card"
	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
	"github.com/bridgeplan/crossing/pkg/crossing/config"
	"github.com/bridgeplan/crossing/pkg/crossing/model"
	"github.com/bridgeplan/crossing/pkg/crossing/pool"
)

// Encoding is the result of encoding one puzzle instance. Pool maps every
// variable of CNF back to the proposition it stands for.
type Encoding struct {
	Model *model.Model
	Pool  *pool.Pool
	CNF   cnf.CNF
	Rules []RuleSummary
}

// Encoder holds the state of a single encoding. It is not reusable.
type Encoder struct {
	model    *model.Model
	pool     *pool.Pool
	cnf      cnf.CNF
	strategy card.Strategy
	goal     config.GoalMode
	tracer   Tracer
}

type Option func(e *Encoder) error

// WithCardinality overrides the configured cardinality strategy.
func WithCardinality(s card.Strategy) Option {
	return func(e *Encoder) error {
		for _, known := range card.Strategies {
			if s == known {
				e.strategy = s
				return nil
			}
		}
		return card.UnknownStrategy(s)
	}
}

// WithGoal overrides the configured goal mode.
func WithGoal(g config.GoalMode) Option {
	return func(e *Encoder) error {
		e.goal = g
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(e *Encoder) error {
		e.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(e *Encoder) error {
		if e.tracer == nil {
			e.tracer = DefaultTracer{}
		}
		return nil
	},
}

type rule struct {
	name string
	emit func(e *Encoder) error
}

var rules = []rule{
	{"initial-state", (*Encoder).initialState},
	{"goal", (*Encoder).goalState},
	{"aggregates", (*Encoder).aggregates},
	{"duration-selection", (*Encoder).durationSelection},
	{"frame", (*Encoder).frame},
	{"side-alternation", (*Encoder).sideAlternation},
	{"capacity", (*Encoder).capacity},
	{"no-teleport", (*Encoder).noTeleport},
}

// Encode validates cfg and translates it into CNF. The same configuration
// and options always produce the same variables and clauses in the same
// order.
func Encode(cfg config.Config, options ...Option) (*Encoding, error) {
	e := &Encoder{}
	for _, option := range append(options, defaults...) {
		if err := option(e); err != nil {
			return nil, err
		}
	}
	if e.goal != "" {
		cfg.Goal = e.goal
	}
	if e.strategy != "" {
		cfg.Cardinality = string(e.strategy)
	}

	m, err := model.New(cfg)
	if err != nil {
		return nil, err
	}
	e.model = m
	e.strategy = card.Strategy(m.Config().Cardinality)
	e.goal = m.Goal()

	// Registering the catalogue up front keeps the ids of the model's
	// propositions independent of rule order.
	e.pool = pool.New()
	for _, k := range m.Keys() {
		e.pool.ID(k)
	}

	summaries := make([]RuleSummary, 0, len(rules))
	for _, r := range rules {
		before := e.cnf.Len()
		if err := r.emit(e); err != nil {
			return nil, errors.Wrapf(err, "encoding rule %s", r.name)
		}
		s := RuleSummary{Rule: r.name, Clauses: e.cnf.Len() - before, Variables: e.pool.Len()}
		e.tracer.Trace(s)
		summaries = append(summaries, s)
	}
	e.cnf.Vars = e.pool.Len()

	return &Encoding{Model: m, Pool: e.pool, CNF: e.cnf, Rules: summaries}, nil
}

func (e *Encoder) clause(ms ...model.Literal) {
	c := make(cnf.Clause, len(ms))
	for i, m := range ms {
		c[i] = e.pool.Lit(m)
	}
	e.cnf.Add(c)
}

// defineOr emits x ⇔ ∨ys. An empty ys forces x false.
func (e *Encoder) defineOr(x model.Literal, ys []model.Literal) {
	long := append([]model.Literal{x.Not()}, ys...)
	e.clause(long...)
	for _, y := range ys {
		e.clause(y.Not(), x)
	}
}

// defineAnd emits x ⇔ ∧ys. An empty ys forces x true.
func (e *Encoder) defineAnd(x model.Literal, ys []model.Literal) {
	long := []model.Literal{x}
	for _, y := range ys {
		long = append(long, y.Not())
	}
	e.clause(long...)
	for _, y := range ys {
		e.clause(x.Not(), y)
	}
}

func positive(keys []model.Key) []model.Literal {
	ms := make([]model.Literal, len(keys))
	for i, k := range keys {
		ms[i] = k.Pos()
	}
	return ms
}
