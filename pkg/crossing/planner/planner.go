package planner

import (
	"context"
	"fmt"
	"io/ioutil"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bridgeplan/crossing/pkg/crossing/config"
	"github.com/bridgeplan/crossing/pkg/crossing/decoder"
	"github.com/bridgeplan/crossing/pkg/crossing/encoder"
	"github.com/bridgeplan/crossing/pkg/crossing/solve"
	"github.com/bridgeplan/crossing/pkg/metrics"
)

var Incomplete = errors.New("cancelled before a plan could be found")

// NoPlan is returned by MinimalHorizon when every horizon up to Horizon
// is unsatisfiable.
type NoPlan struct {
	Horizon int
}

func (e *NoPlan) Error() string {
	return fmt.Sprintf("no plan within %d steps", e.Horizon)
}

// Outcome of planning one puzzle instance. Schedule is set only when
// Status is Satisfiable.
type Outcome struct {
	Status   solve.Status
	Schedule *decoder.Schedule
	Encoding *encoder.Encoding
	Reason   string
}

type Planner struct {
	// mu serializes calls into the tracer and the emitters, which
	// MinimalHorizon reaches from several goroutines.
	mu              sync.Mutex
	solver          solve.Solver
	logger          logrus.FieldLogger
	tracer          encoder.Tracer
	encodingEmitter func(strategy, goal string, variables, clauses int)
	solveEmitter    func(outcome string, duration time.Duration)
	parallelism     int
}

type Option func(p *Planner) error

func WithSolver(s solve.Solver) Option {
	return func(p *Planner) error {
		p.solver = s
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Planner) error {
		p.logger = l
		return nil
	}
}

func WithTracer(t encoder.Tracer) Option {
	return func(p *Planner) error {
		p.tracer = t
		return nil
	}
}

// WithMetrics installs the functions called after every encoding and
// every solver call. The planner never calls them concurrently.
func WithMetrics(encodingEmitter func(strategy, goal string, variables, clauses int), solveEmitter func(outcome string, duration time.Duration)) Option {
	return func(p *Planner) error {
		p.encodingEmitter = encodingEmitter
		p.solveEmitter = solveEmitter
		return nil
	}
}

// WithPrometheus reports to the collectors of pkg/metrics.
func WithPrometheus() Option {
	return WithMetrics(metrics.EmitEncoding, metrics.RegisterSolveDuration)
}

// WithParallelism bounds the number of horizons MinimalHorizon solves at
// once.
func WithParallelism(n int) Option {
	return func(p *Planner) error {
		if n < 1 {
			return errors.Errorf("parallelism must be at least 1, got %d", n)
		}
		p.parallelism = n
		return nil
	}
}

var defaults = []Option{
	func(p *Planner) error {
		if p.solver == nil {
			p.solver = solve.NewGini()
		}
		return nil
	},
	func(p *Planner) error {
		if p.logger == nil {
			l := logrus.New()
			l.SetOutput(ioutil.Discard)
			p.logger = l
		}
		return nil
	},
	func(p *Planner) error {
		if p.tracer == nil {
			p.tracer = encoder.DefaultTracer{}
		}
		return nil
	},
	func(p *Planner) error {
		if p.encodingEmitter == nil {
			p.encodingEmitter = func(string, string, int, int) {}
		}
		if p.solveEmitter == nil {
			p.solveEmitter = func(string, time.Duration) {}
		}
		return nil
	},
	func(p *Planner) error {
		if p.parallelism == 0 {
			p.parallelism = runtime.NumCPU()
		}
		return nil
	},
}

func New(options ...Option) (*Planner, error) {
	p := &Planner{}
	for _, option := range append(options, defaults...) {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// lockedTracer forwards to the planner's tracer under its lock.
type lockedTracer struct {
	p *Planner
}

func (t lockedTracer) Trace(s encoder.RuleSummary) {
	t.p.mu.Lock()
	defer t.p.mu.Unlock()
	t.p.tracer.Trace(s)
}

func (p *Planner) emitEncoding(strategy, goal string, variables, clauses int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.encodingEmitter(strategy, goal, variables, clauses)
}

func (p *Planner) emitSolve(outcome string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.solveEmitter(outcome, d)
}

// Plan encodes cfg, solves it and decodes the schedule. Unsatisfiable and
// Indeterminate instances are reported through Outcome.Status; errors are
// reserved for invalid input and solver failures.
func (p *Planner) Plan(ctx context.Context, cfg config.Config) (*Outcome, error) {
	enc, err := encoder.Encode(cfg, encoder.WithTracer(lockedTracer{p: p}))
	if err != nil {
		return nil, err
	}
	m := enc.Model
	logger := p.logger.WithFields(logrus.Fields{
		"items":    m.Items(),
		"capacity": m.Capacity(),
		"horizon":  m.Horizon(),
	})
	p.emitEncoding(m.Config().Cardinality, string(m.Goal()), enc.CNF.Vars, enc.CNF.Len())
	logger.WithFields(logrus.Fields{
		"variables": enc.CNF.Vars,
		"clauses":   enc.CNF.Len(),
	}).Debug("encoded puzzle")

	start := time.Now()
	r, err := p.solver.Solve(ctx, enc.CNF)
	if err != nil {
		p.emitSolve(metrics.Failed, time.Since(start))
		return nil, errors.Wrap(err, "solving puzzle")
	}
	p.emitSolve(r.Status.String(), time.Since(start))
	logger.WithField("status", r.Status).Debug("solved puzzle")

	out := &Outcome{Status: r.Status, Encoding: enc, Reason: r.Reason}
	if r.Status != solve.Satisfiable {
		return out, nil
	}
	if !enc.CNF.Eval(r.Assignment) {
		return nil, errors.New("solver returned an assignment that falsifies the encoding")
	}

	s, err := decoder.Decode(r.Assignment, enc.Pool, m.Horizon(), m.Items())
	if err != nil {
		return nil, errors.Wrap(err, "decoding assignment")
	}
	if err := decoder.Verify(s, m); err != nil {
		return nil, errors.Wrap(err, "decoded schedule")
	}
	out.Schedule = s
	return out, nil
}

// MinimalHorizon plans cfg for every horizon in 1..maxHorizon, ignoring
// cfg.Horizon, and returns the outcome of the least satisfiable one.
// Horizons are solved concurrently; once every horizon below a
// satisfiable one is decided, the larger ones are abandoned.
func (p *Planner) MinimalHorizon(ctx context.Context, cfg config.Config, maxHorizon int) (*Outcome, error) {
	if maxHorizon < 1 {
		return nil, errors.Errorf("maximum horizon must be at least 1, got %d", maxHorizon)
	}
	probe := cfg
	probe.Horizon = maxHorizon
	if err := probe.WithDefaults().Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]*Outcome, maxHorizon+1)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	sweep, settle := context.WithCancel(gctx)
	defer settle()
	g.SetLimit(p.parallelism)
	for h := 1; h <= maxHorizon; h++ {
		h := h
		g.Go(func() error {
			if sweep.Err() != nil && ctx.Err() == nil {
				return nil
			}
			c := cfg
			c.Horizon = h
			out, err := p.Plan(sweep, c)
			if err != nil {
				return errors.Wrapf(err, "horizon %d", h)
			}
			mu.Lock()
			defer mu.Unlock()
			outcomes[h] = out
			if settled(outcomes) {
				settle()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for h := 1; h <= maxHorizon; h++ {
		if outcomes[h] == nil {
			return nil, errors.Wrapf(Incomplete, "horizon %d", h)
		}
		switch outcomes[h].Status {
		case solve.Satisfiable:
			p.logger.WithField("horizon", h).Info("found minimal horizon")
			return outcomes[h], nil
		case solve.Indeterminate:
			return nil, errors.Wrapf(Incomplete, "horizon %d: %s", h, outcomes[h].Reason)
		}
	}
	return nil, &NoPlan{Horizon: maxHorizon}
}

// settled reports whether the least horizon with a definite answer is
// known: outcomes holds a prefix of unsatisfiable horizons followed by a
// satisfiable or indeterminate one.
func settled(outcomes []*Outcome) bool {
	for _, out := range outcomes[1:] {
		if out == nil {
			return false
		}
		if out.Status != solve.Unsatisfiable {
			return true
		}
	}
	return false
}
