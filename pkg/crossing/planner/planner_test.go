package planner

import (
	"bytes"
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/bridgeplan/crossing/pkg/crossing/cache"
	"github.com/bridgeplan/crossing/pkg/crossing/cnf"
	"github.com/bridgeplan/crossing/pkg/crossing/config"
	"github.com/bridgeplan/crossing/pkg/crossing/decoder"
	"github.com/bridgeplan/crossing/pkg/crossing/encoder"
	"github.com/bridgeplan/crossing/pkg/crossing/model"
	"github.com/bridgeplan/crossing/pkg/crossing/solve"
	"github.com/bridgeplan/crossing/pkg/metrics"
)

var _ = Describe("Planner", func() {
	var (
		ctx context.Context
		p   *Planner
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		p, err = New()
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Plan", func() {
		It("moves a single item across in one step", func() {
			out, err := p.Plan(ctx, config.Config{Durations: []int{1}, Capacity: 1, Horizon: 1})
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Status).To(Equal(solve.Satisfiable))
			Expect(out.Schedule.Steps[1].Departures).To(Equal([]decoder.Move{
				{Item: 1, Direction: model.Forward, Duration: 1, Arrives: 1},
			}))
			Expect(out.Schedule.Steps[1].Destination).To(Equal([]int{1}))
		})

		It("reports an item slower than the horizon as unsatisfiable", func() {
			out, err := p.Plan(ctx, config.Config{Durations: []int{100}, Capacity: 1, Horizon: 5})
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Status).To(Equal(solve.Unsatisfiable))
			Expect(out.Schedule).To(BeNil())
		})

		It("reports a boat without seats as unsatisfiable", func() {
			out, err := p.Plan(ctx, config.Config{Durations: []int{1, 2}, Capacity: 0, Horizon: 6})
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Status).To(Equal(solve.Unsatisfiable))
		})

		It("rejects an invalid configuration before encoding", func() {
			_, err := p.Plan(ctx, config.Config{Capacity: 1, Horizon: 1})
			var invalid *config.InvalidConfiguration
			Expect(err).To(BeAssignableToTypeOf(invalid))
		})

		It("distinguishes the goal modes", func() {
			cfg := config.Config{Durations: []int{1, 1}, Capacity: 1, Horizon: 3}

			out, err := p.Plan(ctx, cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Status).To(Equal(solve.Unsatisfiable))

			cfg.Goal = config.GoalEventual
			out, err = p.Plan(ctx, cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Status).To(Equal(solve.Satisfiable))
			Expect(decoder.Verify(out.Schedule, out.Encoding.Model)).To(Succeed())
		})

		It("returns an indeterminate outcome when cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			out, err := p.Plan(cancelled, config.Config{Durations: []int{1, 1, 1}, Capacity: 2, Horizon: 3})
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Status).To(Equal(solve.Indeterminate))
			Expect(out.Reason).To(Equal(context.Canceled.Error()))
		})
	})

	Describe("MinimalHorizon", func() {
		It("finds the least horizon for three items and two seats", func() {
			out, err := p.MinimalHorizon(ctx, config.Config{Durations: []int{1, 1, 1}, Capacity: 2}, 6)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Schedule.Horizon).To(Equal(3))
			Expect(out.Schedule.Steps[3].AllOnDestination).To(BeTrue())
		})

		It("accounts for an item that must cross alone", func() {
			out, err := p.MinimalHorizon(ctx, config.Config{Durations: []int{1, 1, 2}, Capacity: 2}, 8)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Schedule.Horizon).To(Equal(6))
		})

		It("stops solving once the least horizon is known", func() {
			var solves []string
			p, err := New(
				WithParallelism(1),
				WithMetrics(func(string, string, int, int) {}, func(outcome string, _ time.Duration) { solves = append(solves, outcome) }),
			)
			Expect(err).ToNot(HaveOccurred())

			out, err := p.MinimalHorizon(ctx, config.Config{Durations: []int{1, 1, 1}, Capacity: 2}, 8)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Schedule.Horizon).To(Equal(3))
			Expect(solves).To(Equal([]string{metrics.Unsatisfiable, metrics.Unsatisfiable, metrics.Satisfiable}))
		})

		It("shares one tracer and one set of emitters across horizons", func() {
			trace := &strings.Builder{}
			var encodings, solves int
			p, err := New(
				WithParallelism(4),
				WithTracer(&encoder.LoggingTracer{Writer: trace}),
				WithMetrics(
					func(string, string, int, int) { encodings++ },
					func(string, time.Duration) { solves++ },
				),
			)
			Expect(err).ToNot(HaveOccurred())

			out, err := p.MinimalHorizon(ctx, config.Config{Durations: []int{1, 1, 1}, Capacity: 2}, 8)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Schedule.Horizon).To(Equal(3))

			Expect(encodings).To(BeNumerically(">=", 3))
			Expect(solves).To(Equal(encodings))
			lines := strings.Split(strings.TrimSuffix(trace.String(), "\n"), "\n")
			Expect(lines).To(HaveLen(8 * encodings))
			for _, line := range lines {
				Expect(line).To(MatchRegexp(`^rule [a-z-]+: \d+ clauses, \d+ variables$`))
			}
		})

		It("reports when no horizon suffices", func() {
			_, err := p.MinimalHorizon(ctx, config.Config{Durations: []int{1, 1}, Capacity: 1}, 4)
			Expect(err).To(MatchError(&NoPlan{Horizon: 4}))
		})

		It("rejects a non-positive bound", func() {
			_, err := p.MinimalHorizon(ctx, config.Config{Durations: []int{1}, Capacity: 1}, 0)
			Expect(err).To(HaveOccurred())
		})

		It("fails with Incomplete when cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := p.MinimalHorizon(cancelled, config.Config{Durations: []int{1}, Capacity: 1}, 2)
			Expect(err).To(MatchError(Incomplete))
		})
	})

	Describe("Options", func() {
		It("rejects a parallelism below one", func() {
			_, err := New(WithParallelism(0))
			Expect(err).To(HaveOccurred())
		})

		It("logs, traces and emits metrics", func() {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)
			var trace bytes.Buffer
			var encodings, solves []string
			p, err := New(
				WithLogger(logger),
				WithTracer(&encoder.LoggingTracer{Writer: &trace}),
				WithMetrics(
					func(strategy, goal string, _, _ int) { encodings = append(encodings, strategy+"/"+goal) },
					func(outcome string, _ time.Duration) { solves = append(solves, outcome) },
				),
			)
			Expect(err).ToNot(HaveOccurred())

			_, err = p.Plan(ctx, config.Config{Durations: []int{1}, Capacity: 1, Horizon: 1, Cardinality: "sortnet"})
			Expect(err).ToNot(HaveOccurred())

			Expect(encodings).To(Equal([]string{"sortnet/simultaneous"}))
			Expect(solves).To(Equal([]string{metrics.Satisfiable}))
			Expect(trace.String()).To(ContainSubstring("rule capacity:"))
			Expect(hook.Entries).To(HaveLen(2))
			Expect(hook.LastEntry().Data).To(HaveKeyWithValue("status", solve.Satisfiable))
		})

		It("refuses an assignment that falsifies the encoding", func() {
			p, err := New(WithSolver(forgedSolver{}))
			Expect(err).ToNot(HaveOccurred())

			_, err = p.Plan(ctx, config.Config{Durations: []int{1}, Capacity: 1, Horizon: 1})
			Expect(err).To(MatchError(ContainSubstring("falsifies the encoding")))
		})

		It("serves repeated plans from a cached solver", func() {
			store := cache.NewMemory()
			var solves []string
			p, err := New(
				WithSolver(solve.NewCaching(solve.NewGophersat(), store, "planner")),
				WithMetrics(func(string, string, int, int) {}, func(outcome string, _ time.Duration) { solves = append(solves, outcome) }),
			)
			Expect(err).ToNot(HaveOccurred())

			cfg := config.Config{Durations: []int{1, 1, 1}, Capacity: 2, Horizon: 3}
			first, err := p.Plan(ctx, cfg)
			Expect(err).ToNot(HaveOccurred())
			second, err := p.Plan(ctx, cfg)
			Expect(err).ToNot(HaveOccurred())

			Expect(second.Schedule).To(Equal(first.Schedule))
			Expect(solves).To(Equal([]string{metrics.Satisfiable, metrics.Satisfiable}))
		})
	})
})

// forgedSolver claims every formula is satisfied by the all-false
// assignment.
type forgedSolver struct{}

func (forgedSolver) Solve(_ context.Context, _ cnf.CNF) (solve.Result, error) {
	return solve.Result{Status: solve.Satisfiable}, nil
}
