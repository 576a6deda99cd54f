package decoder

import (
	"fmt"
	"strings"

	"github.com/bridgeplan/crossing/pkg/crossing/config"
	"github.com/bridgeplan/crossing/pkg/crossing/model"
)

// InvalidSchedule lists the rules a Schedule breaks.
type InvalidSchedule struct {
	Violations []string
}

func (e *InvalidSchedule) Error() string {
	return fmt.Sprintf("invalid schedule: %s", strings.Join(e.Violations, "; "))
}

// Verify replays s against the puzzle of m: every item is on exactly one
// bank, no step carries more than the capacity, every change of bank is
// caused by a crossing that left from the right bank with the boat, and
// the goal is reached.
func Verify(s *Schedule, m *model.Model) error {
	v := &InvalidSchedule{}
	fail := func(format string, args ...interface{}) {
		v.Violations = append(v.Violations, fmt.Sprintf(format, args...))
	}

	if s.Horizon != m.Horizon() || s.Items != m.Items() || len(s.Steps) != m.Horizon()+1 {
		fail("shape %d items over %d steps does not match the puzzle", s.Items, len(s.Steps))
		return v
	}

	first := s.Steps[0]
	if first.Boat != Origin || first.DestinationCount() != 0 || len(first.Departures) != 0 {
		fail("t=0: everything must start idle on the origin bank")
	}

	// arriving[a][p] is the direction of the crossing of p that ends at a.
	arriving := make([]map[int]model.Direction, m.Horizon()+1)
	busyUntil := 0
	for t := 1; t <= m.Horizon(); t++ {
		step, prev := s.Steps[t], s.Steps[t-1]
		if step.OriginCount()+step.DestinationCount() != m.Items() {
			fail("t=%d: items are not on exactly one bank", t)
		}
		if len(step.Departures) > m.Capacity() {
			fail("t=%d: %d departures exceed capacity %d", t, len(step.Departures), m.Capacity())
		}
		if len(step.Departures) == 0 {
			continue
		}
		if t <= busyUntil {
			fail("t=%d: boat is still crossing", t)
		}
		for _, mv := range step.Departures {
			if mv.Duration != m.Duration(mv.Item) {
				fail("t=%d: item %d crosses in %d steps, needs %d", t, mv.Item, mv.Duration, m.Duration(mv.Item))
				continue
			}
			from := Origin
			if mv.Direction == model.Return {
				from = Destination
			}
			if s.Bank(mv.Item, t-1) != from {
				fail("t=%d: item %d leaves the %s bank without being there", t, mv.Item, from)
			}
			if prev.Boat != from {
				fail("t=%d: item %d leaves the %s bank without the boat", t, mv.Item, from)
			}
			if mv.Arrives > m.Horizon() {
				fail("t=%d: item %d arrives after the horizon", t, mv.Item)
				continue
			}
			if arriving[mv.Arrives] == nil {
				arriving[mv.Arrives] = make(map[int]model.Direction)
			}
			arriving[mv.Arrives][mv.Item] = mv.Direction
			if mv.Arrives > busyUntil {
				busyUntil = mv.Arrives
			}
		}
	}

	for t := 1; t <= m.Horizon(); t++ {
		for p := 1; p <= m.Items(); p++ {
			before, after := s.Bank(p, t-1), s.Bank(p, t)
			dir, ok := arriving[t][p]
			switch {
			case ok && dir == model.Forward && after != Destination:
				fail("t=%d: item %d crossed forward but is not on the destination bank", t, p)
			case ok && dir == model.Return && after != Origin:
				fail("t=%d: item %d returned but is not on the origin bank", t, p)
			case !ok && before != after:
				fail("t=%d: item %d changed bank without crossing", t, p)
			}
		}
	}

	if !reached(s, m.Goal()) {
		fail("goal %s is not reached", m.Goal())
	}

	if len(v.Violations) > 0 {
		return v
	}
	return nil
}

func reached(s *Schedule, goal config.GoalMode) bool {
	if goal == config.GoalEventual {
		seen := make(map[int]bool, s.Items)
		for _, step := range s.Steps[1:] {
			for _, p := range step.Destination {
				seen[p] = true
			}
		}
		return len(seen) == s.Items
	}
	for _, step := range s.Steps[1:] {
		if step.DestinationCount() == s.Items {
			return true
		}
	}
	return false
}
