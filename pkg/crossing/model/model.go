package model

import (
	"sort"

	"github.com/bridgeplan/crossing/pkg/crossing/config"
)

// Model is the catalogue of propositions for one puzzle instance. A
// departure during step t by an item of duration d arrives at the end of
// step t+d-1; departures that cannot arrive by the horizon are not part
// of the model.
type Model struct {
	cfg     config.Config
	classes []int
}

// New validates cfg, after filling in defaults, and builds its Model.
func New(cfg config.Config) (*Model, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(cfg.Durations))
	var classes []int
	for _, d := range cfg.Durations {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		classes = append(classes, d)
	}
	sort.Ints(classes)

	return &Model{cfg: cfg, classes: classes}, nil
}

// Config returns the validated parameters the model was built from.
func (m *Model) Config() config.Config {
	return m.cfg
}

func (m *Model) Items() int {
	return len(m.cfg.Durations)
}

func (m *Model) Horizon() int {
	return m.cfg.Horizon
}

func (m *Model) Capacity() int {
	return m.cfg.Capacity
}

func (m *Model) Goal() config.GoalMode {
	return m.cfg.Goal
}

// Duration returns d(p) for item p in [1..Items()].
func (m *Model) Duration(p int) int {
	return m.cfg.Durations[p-1]
}

// Label returns the configured name of dir.
func (m *Model) Label(dir Direction) string {
	return m.cfg.Directions[dir]
}

// Classes returns the distinct item durations in ascending order.
func (m *Model) Classes() []int {
	return m.classes
}

// Times returns 0..T.
func (m *Model) Times() []int {
	ts := make([]int, m.cfg.Horizon+1)
	for i := range ts {
		ts[i] = i
	}
	return ts
}

// Steps returns 1..T, the steps during which crossings may start.
func (m *Model) Steps() []int {
	return m.Times()[1:]
}

// Arrives reports when a crossing of item p started during step t
// completes, and whether it completes within the horizon.
func (m *Model) Arrives(t, p int) (int, bool) {
	if t < 1 {
		return 0, false
	}
	a := t + m.Duration(p) - 1
	return a, a <= m.cfg.Horizon
}

// HasClass reports whether a trip of duration d may start during step t.
func (m *Model) HasClass(t, d int) bool {
	return t >= 1 && t+d-1 <= m.cfg.Horizon
}

// DepartureKeys returns the departure propositions of step t ordered by
// item, then direction. At t = 0 every departure is listed, so the
// initial state can forbid them.
func (m *Model) DepartureKeys(t int) []Key {
	var keys []Key
	for p := 1; p <= m.Items(); p++ {
		if _, ok := m.Arrives(t, p); t != 0 && !ok {
			continue
		}
		for _, dir := range Directions {
			keys = append(keys, Departure(t, p, dir))
		}
	}
	return keys
}

// DeparturesOfClass returns the departures of step t by items whose
// duration is exactly d.
func (m *Model) DeparturesOfClass(t, d int) []Key {
	var keys []Key
	for _, k := range m.DepartureKeys(t) {
		if m.Duration(k.Item) == d {
			keys = append(keys, k)
		}
	}
	return keys
}

// TripDurationKeys returns the duration classes that may start during
// step t.
func (m *Model) TripDurationKeys(t int) []Key {
	var keys []Key
	for _, d := range m.classes {
		if m.HasClass(t, d) {
			keys = append(keys, TripDuration(t, d))
		}
	}
	return keys
}

// DepartureArriving returns the departure of item p in direction dir that
// completes exactly at time a, if the model has one.
func (m *Model) DepartureArriving(p int, dir Direction, a int) (Key, bool) {
	t := a - m.Duration(p) + 1
	if t < 1 || a > m.cfg.Horizon {
		return Key{}, false
	}
	return Departure(t, p, dir), true
}

// TripsArriving returns the trip duration propositions whose crossing
// completes exactly at time a.
func (m *Model) TripsArriving(a int) []Key {
	var keys []Key
	for _, d := range m.classes {
		t := a - d + 1
		if m.HasClass(t, d) {
			keys = append(keys, TripDuration(t, d))
		}
	}
	return keys
}

// LocationKeys returns Location(p, t) for every item.
func (m *Model) LocationKeys(t int) []Key {
	keys := make([]Key, 0, m.Items())
	for p := 1; p <= m.Items(); p++ {
		keys = append(keys, Location(p, t))
	}
	return keys
}

// Keys returns every proposition of the model in canonical order: per
// time step, boat side, locations, departures, trip durations and the
// aggregates defined at that step.
func (m *Model) Keys() []Key {
	var keys []Key
	for _, t := range m.Times() {
		keys = append(keys, BoatSide(t))
		keys = append(keys, m.LocationKeys(t)...)
		keys = append(keys, m.DepartureKeys(t)...)
		keys = append(keys, m.TripDurationKeys(t)...)
		keys = append(keys, AnyDeparture(t))
		if t >= 1 {
			keys = append(keys, Arrival(t), AllOnDestination(t))
		}
	}
	return keys
}
