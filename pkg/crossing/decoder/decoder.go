package decoder

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/bridgeplan/crossing/pkg/crossing/model"
)

// Reverser maps variables back to the propositions they stand for.
// *pool.Pool satisfies it.
type Reverser interface {
	Reverse(id int) (model.Key, error)
	Len() int
}

// CorruptAssignment reports an assignment that does not belong to the
// encoding it is decoded against.
type CorruptAssignment struct {
	Literal int
	Reason  string
}

func (e *CorruptAssignment) Error() string {
	return fmt.Sprintf("corrupt assignment: literal %d: %s", e.Literal, e.Reason)
}

// Decode projects a satisfying assignment onto a Schedule. assignment
// holds signed variables; variables it does not mention read as false.
// Decoding is a pure function of its inputs. Repeated literals are read
// once.
func Decode(assignment []int, r Reverser, horizon, items int) (*Schedule, error) {
	if horizon < 1 || items < 1 {
		return nil, errors.Errorf("cannot decode a schedule of %d items over %d steps", items, horizon)
	}
	s := &Schedule{Horizon: horizon, Items: items, Steps: make([]Step, horizon+1)}
	located := make([][]bool, horizon+1)
	for t := range s.Steps {
		s.Steps[t].Time = t
		s.Steps[t].Boat = Destination
		located[t] = make([]bool, items+1)
	}

	seen := make(map[int]bool, len(assignment))
	for _, m := range assignment {
		id := m
		if id < 0 {
			id = -id
		}
		if id == 0 || id > r.Len() {
			return nil, &CorruptAssignment{Literal: m, Reason: "variable out of range"}
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		k, err := r.Reverse(id)
		if err != nil {
			return nil, &CorruptAssignment{Literal: m, Reason: err.Error()}
		}
		if k.Family == model.FamilyAuxiliary {
			continue
		}
		if err := checkIndices(k, horizon, items); err != "" {
			return nil, &CorruptAssignment{Literal: m, Reason: fmt.Sprintf("%s: %s", k, err)}
		}
		if m < 0 {
			continue
		}

		step := &s.Steps[k.Time]
		switch k.Family {
		case model.FamilyLocation:
			located[k.Time][k.Item] = true
		case model.FamilyDeparture:
			step.Departures = append(step.Departures, Move{Item: k.Item, Direction: k.Direction})
		case model.FamilyBoatSide:
			step.Boat = Origin
		case model.FamilyTripDuration:
			step.Durations = append(step.Durations, k.Duration)
		case model.FamilyArrival:
			step.Arrival = true
		case model.FamilyAllOnDestination:
			step.AllOnDestination = true
		}
	}

	for t := range s.Steps {
		step := &s.Steps[t]
		for p := 1; p <= items; p++ {
			if located[t][p] {
				step.Destination = append(step.Destination, p)
			} else {
				step.Origin = append(step.Origin, p)
			}
		}
		sort.Ints(step.Durations)
		sort.Slice(step.Departures, func(i, j int) bool {
			a, b := step.Departures[i], step.Departures[j]
			if a.Item != b.Item {
				return a.Item < b.Item
			}
			return a.Direction < b.Direction
		})
		if len(step.Durations) == 1 {
			d := step.Durations[0]
			for i := range step.Departures {
				step.Departures[i].Duration = d
				step.Departures[i].Arrives = t + d - 1
			}
		}
	}
	return s, nil
}

func checkIndices(k model.Key, horizon, items int) string {
	if k.Time < 0 || k.Time > horizon {
		return fmt.Sprintf("time outside [0..%d]", horizon)
	}
	switch k.Family {
	case model.FamilyLocation, model.FamilyDeparture:
		if k.Item < 1 || k.Item > items {
			return fmt.Sprintf("item outside [1..%d]", items)
		}
	case model.FamilyTripDuration:
		if k.Duration < 1 {
			return "non-positive duration"
		}
	}
	return ""
}
