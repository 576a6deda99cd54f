package decoder

import (
	"github.com/bridgeplan/crossing/pkg/crossing/model"
)

// Bank is one side of the crossing.
type Bank int

const (
	Origin Bank = iota
	Destination
)

func (b Bank) String() string {
	if b == Destination {
		return "destination"
	}
	return "origin"
}

// Move is one item leaving on a crossing.
type Move struct {
	Item      int
	Direction model.Direction
	// Duration and Arrives are zero when the step has no single active
	// trip duration.
	Duration int
	Arrives  int
}

// Step is the state of the world at the end of one time step, together
// with the crossings that started during it.
type Step struct {
	Time             int
	Boat             Bank
	Departures       []Move
	Durations        []int
	Arrival          bool
	AllOnDestination bool
	Origin           []int
	Destination      []int
}

func (s Step) OriginCount() int {
	return len(s.Origin)
}

func (s Step) DestinationCount() int {
	return len(s.Destination)
}

// Schedule has one Step for every time in 0..Horizon.
type Schedule struct {
	Horizon int
	Items   int
	Steps   []Step
}

// Bank returns where item p is at the end of step t.
func (s *Schedule) Bank(p, t int) Bank {
	for _, q := range s.Steps[t].Destination {
		if q == p {
			return Destination
		}
	}
	return Origin
}

// Moves returns every crossing of the schedule in departure order.
func (s *Schedule) Moves() []Move {
	var moves []Move
	for _, step := range s.Steps {
		moves = append(moves, step.Departures...)
	}
	return moves
}
