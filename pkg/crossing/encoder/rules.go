package encoder

import (
	"github.com/bridgeplan/crossing/pkg/crossing/card"
	"github.com/bridgeplan/crossing/pkg/crossing/config"
	"github.com/bridgeplan/crossing/pkg/crossing/model"
)

// initialState puts every item and the boat on the origin bank and
// forbids departures at t = 0.
func (e *Encoder) initialState() error {
	e.clause(model.BoatSide(0).Pos())
	for _, k := range e.model.LocationKeys(0) {
		e.clause(k.Neg())
	}
	for _, k := range e.model.DepartureKeys(0) {
		e.clause(k.Neg())
	}
	return nil
}

func (e *Encoder) goalState() error {
	switch e.goal {
	case config.GoalEventual:
		for p := 1; p <= e.model.Items(); p++ {
			var c []model.Literal
			for _, t := range e.model.Steps() {
				c = append(c, model.Location(p, t).Pos())
			}
			e.clause(c...)
		}
	default:
		var c []model.Literal
		for _, t := range e.model.Steps() {
			c = append(c, model.AllOnDestination(t).Pos())
		}
		e.clause(c...)
	}
	return nil
}

func (e *Encoder) aggregates() error {
	for _, t := range e.model.Times() {
		e.defineOr(model.AnyDeparture(t).Pos(), positive(e.model.DepartureKeys(t)))
	}
	for _, t := range e.model.Steps() {
		e.defineAnd(model.AllOnDestination(t).Pos(), positive(e.model.LocationKeys(t)))
	}
	for _, t := range e.model.Steps() {
		e.defineOr(model.Arrival(t).Pos(), positive(e.model.TripsArriving(t)))
	}
	return nil
}

// durationSelection ties every departure of a step to the trip duration
// of its class. A step's crew shares one duration.
func (e *Encoder) durationSelection() error {
	for _, t := range e.model.Steps() {
		for _, k := range e.model.DepartureKeys(t) {
			e.clause(k.Neg(), model.TripDuration(t, e.model.Duration(k.Item)).Pos())
		}
		for _, td := range e.model.TripDurationKeys(t) {
			members := positive(e.model.DeparturesOfClass(t, td.Duration))
			e.clause(append([]model.Literal{td.Neg()}, members...)...)
			for _, k := range e.model.DepartureKeys(t) {
				if e.model.Duration(k.Item) != td.Duration {
					e.clause(td.Neg(), k.Neg())
				}
			}
		}
	}
	return nil
}

// frame changes an item's bank only when one of its crossings arrives,
// and only if the item was on the bank the crossing left from.
func (e *Encoder) frame() error {
	for p := 1; p <= e.model.Items(); p++ {
		for _, a := range e.model.Steps() {
			prev, cur := model.Location(p, a-1), model.Location(p, a)
			f, hasF := e.model.DepartureArriving(p, model.Forward, a)
			r, hasR := e.model.DepartureArriving(p, model.Return, a)

			if hasF {
				e.clause(f.Neg(), cur.Pos())
			}
			if hasR {
				e.clause(prev.Neg(), r.Pos(), cur.Pos())
				if hasF {
					e.clause(cur.Neg(), f.Pos(), r.Neg())
				} else {
					e.clause(cur.Neg(), r.Neg())
				}
			} else {
				e.clause(prev.Neg(), cur.Pos())
			}
		}
		for _, t := range e.model.Steps() {
			if _, ok := e.model.Arrives(t, p); !ok {
				continue
			}
			before := model.Location(p, t-1)
			e.clause(model.Departure(t, p, model.Forward).Neg(), before.Neg())
			e.clause(model.Departure(t, p, model.Return).Neg(), before.Pos())
		}
	}
	return nil
}

// sideAlternation moves the boat with every crossing and keeps it in
// place otherwise.
func (e *Encoder) sideAlternation() error {
	for _, t := range e.model.Steps() {
		before := model.BoatSide(t - 1)
		for _, k := range e.model.DepartureKeys(t) {
			a, _ := e.model.Arrives(t, k.Item)
			after := model.BoatSide(a)
			switch k.Direction {
			case model.Forward:
				e.clause(k.Neg(), before.Pos())
				e.clause(k.Neg(), after.Neg())
			case model.Return:
				e.clause(k.Neg(), before.Neg())
				e.clause(k.Neg(), after.Pos())
			}
		}
	}
	for _, t := range e.model.Steps() {
		arr := model.Arrival(t)
		e.clause(arr.Pos(), model.BoatSide(t-1).Neg(), model.BoatSide(t).Pos())
		e.clause(arr.Pos(), model.BoatSide(t-1).Pos(), model.BoatSide(t).Neg())
	}
	for _, t := range e.model.Steps() {
		for _, td := range e.model.TripDurationKeys(t) {
			for busy := t + 1; busy <= t+td.Duration-1; busy++ {
				e.clause(td.Neg(), model.AnyDeparture(busy).Neg())
			}
		}
	}
	return nil
}

func (e *Encoder) capacity() error {
	for _, t := range e.model.Steps() {
		var lits []int
		for _, k := range e.model.DepartureKeys(t) {
			lits = append(lits, e.pool.ID(k))
		}
		cs, err := card.AtMost(lits, e.model.Capacity(), e.strategy, e.pool)
		if err != nil {
			return err
		}
		for _, c := range cs {
			e.cnf.Add(c)
		}

		c := []model.Literal{model.AnyDeparture(t).Neg()}
		e.clause(append(c, positive(e.model.TripDurationKeys(t))...)...)
	}
	return nil
}

// noTeleport keeps an item off the destination bank unless it was
// already there or a forward crossing of it arrives.
func (e *Encoder) noTeleport() error {
	for p := 1; p <= e.model.Items(); p++ {
		for _, a := range e.model.Steps() {
			c := []model.Literal{model.Location(p, a).Neg(), model.Location(p, a-1).Pos()}
			if f, ok := e.model.DepartureArriving(p, model.Forward, a); ok {
				c = append(c, f.Pos())
			}
			e.clause(c...)
		}
	}
	return nil
}
