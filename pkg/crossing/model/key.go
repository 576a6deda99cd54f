package model

import "fmt"

// Direction is the sense of a crossing.
type Direction uint8

const (
	// Forward crossings go from the origin bank to the destination bank.
	Forward Direction = iota
	// Return crossings go from the destination bank back to the origin.
	Return
)

// Directions lists both directions in encoding order.
var Directions = [2]Direction{Forward, Return}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Return:
		return "return"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Family tags the kind of proposition a Key stands for.
type Family uint8

const (
	FamilyLocation Family = iota + 1
	FamilyDeparture
	FamilyBoatSide
	FamilyTripDuration
	FamilyArrival
	FamilyAnyDeparture
	FamilyAllOnDestination
	// FamilyAuxiliary keys are helper variables introduced by clause
	// generators; they carry no meaning for the schedule.
	FamilyAuxiliary
)

func (f Family) String() string {
	switch f {
	case FamilyLocation:
		return "loc"
	case FamilyDeparture:
		return "dep"
	case FamilyBoatSide:
		return "side"
	case FamilyTripDuration:
		return "dur"
	case FamilyArrival:
		return "arr"
	case FamilyAnyDeparture:
		return "anydep"
	case FamilyAllOnDestination:
		return "all"
	case FamilyAuxiliary:
		return "aux"
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

// Key identifies one proposition of the encoding. Only the fields used by
// its Family are set, so two Keys naming the same proposition are equal
// and Key can be used as a map key.
type Key struct {
	Family    Family
	Time      int
	Item      int
	Direction Direction
	Duration  int
	Index     int
}

// Location is true iff item p is on the destination bank at time t.
func Location(p, t int) Key {
	return Key{Family: FamilyLocation, Item: p, Time: t}
}

// Departure is true iff item p begins a crossing in direction dir
// during step t.
func Departure(t, p int, dir Direction) Key {
	return Key{Family: FamilyDeparture, Time: t, Item: p, Direction: dir}
}

// BoatSide is true iff the boat is at the origin bank at time t.
func BoatSide(t int) Key {
	return Key{Family: FamilyBoatSide, Time: t}
}

// TripDuration is true iff the crossing starting during step t is of
// duration class d.
func TripDuration(t, d int) Key {
	return Key{Family: FamilyTripDuration, Time: t, Duration: d}
}

// Arrival is true iff a crossing completes at time t.
func Arrival(t int) Key {
	return Key{Family: FamilyArrival, Time: t}
}

// AnyDeparture is true iff at least one item departs during step t.
func AnyDeparture(t int) Key {
	return Key{Family: FamilyAnyDeparture, Time: t}
}

// AllOnDestination is true iff every item is on the destination bank at
// time t.
func AllOnDestination(t int) Key {
	return Key{Family: FamilyAllOnDestination, Time: t}
}

// Auxiliary names the n'th helper variable.
func Auxiliary(n int) Key {
	return Key{Family: FamilyAuxiliary, Index: n}
}

func (k Key) String() string {
	switch k.Family {
	case FamilyLocation:
		return fmt.Sprintf("loc(p=%d,t=%d)", k.Item, k.Time)
	case FamilyDeparture:
		return fmt.Sprintf("dep(t=%d,p=%d,%s)", k.Time, k.Item, k.Direction)
	case FamilyBoatSide:
		return fmt.Sprintf("side(t=%d)", k.Time)
	case FamilyTripDuration:
		return fmt.Sprintf("dur(t=%d,d=%d)", k.Time, k.Duration)
	case FamilyArrival:
		return fmt.Sprintf("arr(t=%d)", k.Time)
	case FamilyAnyDeparture:
		return fmt.Sprintf("anydep(t=%d)", k.Time)
	case FamilyAllOnDestination:
		return fmt.Sprintf("all(t=%d)", k.Time)
	case FamilyAuxiliary:
		return fmt.Sprintf("aux(%d)", k.Index)
	}
	return fmt.Sprintf("unknown(%d)", uint8(k.Family))
}

// Literal is a Key with a polarity.
type Literal struct {
	Key     Key
	Negated bool
}

// Pos returns the affirmed literal of k.
func (k Key) Pos() Literal {
	return Literal{Key: k}
}

// Neg returns the negated literal of k.
func (k Key) Neg() Literal {
	return Literal{Key: k, Negated: true}
}

// Not returns the complement of m.
func (m Literal) Not() Literal {
	return Literal{Key: m.Key, Negated: !m.Negated}
}

func (m Literal) String() string {
	if m.Negated {
		return "-" + m.Key.String()
	}
	return m.Key.String()
}
