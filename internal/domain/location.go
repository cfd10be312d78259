package domain

import "time"

// Delivery urgency of a location. Priorities bias the order in which
// locations are considered; they are never a hard constraint.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Rank returns the sort weight of a priority. Lower ranks sort first;
// unknown values rank as normal.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Half-open service interval [Start, End). An arrival at or after End is late,
// an arrival before Start is early.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Represents a single place a vehicle must visit.
// A Location is immutable planning input: demand is expressed in the same
// capacity units as Vehicle.Capacity, and Requirements list capability tags
// the serving vehicle must carry.
type Location struct {
	LocationID     string
	Name           string
	Coordinates    Coordinates
	Window         *TimeWindow
	ServiceMinutes float64
	Demand         float64
	Priority       Priority
	Requirements   []string
}
