package domain

// Represents a driver paired with a vehicle for one route.
// MaxShiftHours bounds the total route duration; a break of BreakMinutes is
// inserted once driving time since the last break reaches BreakAfterHours.
// When AllowOvertime is set, exceeding the shift is reported as a warning
// instead of an error.
type Driver struct {
	DriverID        string
	MaxShiftHours   float64
	BreakAfterHours float64
	BreakMinutes    float64
	AllowOvertime   bool
}
