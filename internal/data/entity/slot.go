package entity

// TimeSlot is the derived availability of one hourly slot.
type TimeSlot struct {
	Time           ClockTime
	TotalSeats     int
	AvailableSeats int
	IsAvailable    bool
}

func (s TimeSlot) Label() string {
	switch {
	case s.AvailableSeats == 0:
		return "Fully Booked"
	case s.AvailableSeats <= 10:
		return "Almost Full"
	case s.AvailableSeats <= 30:
		return "Filling Fast"
	default:
		return "Good Availability"
	}
}
