package booking

import "time"

// Clock supplies "now" to the service layer so validation and refund
// decisions stay testable. The engine functions never read it themselves.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// SystemClock returns a Clock backed by the system time in UTC.
func SystemClock() Clock {
	return systemClock{}
}
