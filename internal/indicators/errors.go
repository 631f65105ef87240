package indicators

import "fmt"

// InsufficientDataError is returned when a bar series is shorter than the
// minimum required for the requested period.
type InsufficientDataError struct {
	Indicator string
	Need      int
	Have      int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d bars, have %d", e.Indicator, e.Need, e.Have)
}
