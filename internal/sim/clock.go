package sim

// Clock accumulates wall-clock delta into fixed simulation steps and holds
// the integer speed multiplier and pause flag (§4.6).
type Clock struct {
	accum  float64
	Speed  int
	Paused bool
}

// ValidSpeeds enumerates the permitted speed multipliers.
var ValidSpeeds = []int{1, 2, 4, 8, 16}

func NewClock() *Clock {
	return &Clock{Speed: 1}
}

func IsValidSpeed(s int) bool {
	for _, v := range ValidSpeeds {
		if v == s {
			return true
		}
	}
	return false
}

// Advance accumulates realDt*speed seconds (unless paused, which freezes
// accumulation but never discards the buffer) and returns the number of
// dt_fixed steps due, each of which the caller must realize as exactly one
// PredictionBuffer shift.
func (c *Clock) Advance(realDt float64) int {
	if c.Paused {
		return 0
	}
	c.accum += realDt * float64(c.Speed)
	steps := 0
	for c.accum >= DtFixed {
		c.accum -= DtFixed
		steps++
	}
	return steps
}
