package sim

import (
	"fmt"
	"math"
	"time"
)

// Clock represents the virtual simulation time.
type Clock time.Duration

// ClockInfinity is the maximum Clock value.
const ClockInfinity = Clock(math.MaxInt64)

// Seconds returns the clock value in seconds.
func (c Clock) Seconds() float64 {
	return time.Duration(c).Seconds()
}

// Milliseconds returns the clock value in whole milliseconds.
func (c Clock) Milliseconds() int64 {
	return time.Duration(c).Milliseconds()
}

// Duration converts the clock value back to a time.Duration.
func (c Clock) Duration() time.Duration {
	return time.Duration(c)
}

func (c Clock) StringMS() string {
	return fmt.Sprintf("%f", time.Duration(c).Seconds()*1000)
}

func (c Clock) String() string {
	return fmt.Sprintf("%f", time.Duration(c).Seconds())
}
