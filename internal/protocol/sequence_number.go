package protocol

import "fmt"

const snModulus uint16 = 1024

// A SequenceNumber10 is a 10-bit UM sequence number. Comparisons are made
// relative to a modulus base: two sequence numbers compare by the distance
// (x - base) mod 2^10, so the caller must refresh the base to the lower edge
// of the reordering window before comparing.
type SequenceNumber10 struct {
	value       uint16
	modulusBase uint16
}

// NewSequenceNumber10 returns a sequence number with modulus base 0.
func NewSequenceNumber10(value uint16) SequenceNumber10 {
	return SequenceNumber10{value: value % snModulus}
}

// Value returns the raw 10-bit value.
func (s SequenceNumber10) Value() uint16 {
	return s.value
}

// SetModulusBase sets the base against which this number compares.
func (s *SequenceNumber10) SetModulusBase(base SequenceNumber10) {
	s.modulusBase = base.value
}

// Add returns the sequence number advanced by delta, keeping the base.
func (s SequenceNumber10) Add(delta uint16) SequenceNumber10 {
	return SequenceNumber10{
		value:       (s.value + delta) % snModulus,
		modulusBase: s.modulusBase,
	}
}

// Sub returns the sequence number moved back by delta, keeping the base.
func (s SequenceNumber10) Sub(delta uint16) SequenceNumber10 {
	return SequenceNumber10{
		value:       (s.value + snModulus - delta%snModulus) % snModulus,
		modulusBase: s.modulusBase,
	}
}

// distance is the offset of the value from its own modulus base.
func (s SequenceNumber10) distance() uint16 {
	return (s.value + snModulus - s.modulusBase%snModulus) % snModulus
}

func (s SequenceNumber10) Equal(other SequenceNumber10) bool {
	return s.value == other.value
}

func (s SequenceNumber10) Less(other SequenceNumber10) bool {
	return s.distance() < other.distance()
}

func (s SequenceNumber10) LessEq(other SequenceNumber10) bool {
	return s.distance() <= other.distance()
}

func (s SequenceNumber10) Greater(other SequenceNumber10) bool {
	return s.distance() > other.distance()
}

func (s SequenceNumber10) GreaterEq(other SequenceNumber10) bool {
	return s.distance() >= other.distance()
}

func (s SequenceNumber10) String() string {
	return fmt.Sprintf("%d", s.value)
}
