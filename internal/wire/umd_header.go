package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
)

// Framing Info flags. A zero bit means the PDU boundary coincides with an
// SDU boundary on that side.
const (
	FIFirstByte   uint8 = 0x00
	FINoFirstByte uint8 = 0x02
	FILastByte    uint8 = 0x00
	FINoLastByte  uint8 = 0x01
)

// Extension bit values
const (
	// DataFieldFollows terminates the E/LI chain
	DataFieldFollows uint8 = 0
	// ELiFieldsFollow announces another (E, LI) pair
	ELiFieldsFollow uint8 = 1
)

var (
	errNoExtensionBits    = errors.New("UmdHeader: no extension bits left")
	errNoLengthIndicators = errors.New("UmdHeader: no length indicators left")
)

// An UmdHeader is the header of an UM data PDU: a fixed two-octet part
// carrying framing info and the 10-bit sequence number, followed by packed
// 12-bit (E, LI) pairs, one per concatenated SDU except the last.
type UmdHeader struct {
	framingInfo    uint8
	sequenceNumber protocol.SequenceNumber10

	extensionBits    []uint8
	lengthIndicators []uint16
}

// SetFramingInfo sets the two FI bits.
func (h *UmdHeader) SetFramingInfo(fi uint8) {
	h.framingInfo = fi & 0x03
}

// FramingInfo returns the two FI bits.
func (h *UmdHeader) FramingInfo() uint8 {
	return h.framingInfo
}

// SetSequenceNumber sets the 10-bit sequence number.
func (h *UmdHeader) SetSequenceNumber(sn protocol.SequenceNumber10) {
	h.sequenceNumber = sn
}

// SequenceNumber returns the 10-bit sequence number.
func (h *UmdHeader) SequenceNumber() protocol.SequenceNumber10 {
	return h.sequenceNumber
}

// PushExtensionBit appends an extension bit. The first pushed bit lands in
// the fixed part of the header.
func (h *UmdHeader) PushExtensionBit(bit uint8) {
	h.extensionBits = append(h.extensionBits, bit&0x01)
}

// PushLengthIndicator appends an 11-bit length indicator.
func (h *UmdHeader) PushLengthIndicator(li uint16) {
	h.lengthIndicators = append(h.lengthIndicators, li&0x07ff)
}

// PopExtensionBit removes and returns the first extension bit.
func (h *UmdHeader) PopExtensionBit() (uint8, error) {
	if len(h.extensionBits) == 0 {
		return 0, errNoExtensionBits
	}
	bit := h.extensionBits[0]
	h.extensionBits = h.extensionBits[1:]
	return bit, nil
}

// PopLengthIndicator removes and returns the first length indicator.
func (h *UmdHeader) PopLengthIndicator() (uint16, error) {
	if len(h.lengthIndicators) == 0 {
		return 0, errNoLengthIndicators
	}
	li := h.lengthIndicators[0]
	h.lengthIndicators = h.lengthIndicators[1:]
	return li, nil
}

// SerializedSize returns the encoded size of the header. Two length
// indicators pack into three octets; a trailing odd one costs two.
func (h *UmdHeader) SerializedSize() protocol.ByteCount {
	n := protocol.ByteCount(len(h.lengthIndicators))
	return protocol.UmdFixedHeaderSize + (3*n+n%2)/2
}

// Write encodes the header.
//
// byte 0: DC:1 | RF:1 | P:1 | FI:2 | E:1 | SN[9:8]:2
// byte 1: SN[7:0]:8
// then (E:1, LI:11) pairs packed MSB-first.
func (h *UmdHeader) Write(b *bytes.Buffer) error {
	var firstE uint8
	if len(h.extensionBits) > 0 {
		firstE = h.extensionBits[0]
	}
	sn := h.sequenceNumber.Value()
	b.WriteByte(0x80 | (h.framingInfo&0x03)<<3 | (firstE&0x01)<<2 | uint8((sn>>8)&0x03))
	b.WriteByte(uint8(sn & 0xff))

	var pending uint8
	havePending := false
	for i, li := range h.lengthIndicators {
		var e uint8
		if i+1 < len(h.extensionBits) {
			e = h.extensionBits[i+1]
		}
		if i%2 == 0 {
			b.WriteByte(e<<7 | uint8(li>>4))
			pending = uint8(li&0x0f) << 4
			havePending = true
		} else {
			pending |= e<<3 | uint8(li>>8)
			b.WriteByte(pending)
			b.WriteByte(uint8(li & 0xff))
			havePending = false
		}
	}
	if havePending {
		b.WriteByte(pending)
	}
	return nil
}

// ParseUmdHeader parses an UMD PDU header, reading exactly the header bytes
// from r.
func ParseUmdHeader(r *bytes.Reader) (*UmdHeader, error) {
	byte1, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	byte2, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	h := &UmdHeader{}
	h.framingInfo = (byte1 >> 3) & 0x03
	h.sequenceNumber = protocol.NewSequenceNumber10(uint16(byte1&0x03)<<8 | uint16(byte2))

	e := (byte1 >> 2) & 0x01
	h.extensionBits = append(h.extensionBits, e)

	var carry uint8
	for i := 0; e == ELiFieldsFollow; i++ {
		var next uint8
		var li uint16
		if i%2 == 0 {
			a, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			next = a >> 7
			li = uint16(a&0x7f)<<4 | uint16(b>>4)
			carry = b & 0x0f
		} else {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			next = (carry >> 3) & 0x01
			li = uint16(carry&0x07)<<8 | uint16(b)
		}
		h.extensionBits = append(h.extensionBits, next)
		h.lengthIndicators = append(h.lengthIndicators, li)
		e = next
	}
	return h, nil
}

func (h *UmdHeader) String() string {
	return fmt.Sprintf("SN=%s FI=%#02x LIs=%v", h.sequenceNumber, h.framingInfo, h.lengthIndicators)
}
