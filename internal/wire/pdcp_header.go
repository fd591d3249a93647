package wire

import (
	"bytes"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
)

// A PdcpHeader is the two-octet header in front of every PDCP PDU. It
// carries the one-bit ECT field identifying L4S flows and a 12-bit sequence
// number.
type PdcpHeader struct {
	ect            uint8
	sequenceNumber uint16
}

// SetEct sets the ECT bit, masked to one bit.
func (h *PdcpHeader) SetEct(ect uint8) {
	h.ect = ect & 0x01
}

// SetSequenceNumber sets the sequence number, masked to 12 bits.
func (h *PdcpHeader) SetSequenceNumber(sn uint16) {
	h.sequenceNumber = sn & 0x0fff
}

// Ect returns the ECT bit, 1 for L4S flows.
func (h *PdcpHeader) Ect() uint8 {
	return h.ect
}

// SequenceNumber returns the 12-bit sequence number.
func (h *PdcpHeader) SequenceNumber() uint16 {
	return h.sequenceNumber
}

// SerializedSize returns the encoded size of the header.
func (h *PdcpHeader) SerializedSize() protocol.ByteCount {
	return protocol.PdcpHeaderSize
}

// Write encodes the header.
//
// byte 0: ECT:1 | reserved:3 | SN[11:8]:4
// byte 1: SN[7:0]:8
func (h *PdcpHeader) Write(b *bytes.Buffer) error {
	b.WriteByte(h.ect<<7 | uint8((h.sequenceNumber&0x0f00)>>8))
	b.WriteByte(uint8(h.sequenceNumber & 0x00ff))
	return nil
}

// ParsePdcpHeader parses a PDCP header.
func ParsePdcpHeader(r *bytes.Reader) (*PdcpHeader, error) {
	byte1, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	byte2, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	h := &PdcpHeader{}
	h.ect = (byte1 & 0x80) >> 7
	h.sequenceNumber = uint16(byte1&0x0f)<<8 | uint16(byte2)
	return h, nil
}
