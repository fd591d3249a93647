// Package packet provides the opaque byte buffer handed between the PDCP,
// AQM and RLC stages, together with the small set of tags those stages
// attach to it.
package packet

import (
	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

// A Packet is an opaque byte buffer with prepend/append/fragment operations
// and attached tags. The zero value is an empty packet with no tags.
type Packet struct {
	data []byte

	sduStatus protocol.SduStatus

	hasArrivalTime bool
	arrivalTime    sim.Clock

	// sender-time byte tag, attached over the header bytes only
	hasSenderTime   bool
	senderTime      sim.Clock
	senderTimeStart protocol.ByteCount
	senderTimeEnd   protocol.ByteCount
}

// New returns a packet owning the given bytes.
func New(data []byte) *Packet {
	return &Packet{data: data}
}

// NewWithSize returns a zero-filled packet of the given size.
func NewWithSize(size protocol.ByteCount) *Packet {
	return &Packet{data: make([]byte, size)}
}

// Size returns the packet size in bytes.
func (p *Packet) Size() protocol.ByteCount {
	return protocol.ByteCount(len(p.data))
}

// Bytes returns the backing buffer.
func (p *Packet) Bytes() []byte {
	return p.data
}

// Prepend puts b in front of the current contents.
func (p *Packet) Prepend(b []byte) {
	buf := make([]byte, 0, len(b)+len(p.data))
	buf = append(buf, b...)
	buf = append(buf, p.data...)
	p.data = buf
}

// AddAtEnd appends the contents of other. Tags of other are not carried over.
func (p *Packet) AddAtEnd(other *Packet) {
	p.data = append(p.data, other.data...)
}

// Fragment returns a copy of size bytes starting at offset. All tags are
// copied onto the fragment.
func (p *Packet) Fragment(offset, size protocol.ByteCount) *Packet {
	end := offset + size
	if end > p.Size() {
		end = p.Size()
	}
	data := make([]byte, end-offset)
	copy(data, p.data[offset:end])
	f := *p
	f.data = data
	return &f
}

// RemoveAtStart drops the first n bytes.
func (p *Packet) RemoveAtStart(n protocol.ByteCount) {
	if n > p.Size() {
		n = p.Size()
	}
	p.data = p.data[n:]
}

// SduStatus returns the attached SDU-status tag, SduStatusNone if absent.
func (p *Packet) SduStatus() protocol.SduStatus {
	return p.sduStatus
}

// HasSduStatus reports whether the SDU-status tag is attached.
func (p *Packet) HasSduStatus() bool {
	return p.sduStatus != protocol.SduStatusNone
}

// SetSduStatus attaches or rewrites the SDU-status tag.
func (p *Packet) SetSduStatus(s protocol.SduStatus) {
	p.sduStatus = s
}

// ArrivalTime returns the arrival-time tag.
func (p *Packet) ArrivalTime() (sim.Clock, bool) {
	return p.arrivalTime, p.hasArrivalTime
}

// StampArrivalTime attaches the arrival-time tag. Once attached it is never
// rewritten, so requeued segments keep the original arrival time.
func (p *Packet) StampArrivalTime(t sim.Clock) {
	if p.hasArrivalTime {
		return
	}
	p.hasArrivalTime = true
	p.arrivalTime = t
}

// SetSenderTimeTag attaches the sender timestamp as a byte tag covering
// bytes [start, end) of the current contents.
func (p *Packet) SetSenderTimeTag(t sim.Clock, start, end protocol.ByteCount) {
	p.hasSenderTime = true
	p.senderTime = t
	p.senderTimeStart = start
	p.senderTimeEnd = end
}

// SenderTime returns the sender timestamp byte tag.
func (p *Packet) SenderTime() (sim.Clock, bool) {
	return p.senderTime, p.hasSenderTime
}
