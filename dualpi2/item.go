package dualpi2

import (
	"net"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/packet"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

// An Item is a queued packet together with its delivery context. The two
// implementations differ in scheduler eligibility and in their marking
// semantics.
type Item interface {
	Packet() *packet.Packet
	Size() protocol.ByteCount
	Destination() net.Addr
	Protocol() uint16
	Timestamp() sim.Clock
	SetTimestamp(sim.Clock)
	// IsL4S reports which internal queue the item belongs to.
	IsL4S() bool
	// Mark sets the CE codepoint on the enclosed packet. It reports whether
	// the packet could be marked.
	Mark() bool
}

type queueItem struct {
	p         *packet.Packet
	dest      net.Addr
	proto     uint16
	timestamp sim.Clock
}

func (i *queueItem) Packet() *packet.Packet   { return i.p }
func (i *queueItem) Size() protocol.ByteCount { return i.p.Size() }
func (i *queueItem) Destination() net.Addr    { return i.dest }
func (i *queueItem) Protocol() uint16         { return i.proto }
func (i *queueItem) Timestamp() sim.Clock     { return i.timestamp }
func (i *queueItem) SetTimestamp(t sim.Clock) { i.timestamp = t }

// A ClassicItem carries loss- or classic-ECN-driven traffic.
type ClassicItem struct {
	queueItem
}

var _ Item = &ClassicItem{}

// NewClassicItem wraps a packet for the Classic queue.
func NewClassicItem(p *packet.Packet, dest net.Addr, proto uint16) *ClassicItem {
	return &ClassicItem{queueItem{p: p, dest: dest, proto: proto}}
}

func (i *ClassicItem) IsL4S() bool { return false }

// Mark only succeeds on ECN-capable packets; Not-ECT traffic cannot carry a
// congestion mark and has to be dropped instead.
func (i *ClassicItem) Mark() bool {
	ecn, ok := i.p.IPv4ECN()
	if !ok {
		return false
	}
	if ecn == protocol.ECNNotECT {
		return false
	}
	return i.p.MarkCE()
}

// An L4SItem carries Low Latency, Low Loss, Scalable throughput traffic.
type L4SItem struct {
	queueItem
}

var _ Item = &L4SItem{}

// NewL4SItem wraps a packet for the L4S queue.
func NewL4SItem(p *packet.Packet, dest net.Addr, proto uint16) *L4SItem {
	return &L4SItem{queueItem{p: p, dest: dest, proto: proto}}
}

func (i *L4SItem) IsL4S() bool { return true }

// Mark sets CE regardless of the current codepoint; classification as L4S
// already affirmed an ECN-capable transport.
func (i *L4SItem) Mark() bool {
	return i.p.MarkCE()
}
