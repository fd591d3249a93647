// Package rlc implements the downlink core of a 5G RLC Unacknowledged Mode
// entity whose transmission buffer is a DualPI2 coupled AQM.
package rlc

import (
	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/packet"
)

// TxOpportunityParameters describes a transmission opportunity granted by
// the MAC scheduler.
type TxOpportunityParameters struct {
	Bytes              protocol.ByteCount
	Layer              uint8
	HarqID             uint8
	ComponentCarrierID uint8
	RNTI               protocol.RNTI
	LCID               protocol.LCID
}

// TransmitPduParameters carries one RLC PDU down to the MAC.
type TransmitPduParameters struct {
	PDU                *packet.Packet
	RNTI               protocol.RNTI
	LCID               protocol.LCID
	Layer              uint8
	HarqProcessID      uint8
	ComponentCarrierID uint8
}

// ReportBufferStatusParameters is the buffer status reported to the MAC
// scheduler. The retransmission and status fields are always zero in UM.
type ReportBufferStatusParameters struct {
	RNTI              protocol.RNTI
	LCID              protocol.LCID
	TxQueueSize       uint32
	TxQueueHolDelayMs int64
	RetxQueueSize     uint32
	RetxQueueHolDelay int64
	StatusPduSize     uint32
}

// ReceivePduParameters carries one RLC PDU up from the MAC.
type ReceivePduParameters struct {
	PDU  *packet.Packet
	RNTI protocol.RNTI
	LCID protocol.LCID
}

// MacSapProvider is the service the MAC offers to an RLC entity.
type MacSapProvider interface {
	TransmitPdu(TransmitPduParameters)
	ReportBufferStatus(ReportBufferStatusParameters)
}

// SapUser is the upper layer (PDCP) receiving reassembled SDUs in ascending
// sequence-number order.
type SapUser interface {
	ReceivePdcpPdu(*packet.Packet)
}

// Trace hooks. All of them may be nil.
type (
	// TxPduTracer observes every PDU handed to the MAC
	TxPduTracer func(rnti protocol.RNTI, lcid protocol.LCID, size protocol.ByteCount)
	// RxPduTracer observes every PDU received from the MAC with its transit delay
	RxPduTracer func(rnti protocol.RNTI, lcid protocol.LCID, size protocol.ByteCount, delayNs int64)
	// TxDropTracer observes every SDU discarded before transmission
	TxDropTracer func(p *packet.Packet)
)
