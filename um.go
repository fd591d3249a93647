package rlc

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tecs2000/ns3-dualpi2/dualpi2"
	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/logger"
	"github.com/tecs2000/ns3-dualpi2/packet"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

// rbsReportInterval is the delay before the buffer status is reported again
// while data is still pending.
const rbsReportInterval = sim.Clock(10 * time.Millisecond)

type reassemblingState uint8

const (
	waitingS0Full reassemblingState = iota
	waitingSiSf
)

// An UmEntity is the transmit/receive core of an UM RLC entity. All methods
// must be called from the owning scheduler.
type UmEntity struct {
	rnti protocol.RNTI
	lcid protocol.LCID

	config    Config
	scheduler *sim.Scheduler
	mac       MacSapProvider
	upper     SapUser

	aqm  *dualpi2.QueueDisc
	dest net.Addr

	// transmit side
	sequenceNumber protocol.SequenceNumber10
	rbsTimer       *sim.Event

	// receive side
	vrUr       protocol.SequenceNumber10
	vrUx       protocol.SequenceNumber10
	vrUh       protocol.SequenceNumber10
	windowSize uint16
	rxBuffer   map[uint16]*packet.Packet

	reorderingTimer *sim.Event

	sdusBuffer        []*packet.Packet
	reassemblingState reassemblingState
	keepS0            *packet.Packet
	expectedSeqNumber protocol.SequenceNumber10

	// traces
	TxPduTrace  TxPduTracer
	RxPduTrace  RxPduTracer
	TxDropTrace TxDropTracer

	log *logrus.Entry
}

// NewUmEntity creates an UM entity bound to a MAC provider and an upper
// layer.
func NewUmEntity(
	scheduler *sim.Scheduler,
	config Config,
	rnti protocol.RNTI,
	lcid protocol.LCID,
	mac MacSapProvider,
	upper SapUser,
) *UmEntity {
	e := &UmEntity{
		rnti:              rnti,
		lcid:              lcid,
		config:            config,
		scheduler:         scheduler,
		mac:               mac,
		upper:             upper,
		dest:              &net.UDPAddr{},
		windowSize:        protocol.UmWindowSize,
		rxBuffer:          make(map[uint16]*packet.Packet),
		reassemblingState: waitingS0Full,
		log: logrus.WithFields(logrus.Fields{
			"component": "rlc-um",
			"rnti":      rnti,
			"lcid":      lcid,
		}),
	}
	e.aqm = dualpi2.NewQueueDisc(scheduler, config.AQM)
	return e
}

// Aqm exposes the transmission buffer, mainly for statistics.
func (e *UmEntity) Aqm() *dualpi2.QueueDisc {
	return e.aqm
}

// SequenceNumber returns the next transmit sequence number.
func (e *UmEntity) SequenceNumber() protocol.SequenceNumber10 {
	return e.sequenceNumber
}

// NotifyHarqDeliveryFailure is a no-op in UM.
func (e *UmEntity) NotifyHarqDeliveryFailure() {}

// ReorderingTimerIsRunning reports whether the reordering timer is armed.
func (e *UmEntity) ReorderingTimerIsRunning() bool {
	return e.reorderingTimer.IsPending()
}

// Close cancels the entity timers and records the final AQM counters.
func (e *UmEntity) Close() {
	e.reorderingTimer.Cancel()
	e.rbsTimer.Cancel()
	e.aqm.Close()

	stats := e.aqm.Stats()
	logger.ExpLogInsertAqmStats(
		stats.ForcedDrop,
		stats.UnforcedClassicDrop,
		stats.UnforcedClassicMark,
		stats.UnforcedL4SMark,
		e.scheduler.Now(),
	)
	e.log.WithFields(logrus.Fields{
		"drops": stats.ForcedDrop + stats.UnforcedClassicDrop,
		"marks": stats.UnforcedClassicMark + stats.UnforcedL4SMark,
	}).Info("AQM stats")
}

// reportBufferStatus tells the MAC scheduler how much data is pending and
// for how long the head of line waited.
func (e *UmEntity) reportBufferStatus() {
	var holDelay sim.Clock
	var queueSize uint32

	if size := e.aqm.QueueSizeBytes(); size != 0 {
		holDelay = e.scheduler.Now() - e.aqm.HeadTime()
		// data in the buffer plus an estimated two header bytes per PDU
		queueSize = uint32(size) + 2*e.aqm.QueueSize()
	}

	e.mac.ReportBufferStatus(ReportBufferStatusParameters{
		RNTI:              e.rnti,
		LCID:              e.lcid,
		TxQueueSize:       queueSize,
		TxQueueHolDelayMs: holDelay.Milliseconds(),
		RetxQueueSize:     0,
		RetxQueueHolDelay: 0,
		StatusPduSize:     0,
	})
}

// expireRbsTimer re-reports the buffer status while data is pending.
func (e *UmEntity) expireRbsTimer() {
	if e.aqm.QueueSize() != 0 {
		e.reportBufferStatus()
		e.rbsTimer = e.scheduler.Schedule(rbsReportInterval, e.expireRbsTimer)
	}
}
