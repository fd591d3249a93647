package rlc

import (
	"bytes"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/internal/wire"
	"github.com/tecs2000/ns3-dualpi2/logger"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

// ReceivePdu runs the receive procedure for one UMD PDU: discard or buffer,
// advance the reordering window, reassemble and manage the reordering
// timer.
func (e *UmEntity) ReceivePdu(rxPduParams ReceivePduParameters) {
	p := rxPduParams.PDU

	senderTime, ok := p.SenderTime()
	if !ok {
		panic("rlc: sender timestamp tag is missing")
	}
	delay := e.scheduler.Now() - senderTime

	header, err := wire.ParseUmdHeader(bytes.NewReader(p.Bytes()))
	if err != nil {
		e.log.WithError(err).Error("malformed UMD PDU discarded")
		return
	}
	seqNumber := header.SequenceNumber()

	logger.ExpLogInsertRxPdu(e.rnti, e.lcid, p.Size(), seqNumber.Value(), delay, e.scheduler.Now())
	if e.RxPduTrace != nil {
		e.RxPduTrace(e.rnti, e.lcid, p.Size(), delay.Duration().Nanoseconds())
	}

	e.log.WithFields(logrus.Fields{
		"vrUr": e.vrUr,
		"vrUx": e.vrUx,
		"vrUh": e.vrUh,
		"sn":   seqNumber,
	}).Debug("UMD PDU received")

	lower := e.vrUh.Sub(e.windowSize)
	lower.SetModulusBase(lower)
	e.vrUr.SetModulusBase(lower)
	e.vrUh.SetModulusBase(lower)
	seqNumber.SetModulusBase(lower)

	// a PDU already buffered inside the window, or below VR(UR), is a
	// duplicate or arrived too late: discard
	_, buffered := e.rxBuffer[seqNumber.Value()]
	if (e.vrUr.Less(seqNumber) && seqNumber.Less(e.vrUh) && buffered) ||
		(lower.LessEq(seqNumber) && seqNumber.Less(e.vrUr)) {
		e.log.WithField("sn", seqNumber).Debug("PDU discarded")
		return
	}
	e.rxBuffer[seqNumber.Value()] = p

	if !e.isInsideReorderingWindow(seqNumber) {
		e.vrUh = seqNumber.Add(1)
		e.reassembleOutsideWindow()
		if !e.isInsideReorderingWindow(e.vrUr) {
			e.vrUr = e.vrUh.Sub(e.windowSize)
		}
	}

	if _, ok := e.rxBuffer[e.vrUr.Value()]; ok {
		oldVrUr := e.vrUr
		newVrUr := e.vrUr.Add(1)
		for {
			if _, ok := e.rxBuffer[newVrUr.Value()]; !ok {
				break
			}
			newVrUr = newVrUr.Add(1)
		}
		e.vrUr = newVrUr
		e.reassembleSnInterval(oldVrUr, e.vrUr)
	}

	// VR(UH) may have moved, refresh the modulus base for the
	// reordering-timer comparisons
	lower = e.vrUh.Sub(e.windowSize)
	lower.SetModulusBase(lower)
	e.vrUr.SetModulusBase(lower)
	e.vrUx.SetModulusBase(lower)
	e.vrUh.SetModulusBase(lower)

	if e.reorderingTimer.IsPending() {
		if e.vrUx.LessEq(e.vrUr) || (!e.isInsideReorderingWindow(e.vrUx) && !e.vrUx.Equal(e.vrUh)) {
			e.log.Debug("stop reordering timer")
			e.reorderingTimer.Cancel()
		}
	}

	if !e.reorderingTimer.IsPending() {
		if e.vrUh.Greater(e.vrUr) {
			e.log.Debug("start reordering timer")
			e.reorderingTimer = e.scheduler.Schedule(sim.Clock(e.config.ReorderingTimer), e.expireReorderingTimer)
			e.vrUx = e.vrUh
		}
	}
}

// isInsideReorderingWindow reports whether the SN falls within
// [VR(UH) - windowSize, VR(UH)).
func (e *UmEntity) isInsideReorderingWindow(seqNumber protocol.SequenceNumber10) bool {
	lower := e.vrUh.Sub(e.windowSize)
	lower.SetModulusBase(lower)
	upper := e.vrUh
	upper.SetModulusBase(lower)
	seqNumber.SetModulusBase(lower)
	return lower.LessEq(seqNumber) && seqNumber.Less(upper)
}

// reassembleOutsideWindow reassembles every buffered PDU that fell outside
// the reordering window, in ascending SN order.
func (e *UmEntity) reassembleOutsideWindow() {
	// order by distance from the lower window edge, so that ascending order
	// holds across the wrap of the sequence number space
	lower := int(e.vrUh.Sub(e.windowSize).Value())
	keys := make([]int, 0, len(e.rxBuffer))
	for sn := range e.rxBuffer {
		keys = append(keys, int(sn))
	}
	sort.Slice(keys, func(i, j int) bool {
		return (keys[i]-lower+1024)%1024 < (keys[j]-lower+1024)%1024
	})

	for _, key := range keys {
		sn := uint16(key)
		if e.isInsideReorderingWindow(protocol.NewSequenceNumber10(sn)) {
			continue
		}
		e.reassembleAndDeliver(e.rxBuffer[sn])
		delete(e.rxBuffer, sn)
	}
}

// reassembleSnInterval reassembles the buffered PDUs in
// [lowSeqNumber, highSeqNumber).
func (e *UmEntity) reassembleSnInterval(lowSeqNumber, highSeqNumber protocol.SequenceNumber10) {
	for sn := lowSeqNumber; !sn.Equal(highSeqNumber); sn = sn.Add(1) {
		if p, ok := e.rxBuffer[sn.Value()]; ok {
			e.reassembleAndDeliver(p)
			delete(e.rxBuffer, sn.Value())
		}
	}
}

// expireReorderingTimer advances VR(UR) to the first missing SN at or above
// VR(UX), delivers what that uncovers, and rearms while PDUs are still
// missing.
func (e *UmEntity) expireReorderingTimer() {
	e.log.Debug("reordering timer expired")

	newVrUr := e.vrUx
	for {
		if _, ok := e.rxBuffer[newVrUr.Value()]; !ok {
			break
		}
		newVrUr = newVrUr.Add(1)
	}
	oldVrUr := e.vrUr
	e.vrUr = newVrUr
	e.reassembleSnInterval(oldVrUr, e.vrUr)

	if e.vrUh.Greater(e.vrUr) {
		e.log.Debug("restart reordering timer")
		e.reorderingTimer = e.scheduler.Schedule(sim.Clock(e.config.ReorderingTimer), e.expireReorderingTimer)
		e.vrUx = e.vrUh
	}
}
