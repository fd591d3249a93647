package rlc

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"github.com/tecs2000/ns3-dualpi2/dualpi2"
	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/internal/utils"
	"github.com/tecs2000/ns3-dualpi2/internal/wire"
	"github.com/tecs2000/ns3-dualpi2/logger"
	"github.com/tecs2000/ns3-dualpi2/packet"
)

// isL4S classifies a PDCP-framed SDU by the ECT bit of its PDCP header.
func isL4S(p *packet.Packet) bool {
	header, err := wire.ParsePdcpHeader(bytes.NewReader(p.Bytes()))
	if err != nil {
		logrus.Warn("PDCP header not found")
		return false
	}
	return header.Ect() == 1
}

// TransmitPdcpPdu admits one PDCP SDU into the transmission buffer, subject
// to the buffer limit and the head-of-line delay budget, and reports the
// buffer status.
func (e *UmEntity) TransmitPdcpPdu(p *packet.Packet) {
	aqmBytes := e.aqm.QueueSizeBytes()
	if aqmBytes+p.Size() <= protocol.ByteCount(e.config.MaxTxBufferSize) {
		if e.config.EnablePdcpDiscarding {
			var headOfLineDelayInMs int64
			discardTimerMs := e.config.DiscardTimerMs
			if discardTimerMs == 0 {
				discardTimerMs = e.config.PacketDelayBudgetMs
			}

			if aqmBytes > 0 {
				headOfLineDelayInMs = (e.scheduler.Now() - e.aqm.HeadTime()).Milliseconds()
			}

			if headOfLineDelayInMs > int64(discardTimerMs) {
				e.log.WithFields(logrus.Fields{
					"holDelayMs": headOfLineDelayInMs,
					"budgetMs":   discardTimerMs,
					"size":       p.Size(),
				}).Info("Tx HOL is higher than this packet can allow, SDU discarded")
				e.dropSdu(p, "hol")
			} else {
				p.SetSduStatus(protocol.SduFull)

				var item dualpi2.Item
				if isL4S(p) {
					item = dualpi2.NewL4SItem(p, e.dest, 0)
				} else {
					item = dualpi2.NewClassicItem(p, e.dest, 0)
				}
				item.SetTimestamp(e.scheduler.Now())
				if !e.aqm.Enqueue(item) {
					e.dropSdu(p, "aqm-full")
				}
			}
		} else {
			// discarding disabled leaves nothing to admit the SDU with
			e.log.Warn("PDCP discarding disabled, SDU ignored")
		}
	} else {
		e.log.WithFields(logrus.Fields{
			"maxTxBufferSize": e.config.MaxTxBufferSize,
			"bufferSize":      aqmBytes,
			"size":            p.Size(),
		}).Info("transmission buffer is full, SDU discarded")
		e.dropSdu(p, "buffer-full")
	}

	e.reportBufferStatus()
	e.rbsTimer.Cancel()
}

func (e *UmEntity) dropSdu(p *packet.Packet, reason string) {
	logger.ExpLogInsertDrop(e.rnti, e.lcid, p.Size(), reason, e.scheduler.Now())
	if e.TxDropTrace != nil {
		e.TxDropTrace(p)
	}
}

// requeue gives the remaining part of a segmented SDU back to the front of
// its class queue.
func (e *UmEntity) requeue(p *packet.Packet, l4s bool) {
	var item dualpi2.Item
	if l4s {
		item = dualpi2.NewL4SItem(p, e.dest, 0)
	} else {
		item = dualpi2.NewClassicItem(p, e.dest, 0)
	}
	e.aqm.Requeue(item)
}

// NotifyTxOpportunity assembles exactly one PDU for the granted byte budget
// and hands it to the MAC.
func (e *UmEntity) NotifyTxOpportunity(txOpParams TxOpportunityParameters) {
	if txOpParams.Bytes <= protocol.UmdFixedHeaderSize {
		// stingy MAC: the fixed header alone needs two bytes
		e.log.WithField("bytes", txOpParams.Bytes).Info("TX opportunity too small")
		return
	}

	if e.aqm.QueueSize() == 0 {
		e.log.Debug("no data pending in the transmission buffer")
		return
	}

	header := &wire.UmdHeader{}
	nextSegmentSize := txOpParams.Bytes - protocol.UmdFixedHeaderSize
	nextSegmentID := 1
	var dataField []*packet.Packet

	item := e.aqm.Dequeue()
	l4s := item.IsL4S()
	firstSegment := item.Packet()

	for firstSegment != nil && firstSegment.Size() > 0 && nextSegmentSize > 0 {
		if firstSegment.Size() > nextSegmentSize ||
			// a segment larger than what the 11-bit length indicator can
			// describe may only be mapped to the end of the data field
			firstSegment.Size() > protocol.MaxLengthIndicator {
			currSegmentSize := utils.MinByteCount(firstSegment.Size(), nextSegmentSize)

			newSegment := firstSegment.Fragment(0, currSegmentSize)

			// this is the only place where an SDU is segmented, so this is
			// the only place where its status can change
			oldStatus := firstSegment.SduStatus()
			newStatus := newSegment.SduStatus()
			if oldStatus == protocol.SduFull {
				newStatus = protocol.SduFirstSegment
				oldStatus = protocol.SduLastSegment
			} else if oldStatus == protocol.SduLastSegment {
				newStatus = protocol.SduMiddleSegment
			}

			firstSegment.RemoveAtStart(currSegmentSize)

			if firstSegment.Size() > 0 {
				firstSegment.SetSduStatus(oldStatus)
				e.requeue(firstSegment, l4s)
			} else {
				// the whole remainder was taken, adjust the status
				if newStatus == protocol.SduFirstSegment {
					newStatus = protocol.SduFull
				} else if newStatus == protocol.SduMiddleSegment {
					newStatus = protocol.SduLastSegment
				}
			}
			firstSegment = nil

			newSegment.SetSduStatus(newStatus)
			dataField = append(dataField, newSegment)
			header.PushExtensionBit(wire.DataFieldFollows)
			nextSegmentSize -= newSegment.Size()
			nextSegmentID++
		} else if nextSegmentSize-firstSegment.Size() <= protocol.UmdFixedHeaderSize ||
			e.aqm.QueueSize() == 0 {
			addedSize := firstSegment.Size()
			dataField = append(dataField, firstSegment)
			firstSegment = nil

			header.PushExtensionBit(wire.DataFieldFollows)
			nextSegmentSize -= addedSize
			nextSegmentID++
		} else {
			addedSize := firstSegment.Size()
			dataField = append(dataField, firstSegment)

			header.PushExtensionBit(wire.ELiFieldsFollow)
			header.PushLengthIndicator(uint16(addedSize))

			// two length indicators pack into three octets
			liCost := protocol.ByteCount(1)
			if nextSegmentID%2 == 1 {
				liCost = 2
			}
			nextSegmentSize -= liCost + addedSize
			nextSegmentID++

			next := e.aqm.Dequeue()
			firstSegment = next.Packet()
		}
	}

	header.SetSequenceNumber(e.sequenceNumber)
	e.sequenceNumber = e.sequenceNumber.Add(1)

	var framingInfo uint8

	first := dataField[0]
	if !first.HasSduStatus() {
		panic("rlc: SDU status tag is missing")
	}
	if first.SduStatus() == protocol.SduFull || first.SduStatus() == protocol.SduFirstSegment {
		framingInfo |= wire.FIFirstByte
	} else {
		framingInfo |= wire.FINoFirstByte
	}

	pdu := packet.New(nil)
	var lastStatus protocol.SduStatus
	for _, segment := range dataField {
		if !segment.HasSduStatus() {
			panic("rlc: SDU status tag is missing")
		}
		lastStatus = segment.SduStatus()
		segment.SetSduStatus(protocol.SduStatusNone)
		pdu.AddAtEnd(segment)
	}

	if lastStatus == protocol.SduFull || lastStatus == protocol.SduLastSegment {
		framingInfo |= wire.FILastByte
	} else {
		framingInfo |= wire.FINoLastByte
	}
	header.SetFramingInfo(framingInfo)

	headerBuf := &bytes.Buffer{}
	if err := header.Write(headerBuf); err != nil {
		panic(err)
	}
	pdu.Prepend(headerBuf.Bytes())
	// sender timestamp over the header bytes only
	pdu.SetSenderTimeTag(e.scheduler.Now(), 1, header.SerializedSize())

	logger.ExpLogInsertTxPdu(e.rnti, e.lcid, pdu.Size(), e.scheduler.Now())
	if e.TxPduTrace != nil {
		e.TxPduTrace(e.rnti, e.lcid, pdu.Size())
	}

	e.mac.TransmitPdu(TransmitPduParameters{
		PDU:                pdu,
		RNTI:               e.rnti,
		LCID:               e.lcid,
		Layer:              txOpParams.Layer,
		HarqProcessID:      txOpParams.HarqID,
		ComponentCarrierID: txOpParams.ComponentCarrierID,
	})

	if e.aqm.QueueSize() != 0 {
		e.rbsTimer.Cancel()
		e.rbsTimer = e.scheduler.Schedule(rbsReportInterval, e.expireRbsTimer)
	}
}
