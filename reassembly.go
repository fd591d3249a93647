package rlc

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/internal/wire"
	"github.com/tecs2000/ns3-dualpi2/packet"
)

type reassemblyKey struct {
	state       reassemblingState
	framingInfo uint8
	gap         bool
}

// A reassemblyRule describes what to do with the SDU list of one PDU. The
// operations apply in order: drop the held partial SDU, complete it with
// the first list entry, drop the first entry, hold back the last entry,
// then deliver whatever remains. The next state follows from whether a
// partial SDU is held afterwards.
type reassemblyRule struct {
	illegal      bool
	discardS0    bool
	mergeFirst   bool
	discardFirst bool
	keepLast     bool
}

const (
	fiFullFull = wire.FIFirstByte | wire.FILastByte
	fiFullOpen = wire.FIFirstByte | wire.FINoLastByte
	fiOpenFull = wire.FINoFirstByte | wire.FILastByte
	fiOpenOpen = wire.FINoFirstByte | wire.FINoLastByte
)

var reassemblyRules = map[reassemblyKey]reassemblyRule{
	// no partial SDU held: the gap does not matter, a stray tail is
	// discarded either way
	{waitingS0Full, fiFullFull, false}: {},
	{waitingS0Full, fiFullFull, true}:  {},
	{waitingS0Full, fiFullOpen, false}: {keepLast: true},
	{waitingS0Full, fiFullOpen, true}:  {keepLast: true},
	{waitingS0Full, fiOpenFull, false}: {discardFirst: true},
	{waitingS0Full, fiOpenFull, true}:  {discardFirst: true},
	{waitingS0Full, fiOpenOpen, false}: {discardFirst: true, keepLast: true},
	{waitingS0Full, fiOpenOpen, true}:  {discardFirst: true, keepLast: true},

	// a partial SDU is held and the PDU continues it
	{waitingSiSf, fiFullFull, false}: {illegal: true},
	{waitingSiSf, fiFullOpen, false}: {illegal: true},
	{waitingSiSf, fiOpenFull, false}: {mergeFirst: true},
	{waitingSiSf, fiOpenOpen, false}: {mergeFirst: true, keepLast: true},

	// a partial SDU is held but the continuation was lost
	{waitingSiSf, fiFullFull, true}: {discardS0: true},
	{waitingSiSf, fiFullOpen, true}: {discardS0: true, keepLast: true},
	{waitingSiSf, fiOpenFull, true}: {discardS0: true, discardFirst: true},
	{waitingSiSf, fiOpenOpen, true}: {discardS0: true, discardFirst: true, keepLast: true},
}

// reassembleAndDeliver strips the PDU header, rebuilds the SDU list along
// the extension bits and runs the reassembly machine on it.
func (e *UmEntity) reassembleAndDeliver(p *packet.Packet) {
	header, err := wire.ParseUmdHeader(bytes.NewReader(p.Bytes()))
	if err != nil {
		e.log.WithError(err).Error("malformed UMD PDU in reception buffer")
		return
	}
	p.RemoveAtStart(header.SerializedSize())

	framingInfo := header.FramingInfo()
	currSeqNumber := header.SequenceNumber()

	expectedSnLost := !currSeqNumber.Equal(e.expectedSeqNumber)
	e.expectedSeqNumber = currSeqNumber.Add(1)

	// build the list of SDUs
	for {
		extensionBit, err := header.PopExtensionBit()
		if err != nil {
			e.log.WithError(err).Error("internal error: extension bits exhausted")
			break
		}
		if extensionBit == wire.DataFieldFollows {
			e.sdusBuffer = append(e.sdusBuffer, p)
			break
		}
		li, err := header.PopLengthIndicator()
		if err != nil {
			e.log.WithError(err).Error("internal error: length indicators exhausted")
			e.sdusBuffer = append(e.sdusBuffer, p)
			break
		}
		if protocol.ByteCount(li) >= p.Size() {
			e.log.WithFields(logrus.Fields{
				"li":   li,
				"size": p.Size(),
			}).Error("internal error: not enough data in the packet")
			e.sdusBuffer = append(e.sdusBuffer, p)
			break
		}
		dataField := p.Fragment(0, protocol.ByteCount(li))
		p.RemoveAtStart(protocol.ByteCount(li))
		e.sdusBuffer = append(e.sdusBuffer, dataField)
	}

	rule, ok := reassemblyRules[reassemblyKey{e.reassemblingState, framingInfo, expectedSnLost}]
	if !ok {
		rule = reassemblyRule{illegal: true}
	}
	e.applyReassemblyRule(rule)
}

func (e *UmEntity) applyReassemblyRule(rule reassemblyRule) {
	if rule.illegal {
		e.log.WithField("state", e.reassemblingState).Error("transition not possible")
		e.sdusBuffer = nil
		return
	}

	if rule.discardS0 {
		e.keepS0 = nil
	}

	if rule.mergeFirst && len(e.sdusBuffer) > 0 {
		e.keepS0.AddAtEnd(e.sdusBuffer[0])
		e.sdusBuffer = e.sdusBuffer[1:]
		if rule.keepLast && len(e.sdusBuffer) == 0 {
			// the completed part still misses its tail, keep holding it
		} else {
			e.upper.ReceivePdcpPdu(e.keepS0)
			e.keepS0 = nil
		}
	}

	if rule.discardFirst && len(e.sdusBuffer) > 0 {
		e.sdusBuffer = e.sdusBuffer[1:]
	}

	var last *packet.Packet
	if rule.keepLast && len(e.sdusBuffer) > 0 {
		last = e.sdusBuffer[len(e.sdusBuffer)-1]
		e.sdusBuffer = e.sdusBuffer[:len(e.sdusBuffer)-1]
	}

	for _, sdu := range e.sdusBuffer {
		e.upper.ReceivePdcpPdu(sdu)
	}
	e.sdusBuffer = nil

	if last != nil {
		e.keepS0 = last
	}
	if e.keepS0 != nil {
		e.reassemblingState = waitingSiSf
	} else {
		e.reassemblingState = waitingS0Full
	}
}
