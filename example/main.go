// A back-to-back scenario: a transmitting UM entity feeds a receiving one
// through an ideal MAC with a fixed air delay. Two flows share the logical
// channel, a frame-based L4S video stream and a classic background stream,
// so the DualPI2 buffer exercises both of its queues.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"net"
	"time"

	prob "github.com/atgjack/prob"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sirupsen/logrus"

	rlc "github.com/tecs2000/ns3-dualpi2"
	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
	"github.com/tecs2000/ns3-dualpi2/internal/wire"
	"github.com/tecs2000/ns3-dualpi2/logger"
	"github.com/tecs2000/ns3-dualpi2/packet"
	"github.com/tecs2000/ns3-dualpi2/sim"
)

const (
	rnti protocol.RNTI = 1
	lcid protocol.LCID = 3

	maxPacketSize = 1200
)

// idealMac joins the two entities: PDUs arrive after a fixed air delay,
// buffer status reports are only counted.
type idealMac struct {
	scheduler *sim.Scheduler
	airDelay  sim.Clock
	peer      *rlc.UmEntity
	reports   int
}

func (m *idealMac) TransmitPdu(params rlc.TransmitPduParameters) {
	pdu := params.PDU
	m.scheduler.Schedule(m.airDelay, func() {
		m.peer.ReceivePdu(rlc.ReceivePduParameters{PDU: pdu, RNTI: params.RNTI, LCID: params.LCID})
	})
}

func (m *idealMac) ReportBufferStatus(rlc.ReportBufferStatusParameters) {
	m.reports++
}

// sink counts the SDUs handed back to the upper layer.
type sink struct {
	sdus  int
	bytes protocol.ByteCount
}

func (s *sink) ReceivePdcpPdu(p *packet.Packet) {
	s.sdus++
	s.bytes += p.Size()
}

// flow generates PDCP-framed IPv4 packets for one traffic class.
type flow struct {
	ecn            protocol.ECN
	sequenceNumber uint16
}

func (f *flow) nextPacket(size int) *packet.Packet {
	payloadSize := size - int(protocol.PdcpHeaderSize) - 20
	if payloadSize < 0 {
		payloadSize = 0
	}

	ip := &layers.IPv4{
		Version:  4,
		TOS:      uint8(f.ecn),
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP{10, 0, 0, 1},
		DstIP:    net.IP{10, 0, 0, 2},
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf,
		gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true},
		ip, gopacket.Payload(make([]byte, payloadSize))); err != nil {
		panic(err)
	}

	header := &wire.PdcpHeader{}
	if f.ecn == protocol.ECNECT1 {
		header.SetEct(1)
	}
	header.SetSequenceNumber(f.sequenceNumber)
	f.sequenceNumber++

	b := &bytes.Buffer{}
	if err := header.Write(b); err != nil {
		panic(err)
	}

	p := packet.New(buf.Bytes())
	p.Prepend(b.Bytes())
	return p
}

func main() {
	configPath := flag.String("config", "", "YAML file with entity attributes")
	duration := flag.Duration("duration", 10*time.Second, "simulated time to run")
	tracePrefix := flag.String("trace", "scenario", "prefix of the CSV trace files")
	grantBytes := flag.Int("grant", 3000, "bytes granted per transmission opportunity")
	grantInterval := flag.Duration("grant-interval", time.Millisecond, "interval between opportunities")
	airDelay := flag.Duration("air-delay", 2*time.Millisecond, "one-way MAC delay")
	frameInterval := flag.Duration("frame-interval", 33*time.Millisecond, "video frame interval")
	frameSize := flag.Float64("frame-size", 6000, "mean video frame size in bytes")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	config := rlc.DefaultConfig()
	if *configPath != "" {
		var err error
		if config, err = rlc.LoadConfig(*configPath); err != nil {
			logrus.WithError(err).Fatal("cannot load config")
		}
	}

	logger.InitExperimentationLogger(*tracePrefix)
	defer logger.FlushExperimentationLogger()

	scheduler := sim.NewScheduler()
	received := &sink{}

	rxMac := &idealMac{scheduler: scheduler, airDelay: sim.Clock(*airDelay)}
	rx := rlc.NewUmEntity(scheduler, config, rnti, lcid, rxMac, received)

	txConfig := config
	txConfig.AQM.Label = "tx"
	txMac := &idealMac{scheduler: scheduler, airDelay: sim.Clock(*airDelay), peer: rx}
	tx := rlc.NewUmEntity(scheduler, txConfig, rnti, lcid, txMac, &sink{})

	// frame sizes jitter around the mean, inter-arrivals of the background
	// stream are exponential
	frameSizes, err := prob.NewNormal(*frameSize, *frameSize/6)
	if err != nil {
		logrus.WithError(err).Fatal("cannot build frame size distribution")
	}
	background, err := prob.NewExponential(1 / (5 * time.Millisecond).Seconds())
	if err != nil {
		logrus.WithError(err).Fatal("cannot build inter-arrival distribution")
	}

	video := &flow{ecn: protocol.ECNECT1}
	var sendFrame func()
	sendFrame = func() {
		remaining := int(frameSizes.Random())
		for remaining > 0 {
			size := remaining
			if size > maxPacketSize {
				size = maxPacketSize
			}
			tx.TransmitPdcpPdu(video.nextPacket(size))
			remaining -= size
		}
		scheduler.Schedule(sim.Clock(*frameInterval), sendFrame)
	}
	scheduler.Schedule(0, sendFrame)

	classic := &flow{ecn: protocol.ECNECT0}
	var sendBackground func()
	sendBackground = func() {
		tx.TransmitPdcpPdu(classic.nextPacket(maxPacketSize))
		wait := sim.Clock(background.Random() * float64(time.Second))
		scheduler.Schedule(wait, sendBackground)
	}
	scheduler.Schedule(0, sendBackground)

	var grant func()
	grant = func() {
		tx.NotifyTxOpportunity(rlc.TxOpportunityParameters{
			Bytes: protocol.ByteCount(*grantBytes),
			RNTI:  rnti,
			LCID:  lcid,
		})
		scheduler.Schedule(sim.Clock(*grantInterval), grant)
	}
	scheduler.Schedule(0, grant)

	scheduler.RunUntil(sim.Clock(*duration))

	stats := tx.Aqm().Stats()
	fmt.Printf("simulated %s\n", sim.Clock(*duration))
	fmt.Printf("delivered SDUs:       %d (%d bytes)\n", received.sdus, received.bytes)
	fmt.Printf("buffer status reports: %d\n", txMac.reports)
	fmt.Printf("mean transit delay:   %s ms\n", logger.WindowedMeanDelay().StringMS())
	fmt.Printf("AQM forced drops:     %d\n", stats.ForcedDrop)
	fmt.Printf("AQM classic drops:    %d\n", stats.UnforcedClassicDrop)
	fmt.Printf("AQM classic marks:    %d\n", stats.UnforcedClassicMark)
	fmt.Printf("AQM L4S marks:        %d\n", stats.UnforcedL4SMark)

	tx.Close()
	rx.Close()
}
