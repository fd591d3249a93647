package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"
)

// The packets reaching the AQM are IPv4 packets behind a 2-byte PDCP
// header. The ECN codepoint lives in the lower two bits of the IPv4 TOS
// octet, one byte into the IPv4 header.
const ipv4TOSOffset = protocol.PdcpHeaderSize + 1

// IPv4ECN decodes the encapsulated IPv4 header and returns its ECN
// codepoint. ok is false if the payload does not parse as IPv4.
func (p *Packet) IPv4ECN() (protocol.ECN, bool) {
	if p.Size() <= protocol.PdcpHeaderSize {
		return protocol.ECNNotECT, false
	}
	var ip layers.IPv4
	if err := ip.DecodeFromBytes(p.data[protocol.PdcpHeaderSize:], gopacket.NilDecodeFeedback); err != nil {
		return protocol.ECNNotECT, false
	}
	return protocol.ECN(ip.TOS & 0x03), true
}

// MarkCE sets the Congestion Experienced codepoint on the encapsulated IPv4
// header in place. It reports whether a header was present to mark.
func (p *Packet) MarkCE() bool {
	if _, ok := p.IPv4ECN(); !ok {
		return false
	}
	p.data[ipv4TOSOffset] |= uint8(protocol.ECNCE)
	return true
}
