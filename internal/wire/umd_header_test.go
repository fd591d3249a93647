package wire

import (
	"bytes"

	"github.com/tecs2000/ns3-dualpi2/internal/protocol"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UmdHeader", func() {
	Context("when writing", func() {
		It("writes a header with a single data field", func() {
			b := &bytes.Buffer{}
			h := &UmdHeader{}
			h.SetSequenceNumber(protocol.NewSequenceNumber10(5))
			h.SetFramingInfo(FIFirstByte | FILastByte)
			h.PushExtensionBit(DataFieldFollows)
			Expect(h.Write(b)).To(Succeed())
			Expect(b.Bytes()).To(Equal([]byte{0x80, 0x05}))
			Expect(h.SerializedSize()).To(Equal(protocol.ByteCount(2)))
		})

		It("writes a header with one length indicator and a padding nibble", func() {
			b := &bytes.Buffer{}
			h := &UmdHeader{}
			h.SetSequenceNumber(protocol.NewSequenceNumber10(0x2a7))
			h.SetFramingInfo(FIFirstByte | FINoLastByte)
			h.PushExtensionBit(ELiFieldsFollow)
			h.PushLengthIndicator(100)
			h.PushExtensionBit(DataFieldFollows)
			Expect(h.Write(b)).To(Succeed())
			Expect(b.Bytes()).To(Equal([]byte{0x8e, 0xa7, 0x06, 0x40}))
			Expect(h.SerializedSize()).To(Equal(protocol.ByteCount(4)))
		})

		It("packs two length indicators into three octets", func() {
			b := &bytes.Buffer{}
			h := &UmdHeader{}
			h.SetSequenceNumber(protocol.NewSequenceNumber10(0))
			h.SetFramingInfo(FINoFirstByte | FINoLastByte)
			h.PushExtensionBit(ELiFieldsFollow)
			h.PushLengthIndicator(1500)
			h.PushExtensionBit(ELiFieldsFollow)
			h.PushLengthIndicator(2047)
			h.PushExtensionBit(DataFieldFollows)
			Expect(h.Write(b)).To(Succeed())
			Expect(b.Bytes()).To(Equal([]byte{0x9c, 0x00, 0xdd, 0xc7, 0xff}))
			Expect(h.SerializedSize()).To(Equal(protocol.ByteCount(5)))
		})

		It("masks length indicators to 11 bits", func() {
			h := &UmdHeader{}
			h.PushLengthIndicator(0xffff)
			li, err := h.PopLengthIndicator()
			Expect(err).ToNot(HaveOccurred())
			Expect(li).To(Equal(uint16(0x07ff)))
		})
	})

	Context("when parsing", func() {
		It("parses a header with a single data field", func() {
			h, err := ParseUmdHeader(bytes.NewReader([]byte{0x80, 0x05}))
			Expect(err).ToNot(HaveOccurred())
			Expect(h.SequenceNumber().Value()).To(Equal(uint16(5)))
			Expect(h.FramingInfo()).To(Equal(FIFirstByte | FILastByte))
			e, err := h.PopExtensionBit()
			Expect(err).ToNot(HaveOccurred())
			Expect(e).To(Equal(DataFieldFollows))
		})

		It("parses a header with two length indicators", func() {
			h, err := ParseUmdHeader(bytes.NewReader([]byte{0x9c, 0x00, 0xdd, 0xc7, 0xff}))
			Expect(err).ToNot(HaveOccurred())
			Expect(h.FramingInfo()).To(Equal(FINoFirstByte | FINoLastByte))

			e, err := h.PopExtensionBit()
			Expect(err).ToNot(HaveOccurred())
			Expect(e).To(Equal(ELiFieldsFollow))
			li, err := h.PopLengthIndicator()
			Expect(err).ToNot(HaveOccurred())
			Expect(li).To(Equal(uint16(1500)))

			e, err = h.PopExtensionBit()
			Expect(err).ToNot(HaveOccurred())
			Expect(e).To(Equal(ELiFieldsFollow))
			li, err = h.PopLengthIndicator()
			Expect(err).ToNot(HaveOccurred())
			Expect(li).To(Equal(uint16(2047)))

			e, err = h.PopExtensionBit()
			Expect(err).ToNot(HaveOccurred())
			Expect(e).To(Equal(DataFieldFollows))
		})

		It("leaves the payload bytes unread", func() {
			r := bytes.NewReader([]byte{0x8e, 0xa7, 0x06, 0x40, 0xde, 0xad})
			h, err := ParseUmdHeader(r)
			Expect(err).ToNot(HaveOccurred())
			Expect(h.SerializedSize()).To(Equal(protocol.ByteCount(4)))
			Expect(r.Len()).To(Equal(2))
		})

		It("errors on a truncated extension part", func() {
			_, err := ParseUmdHeader(bytes.NewReader([]byte{0x8e, 0xa7, 0x06}))
			Expect(err).To(HaveOccurred())
		})

		It("errors on EOF", func() {
			_, err := ParseUmdHeader(bytes.NewReader(nil))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("round trip", func() {
		It("restores sequence number, framing info and all length indicators", func() {
			h := &UmdHeader{}
			h.SetSequenceNumber(protocol.NewSequenceNumber10(1023))
			h.SetFramingInfo(FINoFirstByte | FILastByte)
			lis := []uint16{1, 2047, 512, 100, 7}
			for _, li := range lis {
				h.PushExtensionBit(ELiFieldsFollow)
				h.PushLengthIndicator(li)
			}
			h.PushExtensionBit(DataFieldFollows)

			b := &bytes.Buffer{}
			Expect(h.Write(b)).To(Succeed())
			parsed, err := ParseUmdHeader(bytes.NewReader(b.Bytes()))
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed.SequenceNumber().Value()).To(Equal(uint16(1023)))
			Expect(parsed.FramingInfo()).To(Equal(FINoFirstByte | FILastByte))
			for _, li := range lis {
				e, err := parsed.PopExtensionBit()
				Expect(err).ToNot(HaveOccurred())
				Expect(e).To(Equal(ELiFieldsFollow))
				got, err := parsed.PopLengthIndicator()
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(li))
			}
			e, err := parsed.PopExtensionBit()
			Expect(err).ToNot(HaveOccurred())
			Expect(e).To(Equal(DataFieldFollows))
		})
	})
})
