package wire

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("PdcpHeader", func() {
	Context("when writing", func() {
		It("writes an L4S header", func() {
			b := &bytes.Buffer{}
			h := &PdcpHeader{}
			h.SetEct(1)
			h.SetSequenceNumber(0xabc)
			Expect(h.Write(b)).To(Succeed())
			Expect(b.Bytes()).To(Equal([]byte{0x8a, 0xbc}))
		})

		It("writes a classic header", func() {
			b := &bytes.Buffer{}
			h := &PdcpHeader{}
			h.SetEct(0)
			h.SetSequenceNumber(0x123)
			Expect(h.Write(b)).To(Succeed())
			Expect(b.Bytes()).To(Equal([]byte{0x01, 0x23}))
		})

		It("masks the ECT field to one bit", func() {
			h := &PdcpHeader{}
			h.SetEct(0xff)
			Expect(h.Ect()).To(Equal(uint8(1)))
		})

		It("masks the sequence number to 12 bits", func() {
			h := &PdcpHeader{}
			h.SetSequenceNumber(0xffff)
			Expect(h.SequenceNumber()).To(Equal(uint16(0x0fff)))
		})
	})

	Context("when parsing", func() {
		It("parses an L4S header", func() {
			h, err := ParsePdcpHeader(bytes.NewReader([]byte{0x8a, 0xbc}))
			Expect(err).ToNot(HaveOccurred())
			Expect(h.Ect()).To(Equal(uint8(1)))
			Expect(h.SequenceNumber()).To(Equal(uint16(0xabc)))
		})

		It("ignores the reserved bits", func() {
			h, err := ParsePdcpHeader(bytes.NewReader([]byte{0x7a, 0xbc}))
			Expect(err).ToNot(HaveOccurred())
			Expect(h.Ect()).To(Equal(uint8(0)))
			Expect(h.SequenceNumber()).To(Equal(uint16(0xabc)))
		})

		It("errors on EOF", func() {
			_, err := ParsePdcpHeader(bytes.NewReader(nil))
			Expect(err).To(HaveOccurred())
			_, err = ParsePdcpHeader(bytes.NewReader([]byte{0x8a}))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("round trip", func() {
		It("is exact for every (ect, sn) combination", func() {
			for ect := uint8(0); ect <= 1; ect++ {
				for sn := 0; sn <= 0x0fff; sn++ {
					b := &bytes.Buffer{}
					h := &PdcpHeader{}
					h.SetEct(ect)
					h.SetSequenceNumber(uint16(sn))
					Expect(h.Write(b)).To(Succeed())
					parsed, err := ParsePdcpHeader(bytes.NewReader(b.Bytes()))
					Expect(err).ToNot(HaveOccurred())
					Expect(parsed.Ect()).To(Equal(ect))
					Expect(parsed.SequenceNumber()).To(Equal(uint16(sn)))
				}
			}
		})
	})
})
