package utils

import (
	"bytes"
	"io"
)

// BigEndian is the big-endian implementation of ByteOrder
var BigEndian ByteOrder = bigEndian{}

// ByteOrder reads and writes multi-byte fields from byte streams
type ByteOrder interface {
	ReadUint16(io.ByteReader) (uint16, error)
	WriteUint16(*bytes.Buffer, uint16)
}

type bigEndian struct{}

var _ ByteOrder = &bigEndian{}

func (bigEndian) ReadUint16(b io.ByteReader) (uint16, error) {
	b1, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	b2, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(b2) + uint16(b1)<<8, nil
}

func (bigEndian) WriteUint16(b *bytes.Buffer, i uint16) {
	b.Write([]byte{uint8(i >> 8), uint8(i)})
}
