package util

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteVarInt writes val to writer in VarInt encoding.
func WriteVarInt(writer io.Writer, val int) error {
	_, err := WriteVarIntN(writer, val)
	return err
}

// WriteVarIntN writes val to writer in VarInt
// encoding and returns the number of bytes written.
func WriteVarIntN(writer io.Writer, val int) (n int, err error) {
	uval := uint32(val)
	for uval >= 0x80 {
		if err = WriteUint8(writer, byte(uval)|0x80); err != nil {
			return n, err
		}
		n++
		uval >>= 7
	}
	err = WriteUint8(writer, byte(uval))
	return n + 1, err
}

// VarIntLen returns the number of bytes VarInt encoding val takes up.
func VarIntLen(val int) int {
	n := 1
	for uval := uint32(val); uval >= 0x80; uval >>= 7 {
		n++
	}
	return n
}

// WriteString writes a VarInt length-prefixed UTF-8 string to writer.
func WriteString(writer io.Writer, val string) error {
	return WriteBytes(writer, []byte(val))
}

// WriteBytes writes a VarInt length-prefixed byte array to wr.
func WriteBytes(wr io.Writer, b []byte) error {
	if err := WriteVarInt(wr, len(b)); err != nil {
		return err
	}
	_, err := wr.Write(b)
	return err
}

// WriteUint8 writes a single byte to writer.
func WriteUint8(writer io.Writer, val uint8) error {
	var b [1]byte
	b[0] = val
	_, err := writer.Write(b[:])
	return err
}

// WriteUint16 writes a big-endian unsigned 16-bit integer to writer.
func WriteUint16(writer io.Writer, val uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], val)
	_, err := writer.Write(b[:])
	return err
}

// WriteInt64 writes a big-endian signed 64-bit integer to writer.
func WriteInt64(writer io.Writer, val int64) error {
	return WriteUint64(writer, uint64(val))
}

// WriteUint64 writes a big-endian unsigned 64-bit integer to writer.
func WriteUint64(writer io.Writer, val uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], val)
	_, err := writer.Write(b[:])
	return err
}

// RecoverFunc runs fn and converts a panic into a returned error.
// Packet decoders index into reader data and may panic on truncated input.
func RecoverFunc(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()
	return fn()
}
