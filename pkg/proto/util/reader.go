package util

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedVarInt is returned when a VarInt's continuation
// bit is still set after the maximum of 5 bytes.
var ErrMalformedVarInt = errors.New("malformed VarInt: exceeds 5 bytes")

// ReadVarInt reads a VarInt encoded 32-bit integer from r.
func ReadVarInt(r io.Reader) (int, error) {
	i, _, err := ReadVarIntReturnN(r)
	return i, err
}

// ReadVarIntReturnN reads a VarInt from r and additionally returns the number
// of bytes consumed, needed to compute the remaining length of a frame.
func ReadVarIntReturnN(r io.Reader) (result int, n int, err error) {
	var uresult uint32
	for {
		b, err := readByte(r)
		if err != nil {
			return 0, n, err
		}
		uresult |= uint32(b&0x7F) << uint32(n*7)
		n++
		if n > 5 {
			return 0, n, ErrMalformedVarInt
		}
		if b&0x80 == 0 {
			break
		}
	}
	return int(int32(uresult)), n, nil
}

func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

// ReadString reads a VarInt length-prefixed UTF-8 string from rd.
func ReadString(rd io.Reader) (string, error) {
	return ReadStringMax(rd, bufio.MaxScanTokenSize)
}

// ReadStringMax reads a VarInt length-prefixed UTF-8 string from rd,
// rejecting strings longer than max bytes.
func ReadStringMax(rd io.Reader, max int) (string, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", fmt.Errorf("got negative-length string (%d)", length)
	}
	if length > max*4 { // UTF-8 characters have up to 4 bytes
		return "", fmt.Errorf("bad string length (got %d, max. %d)", length, max)
	}
	str := make([]byte, length)
	_, err = io.ReadFull(rd, str)
	if err != nil {
		return "", err
	}
	return string(str), nil
}

// ReadBytesLen reads a VarInt length-prefixed byte array from rd,
// rejecting arrays longer than maxLength.
func ReadBytesLen(rd io.Reader, maxLength int) ([]byte, error) {
	length, err := ReadVarInt(rd)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("got negative-length byte array (%d)", length)
	}
	if length > maxLength {
		return nil, fmt.Errorf("byte array length %d is above given maximum %d", length, maxLength)
	}
	b := make([]byte, length)
	_, err = io.ReadFull(rd, b)
	return b, err
}

// ReadUint8 reads a single byte from rd.
func ReadUint8(rd io.Reader) (uint8, error) {
	return readByte(rd)
}

// ReadUint16 reads a big-endian unsigned 16-bit integer from rd.
func ReadUint16(rd io.Reader) (uint16, error) {
	var b [2]byte
	_, err := io.ReadFull(rd, b[:])
	return binary.BigEndian.Uint16(b[:]), err
}

// ReadInt64 reads a big-endian signed 64-bit integer from rd.
func ReadInt64(rd io.Reader) (int64, error) {
	u, err := ReadUint64(rd)
	return int64(u), err
}

// ReadUint64 reads a big-endian unsigned 64-bit integer from rd.
func ReadUint64(rd io.Reader) (uint64, error) {
	var b [8]byte
	_, err := io.ReadFull(rd, b[:])
	return binary.BigEndian.Uint64(b[:]), err
}
