package util

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	for _, val := range []int{
		0, 1, 2, 127, 128, 255, 16383, 16384, 2097151, 2097152,
		268435455, 268435456, 2147483647, -1, -2147483648,
	} {
		t.Run(fmt.Sprintf("%d", val), func(t *testing.T) {
			buf := new(bytes.Buffer)
			n, err := WriteVarIntN(buf, val)
			if err != nil {
				t.Fatal(err)
			}
			if n != buf.Len() {
				t.Errorf("WriteVarIntN reported %d bytes, wrote %d", n, buf.Len())
			}
			if l := VarIntLen(val); l != buf.Len() {
				t.Errorf("VarIntLen(%d) = %d, encoded to %d bytes", val, l, buf.Len())
			}
			got, m, err := ReadVarIntReturnN(buf)
			if err != nil {
				t.Fatal(err)
			}
			if got != val {
				t.Errorf("got %d, want %d", got, val)
			}
			if m != n {
				t.Errorf("read %d bytes, wrote %d", m, n)
			}
		})
	}
}

func TestVarIntKnownEncodings(t *testing.T) {
	for _, tt := range []struct {
		val  int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	} {
		buf := new(bytes.Buffer)
		if err := WriteVarInt(buf, tt.val); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf.Bytes(), tt.want) {
			t.Errorf("WriteVarInt(%d) = %#v, want %#v", tt.val, buf.Bytes(), tt.want)
		}
	}
}

func TestReadVarIntMalformed(t *testing.T) {
	// 6 bytes with the continuation bit set can never terminate.
	rd := bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80})
	_, err := ReadVarInt(rd)
	if !errors.Is(err, ErrMalformedVarInt) {
		t.Errorf("got %v, want ErrMalformedVarInt", err)
	}
}

func TestReadVarIntTruncated(t *testing.T) {
	rd := bytes.NewReader([]byte{0x80, 0x80})
	if _, err := ReadVarInt(rd); err == nil {
		t.Error("expected error for truncated VarInt")
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, val := range []string{"", "a", "localhost", "Grüße, 世界"} {
		t.Run(val, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := WriteString(buf, val); err != nil {
				t.Fatal(err)
			}
			got, err := ReadString(buf)
			if err != nil {
				t.Fatal(err)
			}
			if got != val {
				t.Errorf("got %q, want %q", got, val)
			}
		})
	}
}

func TestReadStringMaxRejectsTooLong(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteString(buf, "this username is way too long"); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadStringMax(buf, 4); err == nil {
		t.Error("expected error for string above max length")
	}
}

func TestReadBytesLenRejectsTooLong(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := WriteBytes(buf, make([]byte, 32)); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBytesLen(buf, 16); err == nil {
		t.Error("expected error for byte array above max length")
	}
}

func TestRecoverFunc(t *testing.T) {
	err := RecoverFunc(func() error {
		var b []byte
		_ = b[1] // out of range
		return nil
	})
	if err == nil {
		t.Error("expected error from recovered panic")
	}
}
