// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"testing"
)

func TestWire_ReaderPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := newWireWriter(&buf)

	if err := w.u8(0x42); err != nil {
		t.Fatalf("u8 write: %v", err)
	}
	if err := w.u16(0xBEEF); err != nil {
		t.Fatalf("u16 write: %v", err)
	}
	if err := w.u32(0xDEADBEEF); err != nil {
		t.Fatalf("u32 write: %v", err)
	}
	if err := w.str("hello"); err != nil {
		t.Fatalf("str write: %v", err)
	}

	r := newWireReader(&buf)

	u8, err := r.u8()
	if err != nil || u8 != 0x42 {
		t.Fatalf("u8 = %v, %v; want 0x42, nil", u8, err)
	}
	u16, err := r.u16()
	if err != nil || u16 != 0xBEEF {
		t.Fatalf("u16 = %v, %v; want 0xBEEF, nil", u16, err)
	}
	u32, err := r.u32()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("u32 = %v, %v; want 0xDEADBEEF, nil", u32, err)
	}
	s, err := r.str(1024)
	if err != nil || s != "hello" {
		t.Fatalf("str = %q, %v; want \"hello\", nil", s, err)
	}
}

func TestWire_ReadFullShortReadFails(t *testing.T) {
	r := newWireReader(bytes.NewReader([]byte{0x01, 0x02}))
	if _, err := r.u32(); err == nil {
		t.Fatal("expected error reading u32 from a 2-byte buffer")
	}
}

func TestWire_StrRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	w := newWireWriter(&buf)
	if err := w.u32(2048); err != nil {
		t.Fatalf("u32 write: %v", err)
	}
	buf.Write(make([]byte, 2048))

	r := newWireReader(&buf)
	if _, err := r.str(1024); err == nil {
		t.Fatal("expected error for length-prefixed string exceeding bound")
	}
}

func TestWire_RectangleHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := newWireWriter(&buf)
	for _, v := range []uint16{10, 20, 640, 480} {
		if err := w.u16(v); err != nil {
			t.Fatalf("u16 write: %v", err)
		}
	}
	negEncoding := int32(-239)
	if err := w.u32(uint32(negEncoding)); err != nil { // #nosec G115 - test encoding a negative pseudo-encoding
		t.Fatalf("u32 write: %v", err)
	}

	r := newWireReader(&buf)
	rect, err := r.rectangleHeader()
	if err != nil {
		t.Fatalf("rectangleHeader: %v", err)
	}
	if rect.X != 10 || rect.Y != 20 || rect.Width != 640 || rect.Height != 480 {
		t.Fatalf("unexpected rectangle geometry: %+v", rect)
	}
	if rect.Encoding != -239 {
		t.Fatalf("Encoding = %d, want -239", rect.Encoding)
	}
}

func TestWire_I8ReinterpretsSignBit(t *testing.T) {
	var buf bytes.Buffer
	w := newWireWriter(&buf)
	if err := w.u8(0xFF); err != nil {
		t.Fatalf("u8 write: %v", err)
	}
	r := newWireReader(&buf)
	v, err := r.i8()
	if err != nil {
		t.Fatalf("i8: %v", err)
	}
	if v != -1 {
		t.Fatalf("i8 = %d, want -1", v)
	}
}

func TestWire_Bytes(t *testing.T) {
	r := newWireReader(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	b, err := r.bytes(3)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("bytes = %v, want [1 2 3]", b)
	}
}
