// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestDecodeZRLE_EmitsDecodedRect(t *testing.T) {
	s := testSession(t)

	var tile bytes.Buffer
	tile.WriteByte(1) // solid tile
	tile.Write(rgbBytes(0xAB, 0xCD, 0xEF))

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(tile.Bytes()); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	var wire bytes.Buffer
	w := newWireWriter(&wire)
	if err := w.u32(uint32(compressed.Len())); err != nil {
		t.Fatalf("write length prefix: %v", err)
	}
	wire.Write(compressed.Bytes())

	rect := Rectangle{X: 0, Y: 0, Width: 1, Height: 1, Encoding: EncodingZRLE}
	if err := decodeZRLE(s, rect, newWireReader(&wire)); err != nil {
		t.Fatalf("decodeZRLE: %v", err)
	}

	select {
	case ev := <-s.output:
		want := []byte{0xAB, 0xCD, 0xEF, 255}
		if !bytes.Equal(ev.Rect.Pixels, want) {
			t.Fatalf("pixels = %v, want %v", ev.Rect.Pixels, want)
		}
	default:
		t.Fatal("expected an emitted OutputEvent")
	}
}

func TestDecodeZRLE_RejectsOversizedChunk(t *testing.T) {
	s := testSession(t)

	var wire bytes.Buffer
	w := newWireWriter(&wire)
	if err := w.u32(64*1024*1024 + 1); err != nil {
		t.Fatalf("write length prefix: %v", err)
	}

	rect := Rectangle{Width: 1, Height: 1, Encoding: EncodingZRLE}
	if err := decodeZRLE(s, rect, newWireReader(&wire)); err == nil {
		t.Fatal("expected error for oversized compressed chunk")
	}
}

func TestDecodeZRLE_PersistsStreamAcrossCalls(t *testing.T) {
	s := testSession(t)

	var full bytes.Buffer
	zw := zlib.NewWriter(&full)
	var tile1, tile2 bytes.Buffer
	tile1.WriteByte(1)
	tile1.Write(rgbBytes(0x01, 0x01, 0x01))
	tile2.WriteByte(1)
	tile2.Write(rgbBytes(0x02, 0x02, 0x02))

	if _, err := zw.Write(tile1.Bytes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	split := full.Len()
	if _, err := zw.Write(tile2.Bytes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	chunk1 := append([]byte(nil), full.Bytes()[:split]...)
	chunk2 := append([]byte(nil), full.Bytes()[split:]...)

	sendChunk := func(chunk []byte) OutputEvent {
		var wire bytes.Buffer
		w := newWireWriter(&wire)
		if err := w.u32(uint32(len(chunk))); err != nil {
			t.Fatalf("write length prefix: %v", err)
		}
		wire.Write(chunk)
		rect := Rectangle{Width: 1, Height: 1, Encoding: EncodingZRLE}
		if err := decodeZRLE(s, rect, newWireReader(&wire)); err != nil {
			t.Fatalf("decodeZRLE: %v", err)
		}
		return <-s.output
	}

	ev1 := sendChunk(chunk1)
	if !bytes.Equal(ev1.Rect.Pixels, []byte{0x01, 0x01, 0x01, 255}) {
		t.Fatalf("first pixel = %v", ev1.Rect.Pixels)
	}
	ev2 := sendChunk(chunk2)
	if !bytes.Equal(ev2.Rect.Pixels, []byte{0x02, 0x02, 0x02, 255}) {
		t.Fatalf("second pixel = %v", ev2.Rect.Pixels)
	}
}
