// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"testing"
)

func testSession(t *testing.T) *session {
	t.Helper()
	s := newSession(sessionConfig{transport: &fakeTransport{}})
	s.pixelFormat = PixelFormat{
		BPP: 32, Depth: 24, BigEndian: true, TrueColor: true,
		RedMax: 255, GreenMax: 255, BlueMax: 255,
		RedShift: 16, GreenShift: 8, BlueShift: 0,
	}
	return s
}

func TestDecodeTRLE_EmitsDecodedRect(t *testing.T) {
	s := testSession(t)

	var body bytes.Buffer
	body.WriteByte(1) // solid tile
	body.Write(rgbBytes(0x12, 0x34, 0x56))

	rect := Rectangle{X: 5, Y: 5, Width: 1, Height: 1, Encoding: EncodingTRLE}
	if err := decodeTRLE(s, rect, newWireReader(&body)); err != nil {
		t.Fatalf("decodeTRLE: %v", err)
	}

	select {
	case ev := <-s.output:
		if ev.Kind != OutputDecodedRect {
			t.Fatalf("Kind = %v, want OutputDecodedRect", ev.Kind)
		}
		if ev.Rect.X != 5 || ev.Rect.Y != 5 || ev.Rect.Width != 1 || ev.Rect.Height != 1 {
			t.Fatalf("unexpected rect geometry: %+v", ev.Rect)
		}
		want := []byte{0x12, 0x34, 0x56, 255}
		if !bytes.Equal(ev.Rect.Pixels, want) {
			t.Fatalf("pixels = %v, want %v", ev.Rect.Pixels, want)
		}
	default:
		t.Fatal("expected an emitted OutputEvent")
	}
}
