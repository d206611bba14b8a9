// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"encoding/binary"
	"io"
)

// Rectangle describes a framebuffer update rectangle header as it appears
// on the wire: a screen region plus the encoding used for its payload.
type Rectangle struct {
	X, Y          uint16
	Width, Height uint16
	Encoding      int32
}

// wireReader wraps an io.Reader with the big-endian primitive reads the
// protocol uses everywhere. Every read is all-or-nothing: on short read or
// EOF mid-primitive it returns a TransportClosed-flavored network error, it
// never returns a partially filled value.
type wireReader struct {
	r io.Reader
}

func newWireReader(r io.Reader) *wireReader {
	return &wireReader{r: r}
}

func (w *wireReader) readFull(buf []byte) error {
	if _, err := io.ReadFull(w.r, buf); err != nil {
		return networkError("wireReader.readFull", "transport closed", err)
	}
	return nil
}

func (w *wireReader) u8() (uint8, error) {
	var b [1]byte
	if err := w.readFull(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (w *wireReader) i8() (int8, error) {
	v, err := w.u8()
	return int8(v), err // #nosec G115 - reinterpreting the same 8 bits
}

func (w *wireReader) u16() (uint16, error) {
	var b [2]byte
	if err := w.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func (w *wireReader) u32() (uint32, error) {
	var b [4]byte
	if err := w.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func (w *wireReader) i32() (int32, error) {
	v, err := w.u32()
	return int32(v), err // #nosec G115 - reinterpreting the same 32 bits
}

// reader exposes the underlying io.Reader for callers (pixel format
// converters, zlib streams) that need to read raw bytes directly.
func (w *wireReader) reader() io.Reader {
	return w.r
}

// bytes reads n raw bytes.
func (w *wireReader) bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := w.readFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// str reads a u32-length-prefixed string.
func (w *wireReader) str(maxLen uint32) (string, error) {
	n, err := w.u32()
	if err != nil {
		return "", err
	}
	if n > maxLen {
		return "", protocolError("wireReader.str", "length-prefixed string exceeds bound", nil)
	}
	buf := make([]byte, n)
	if err := w.readFull(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// rectangleHeader reads the 12-byte x,y,w,h,encoding rectangle header.
func (w *wireReader) rectangleHeader() (Rectangle, error) {
	var rect Rectangle
	var err error
	if rect.X, err = w.u16(); err != nil {
		return rect, err
	}
	if rect.Y, err = w.u16(); err != nil {
		return rect, err
	}
	if rect.Width, err = w.u16(); err != nil {
		return rect, err
	}
	if rect.Height, err = w.u16(); err != nil {
		return rect, err
	}
	if rect.Encoding, err = w.i32(); err != nil {
		return rect, err
	}
	return rect, nil
}

// wireWriter wraps an io.Writer with the same big-endian primitives.
type wireWriter struct {
	w io.Writer
}

func newWireWriter(w io.Writer) *wireWriter {
	return &wireWriter{w: w}
}

func (w *wireWriter) writeAll(buf []byte) error {
	if _, err := w.w.Write(buf); err != nil {
		return networkError("wireWriter.writeAll", "failed to write to transport", err)
	}
	return nil
}

func (w *wireWriter) u8(v uint8) error {
	return w.writeAll([]byte{v})
}

func (w *wireWriter) u16(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return w.writeAll(b[:])
}

func (w *wireWriter) u32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return w.writeAll(b[:])
}

func (w *wireWriter) str(s string) error {
	if err := w.u32(uint32(len(s))); err != nil { // #nosec G115 - caller-bounded lengths
		return err
	}
	return w.writeAll([]byte(s))
}
