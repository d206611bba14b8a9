// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// chunkFeeder is an io.Reader fed one compressed chunk at a time. A
// persistent zlib.Reader reads from it across many rectangles without ever
// seeing more than the bytes it has actually been given, which is what
// lets the inflate state (dictionary window) survive rectangle boundaries.
type chunkFeeder struct {
	chunks [][]byte
}

func (f *chunkFeeder) push(b []byte) {
	f.chunks = append(f.chunks, b)
}

func (f *chunkFeeder) Read(p []byte) (int, error) {
	for len(f.chunks) > 0 && len(f.chunks[0]) == 0 {
		f.chunks = f.chunks[1:]
	}
	if len(f.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[0])
	f.chunks[0] = f.chunks[0][n:]
	return n, nil
}

// zlibStream is a single persistent inflate context. It is torn down and
// lazily recreated only when reset() is called, which happens when the
// server sets the corresponding reset bit or the session ends - never on
// an ordinary rectangle boundary.
type zlibStream struct {
	feeder *chunkFeeder
	reader io.ReadCloser
}

func newZlibStream() *zlibStream {
	return &zlibStream{feeder: &chunkFeeder{}}
}

func (s *zlibStream) reset() {
	if s.reader != nil {
		_ = s.reader.Close()
	}
	s.reader = nil
	s.feeder.chunks = nil
}

// ensure lazily starts the inflate reader on first use or after a reset.
func (s *zlibStream) ensure() (io.ReadCloser, error) {
	if s.reader == nil {
		r, err := zlib.NewReader(s.feeder)
		if err != nil {
			return nil, encodingError("zlibStream.ensure", "failed to start zlib stream", err)
		}
		s.reader = r
	}
	return s.reader, nil
}

// inflate decompresses exactly outLen bytes from compressed, using and
// extending this stream's inflate state. Used by Tight, where the
// decompressed length of a chunk is always known upfront.
func (s *zlibStream) inflate(compressed []byte, outLen int) ([]byte, error) {
	s.feeder.push(compressed)
	r, err := s.ensure()
	if err != nil {
		return nil, err
	}

	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, encodingError("zlibStream.inflate", "zlib inflate failed", err)
	}
	return out, nil
}

// feed appends a compressed chunk without decompressing it yet. Used by
// ZRLE, where the decompressed tile stream is read
// incrementally by the tile decoder rather than all at once.
func (s *zlibStream) feed(compressed []byte) (io.Reader, error) {
	s.feeder.push(compressed)
	return s.ensure()
}

// zlibStreamPool owns the five persistent inflate contexts a session
// needs: four for Tight (selected by the compression-control byte's stream
// index bits) and one for ZRLE.
type zlibStreamPool struct {
	tight [4]*zlibStream
	zrle  *zlibStream
}

func newZlibStreamPool() *zlibStreamPool {
	pool := &zlibStreamPool{zrle: newZlibStream()}
	for i := range pool.tight {
		pool.tight[i] = newZlibStream()
	}
	return pool
}

// resetTight resets the Tight streams selected by the low 4 bits of a
// compression-control byte. Must be applied before any other bytes of the
// rectangle - including a leading filter-id byte - are interpreted.
func (p *zlibStreamPool) resetTight(resetMask uint8) {
	for i := 0; i < 4; i++ {
		if resetMask&(1<<uint(i)) != 0 {
			p.tight[i].reset()
		}
	}
}

func (p *zlibStreamPool) resetZRLE() {
	p.zrle.reset()
}

// close discards all inflate state; called once at session end.
func (p *zlibStreamPool) close() {
	for _, s := range p.tight {
		s.reset()
	}
	p.zrle.reset()
}
