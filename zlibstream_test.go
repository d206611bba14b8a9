// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func deflate(t *testing.T, chunks ...[]byte) [][]byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	for _, c := range chunks {
		if _, err := w.Write(c); err != nil {
			t.Fatalf("zlib write: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("zlib flush: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return [][]byte{buf.Bytes()}
}

func TestZlibStream_InflateFixedLength(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")
	compressed := deflate(t, payload)[0]

	s := newZlibStream()
	out, err := s.inflate(compressed, len(payload))
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("inflate = %q, want %q", out, payload)
	}
}

func TestZlibStream_FeedStreamsAcrossReads(t *testing.T) {
	payload := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	compressed := deflate(t, payload)[0]

	s := newZlibStream()
	r, err := s.feed(compressed)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}

	got := make([]byte, len(payload))
	if _, err := io.ReadFull(r, got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestZlibStream_PersistsAcrossRectangleBoundaries(t *testing.T) {
	// Two separate rectangles compressed as one continuous zlib stream,
	// matching how a server emits ZRLE without resetting the stream.
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	first := []byte("rectangle one payload")
	second := []byte("rectangle two payload")
	if _, err := w.Write(first); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	firstLen := buf.Len()
	if _, err := w.Write(second); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	all := buf.Bytes()
	chunk1, chunk2 := all[:firstLen], all[firstLen:]

	s := newZlibStream()
	r1, err := s.feed(chunk1)
	if err != nil {
		t.Fatalf("feed 1: %v", err)
	}
	got1 := make([]byte, len(first))
	if _, err := io.ReadFull(r1, got1); err != nil {
		t.Fatalf("read 1: %v", err)
	}
	if !bytes.Equal(got1, first) {
		t.Fatalf("got1 = %q, want %q", got1, first)
	}

	r2, err := s.feed(chunk2)
	if err != nil {
		t.Fatalf("feed 2: %v", err)
	}
	got2 := make([]byte, len(second))
	if _, err := io.ReadFull(r2, got2); err != nil {
		t.Fatalf("read 2: %v", err)
	}
	if !bytes.Equal(got2, second) {
		t.Fatalf("got2 = %q, want %q", got2, second)
	}
}

func TestZlibStream_ResetClearsState(t *testing.T) {
	compressed := deflate(t, []byte("payload"))[0]

	s := newZlibStream()
	if _, err := s.feed(compressed); err != nil {
		t.Fatalf("feed: %v", err)
	}
	s.reset()
	if s.reader != nil {
		t.Fatal("reset should clear the reader")
	}
	if len(s.feeder.chunks) != 0 {
		t.Fatal("reset should clear queued chunks")
	}
}

func TestZlibStreamPool_ResetTightMaskSelectsStreams(t *testing.T) {
	pool := newZlibStreamPool()
	compressed := deflate(t, []byte("stream data"))[0]

	for i := range pool.tight {
		if _, err := pool.tight[i].feed(compressed); err != nil {
			t.Fatalf("feed stream %d: %v", i, err)
		}
	}

	pool.resetTight(0b0101) // reset streams 0 and 2 only

	for i, s := range pool.tight {
		wantReset := i == 0 || i == 2
		isReset := s.reader == nil
		if isReset != wantReset {
			t.Errorf("stream %d reset=%v, want %v", i, isReset, wantReset)
		}
	}
}

func TestZlibStreamPool_Close(t *testing.T) {
	pool := newZlibStreamPool()
	compressed := deflate(t, []byte("data"))[0]
	if _, err := pool.zrle.feed(compressed); err != nil {
		t.Fatalf("feed: %v", err)
	}

	pool.close()

	if pool.zrle.reader != nil {
		t.Fatal("close should reset the ZRLE stream")
	}
	for i, s := range pool.tight {
		if s.reader != nil {
			t.Fatalf("close should reset tight stream %d", i)
		}
	}
}
