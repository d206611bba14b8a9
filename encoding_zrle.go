// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// decodeZRLE decodes the ZRLE encoding (RFC 6143 Section 7.7.5): a 4-byte
// length prefix names a zlib-compressed chunk which, once inflated,
// contains the same tile stream format as TRLE. The inflate context
// persists across rectangles for the life of the session; nothing resets
// it between rectangles.
func decodeZRLE(s *session, rect Rectangle, r *wireReader) error {
	length, err := r.u32()
	if err != nil {
		return encodingError("decodeZRLE", "failed to read compressed data length", err)
	}
	const maxChunk = 64 * 1024 * 1024
	if length > maxChunk {
		return validationError("decodeZRLE", "compressed chunk too large", nil)
	}

	compressed, err := r.bytes(int(length))
	if err != nil {
		return encodingError("decodeZRLE", "failed to read compressed data", err)
	}

	inflated, err := s.zlib.zrle.feed(compressed)
	if err != nil {
		return err
	}

	pf := s.snapshotPixelFormat()
	colorMap := s.snapshotColorMap()
	converter, err := NewPixelFormatConverter(&pf)
	if err != nil {
		return err
	}

	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	if err := decodeTileStream(pixels, rect.Width, rect.Height, inflated, converter, colorMap); err != nil {
		return err
	}

	s.emit(OutputEvent{Kind: OutputDecodedRect, Rect: DecodedRect{
		X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height, Pixels: pixels,
	}})
	return nil
}
