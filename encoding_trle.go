// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// decodeTRLE decodes the TRLE encoding (RFC 6143 Section 7.7.4): the
// rectangle body is a tile stream, read directly off the wire with no
// compression layer.
func decodeTRLE(s *session, rect Rectangle, r *wireReader) error {
	pf := s.snapshotPixelFormat()
	colorMap := s.snapshotColorMap()
	converter, err := NewPixelFormatConverter(&pf)
	if err != nil {
		return err
	}

	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	if err := decodeTileStream(pixels, rect.Width, rect.Height, r.reader(), converter, colorMap); err != nil {
		return err
	}

	s.emit(OutputEvent{Kind: OutputDecodedRect, Rect: DecodedRect{
		X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height, Pixels: pixels,
	}})
	return nil
}
