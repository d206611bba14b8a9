// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// decodeRaw decodes uncompressed pixel data as defined in RFC 6143 Section
// 7.7.1: width*height pixels in the session's current pixel format, in
// left-to-right, top-to-bottom order, with no compression.
func decodeRaw(s *session, rect Rectangle, r *wireReader) error {
	pf := s.snapshotPixelFormat()
	colorMap := s.snapshotColorMap()

	converter, err := NewPixelFormatConverter(&pf)
	if err != nil {
		return err
	}

	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	reader := r.reader()
	for i := 0; i < int(rect.Width)*int(rect.Height); i++ {
		pixel, err := converter.ReadPixel(reader)
		if err != nil {
			return encodingError("decodeRaw", "failed to read pixel data", err)
		}
		rgba := converter.PixelToRGBA(pixel, colorMap)
		copy(pixels[i*4:], rgba[:])
	}

	s.emit(OutputEvent{Kind: OutputDecodedRect, Rect: DecodedRect{
		X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height, Pixels: pixels,
	}})
	return nil
}
