// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// decodeCursor handles the Cursor pseudo-encoding: the rectangle's X/Y give
// the cursor hotspot, Width/Height give its dimensions, and the body holds
// width*height cpixels in the session's pixel format followed by a
// ceil(width/8)*height bitmask (1 = opaque). Width == Height == 0 means the
// cursor should be hidden.
func decodeCursor(s *session, rect Rectangle, r *wireReader) error {
	if rect.Width == 0 && rect.Height == 0 {
		s.emit(OutputEvent{Kind: OutputCursor, Cursor: CursorShape{HotspotX: rect.X, HotspotY: rect.Y}})
		return nil
	}
	if rect.Width > 256 || rect.Height > 256 {
		return validationError("decodeCursor", "cursor dimensions too large", nil)
	}

	pf := s.snapshotPixelFormat()
	colorMap := s.snapshotColorMap()
	converter, err := NewPixelFormatConverter(&pf)
	if err != nil {
		return err
	}

	reader := r.reader()
	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	for i := 0; i < int(rect.Width)*int(rect.Height); i++ {
		pixel, err := converter.ReadCpixel(reader)
		if err != nil {
			return encodingError("decodeCursor", "failed to read cursor pixel data", err)
		}
		rgba := converter.PixelToRGBA(pixel, colorMap)
		copy(pixels[i*4:], rgba[:])
	}

	maskSize := calculateMaskDataSize(rect.Width, rect.Height)
	mask, err := r.bytes(maskSize)
	if err != nil {
		return encodingError("decodeCursor", "failed to read cursor mask data", err)
	}

	s.emit(OutputEvent{Kind: OutputCursor, Cursor: CursorShape{
		HotspotX: rect.X, HotspotY: rect.Y, Width: rect.Width, Height: rect.Height,
		Pixels: pixels, Mask: mask,
	}})
	return nil
}
