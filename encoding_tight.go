// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"bytes"
	"image/jpeg"
	"io"
)

const (
	tightExplicitFilter = 1 << 6
	tightFilterCopy     = 0
	tightFilterPalette  = 1
	tightFilterGradient = 2
	tightJPEGCtl        = 0x09
	tightFillCtl        = 0x08
	tightMinToCompress  = 12
)

// decodeTight decodes the Tight encoding (RFC 6143 Section 7.7.6, as refined
// by the TightVNC extension). The first byte is a compression-control byte:
// bits 0-3 select which of the four persistent zlib streams to reset before
// this rectangle is interpreted, and bits 4-7 (the top nibble) select the
// payload mode (basic/fill/JPEG).
func decodeTight(s *session, rect Rectangle, r *wireReader) error {
	ctl, err := r.u8()
	if err != nil {
		return encodingError("decodeTight", "failed to read compression control byte", err)
	}
	s.zlib.resetTight(ctl & 0x0F)

	pf := s.snapshotPixelFormat()
	colorMap := s.snapshotColorMap()
	converter, err := NewPixelFormatConverter(&pf)
	if err != nil {
		return err
	}

	mode := ctl >> 4
	var pixels []byte
	switch {
	case mode == tightFillCtl:
		pixels, err = decodeTightFill(rect, r, converter, colorMap)
	case mode == tightJPEGCtl:
		pixels, err = decodeTightJPEG(rect, r)
	default:
		streamIdx := int((ctl >> 4) & 0x03)
		pixels, err = decodeTightBasic(s, rect, r, converter, colorMap, streamIdx)
	}
	if err != nil {
		return err
	}

	s.emit(OutputEvent{Kind: OutputDecodedRect, Rect: DecodedRect{
		X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height, Pixels: pixels,
	}})
	return nil
}

// decodeTightFill handles the fill mode: a single pixel fills the whole
// rectangle, with no compression and no filter byte.
func decodeTightFill(rect Rectangle, r *wireReader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color) ([]byte, error) {
	pixel, err := converter.ReadCpixel(r.reader())
	if err != nil {
		return nil, encodingError("decodeTightFill", "failed to read fill pixel", err)
	}
	rgba := converter.PixelToRGBA(pixel, colorMap)

	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	for i := 0; i < int(rect.Width)*int(rect.Height); i++ {
		copy(pixels[i*4:], rgba[:])
	}
	return pixels, nil
}

// decodeTightJPEG handles the JPEG mode: the rectangle body is a
// length-prefixed standard JPEG stream decoded independently of the pixel
// format or persistent zlib streams.
func decodeTightJPEG(rect Rectangle, r *wireReader) ([]byte, error) {
	data, err := readTightCompressedBlock(r)
	if err != nil {
		return nil, err
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, encodingError("decodeTightJPEG", "failed to decode JPEG payload", err)
	}

	bounds := img.Bounds()
	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	for y := 0; y < bounds.Dy() && y < int(rect.Height); y++ {
		for x := 0; x < bounds.Dx() && x < int(rect.Width); x++ {
			r32, g32, b32, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := (y*int(rect.Width) + x) * 4
			pixels[idx] = byte(r32 >> 8)
			pixels[idx+1] = byte(g32 >> 8)
			pixels[idx+2] = byte(b32 >> 8)
			pixels[idx+3] = 255
		}
	}
	return pixels, nil
}

// decodeTightBasic handles the basic (non-JPEG, non-fill) mode: an optional
// filter byte selects Copy (raw pixels), Palette (indexed pixels against a
// small inline palette), or Gradient (each pixel predicted from its
// left/upper/upper-left neighbors), followed by a zlib-compressed or, for
// payloads under tightMinToCompress bytes, raw pixel stream.
func decodeTightBasic(s *session, rect Rectangle, r *wireReader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color, streamIdx int) ([]byte, error) {
	filter := uint8(tightFilterCopy)
	ctlByte, err := r.u8()
	if err != nil {
		return nil, encodingError("decodeTightBasic", "failed to read filter/no-filter byte", err)
	}
	explicit := ctlByte&tightExplicitFilter != 0
	if explicit {
		filter, err = r.u8()
		if err != nil {
			return nil, encodingError("decodeTightBasic", "failed to read filter id", err)
		}
	}

	bpp := converter.CpixelBytesPerPixel()

	switch filter {
	case tightFilterCopy:
		raw, err := readTightPixelBytes(s, r, streamIdx, int(rect.Width)*int(rect.Height)*bpp)
		if err != nil {
			return nil, err
		}
		return tightRawToRGBA(raw, rect, converter, colorMap), nil

	case tightFilterPalette:
		paletteSize, err := r.u8()
		if err != nil {
			return nil, encodingError("decodeTightBasic", "failed to read palette size", err)
		}
		n := int(paletteSize) + 1
		paletteBytes := make([]byte, n*bpp)
		if _, err := io.ReadFull(r.reader(), paletteBytes); err != nil {
			return nil, encodingError("decodeTightBasic", "failed to read palette entries", err)
		}
		palette := make([][4]byte, n)
		pr := bytes.NewReader(paletteBytes)
		for i := 0; i < n; i++ {
			pixel, err := converter.ReadCpixel(pr)
			if err != nil {
				return nil, encodingError("decodeTightBasic", "failed to decode palette entry", err)
			}
			palette[i] = converter.PixelToRGBA(pixel, colorMap)
		}

		bits := 8
		if n == 2 {
			bits = 1
		}
		rowBytes := (int(rect.Width)*bits + 7) / 8
		raw, err := readTightPixelBytes(s, r, streamIdx, rowBytes*int(rect.Height))
		if err != nil {
			return nil, err
		}

		pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
		for y := 0; y < int(rect.Height); y++ {
			row := raw[y*rowBytes : (y+1)*rowBytes]
			if bits == 8 {
				for x := 0; x < int(rect.Width); x++ {
					copy(pixels[(y*int(rect.Width)+x)*4:], palette[row[x]][:])
				}
				continue
			}
			bitPos := 0
			for x := 0; x < int(rect.Width); x++ {
				byteIdx := bitPos / 8
				bitOffset := 8 - bits - (bitPos % 8)
				idx := int((row[byteIdx] >> uint(bitOffset)) & byte((1<<bits)-1))
				copy(pixels[(y*int(rect.Width)+x)*4:], palette[idx][:])
				bitPos += bits
			}
		}
		return pixels, nil

	case tightFilterGradient:
		raw, err := readTightPixelBytes(s, r, streamIdx, int(rect.Width)*int(rect.Height)*bpp)
		if err != nil {
			return nil, err
		}
		return decodeTightGradient(raw, rect, converter), nil

	default:
		return nil, protocolError("decodeTightBasic", "unsupported tight filter id", nil)
	}
}

// readTightPixelBytes reads a Tight-encoded payload of wantLen decompressed
// bytes: raw if under tightMinToCompress, otherwise zlib-compressed behind a
// variable-length length prefix, inflated with the selected persistent
// stream.
func readTightPixelBytes(s *session, r *wireReader, streamIdx int, wantLen int) ([]byte, error) {
	if wantLen < tightMinToCompress {
		raw, err := r.bytes(wantLen)
		if err != nil {
			return nil, encodingError("readTightPixelBytes", "failed to read uncompressed payload", err)
		}
		return raw, nil
	}

	compressed, err := readTightCompressedBlock(r)
	if err != nil {
		return nil, err
	}
	return s.zlib.tight[streamIdx].inflate(compressed, wantLen)
}

// readTightCompressedBlock reads a Tight-style variable-length length
// prefix (1-3 bytes, 7 bits per byte, continuation via the high bit)
// followed by that many raw bytes.
func readTightCompressedBlock(r *wireReader) ([]byte, error) {
	length := 0
	shift := uint(0)
	for i := 0; i < 3; i++ {
		b, err := r.u8()
		if err != nil {
			return nil, encodingError("readTightCompressedBlock", "failed to read length byte", err)
		}
		length |= int(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}

	const maxBlock = 64 * 1024 * 1024
	if err := newInputValidator().ValidateCompressedBlockLength(length, maxBlock); err != nil {
		return nil, validationError("readTightCompressedBlock", "compressed block too large", err)
	}
	return r.bytes(length)
}

func tightRawToRGBA(raw []byte, rect Rectangle, converter *PixelFormatConverter, colorMap [ColorMapSize]Color) []byte {
	pixels := make([]byte, int(rect.Width)*int(rect.Height)*4)
	br := bytes.NewReader(raw)
	for i := 0; i < int(rect.Width)*int(rect.Height); i++ {
		pixel, err := converter.ReadCpixel(br)
		if err != nil {
			break
		}
		rgba := converter.PixelToRGBA(pixel, colorMap)
		copy(pixels[i*4:], rgba[:])
	}
	return pixels
}

// decodeTightGradient reverses the Tight gradient predictor: each raw pixel
// is a delta against predicted = left + upper - upperLeft, clamped
// per-channel, applied independently on R, G, B.
func decodeTightGradient(raw []byte, rect Rectangle, converter *PixelFormatConverter) []byte {
	w, h := int(rect.Width), int(rect.Height)
	pixels := make([]byte, w*h*4)
	rgb := make([][3]int, w*h)

	br := bytes.NewReader(raw)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixel, err := converter.ReadCpixel(br)
			if err != nil {
				return pixels
			}
			r8, g8, b8 := converter.ExtractRGB(pixel)
			var left, upper, upperLeft [3]int
			if x > 0 {
				left = rgb[y*w+x-1]
			}
			if y > 0 {
				upper = rgb[(y-1)*w+x]
			}
			if x > 0 && y > 0 {
				upperLeft = rgb[(y-1)*w+x-1]
			}

			predict := func(l, u, ul int) int {
				p := l + u - ul
				if p < 0 {
					return 0
				}
				if p > 255 {
					return 255
				}
				return p
			}

			cur := [3]int{
				(predict(left[0], upper[0], upperLeft[0]) + int(r8)) & 0xFF,
				(predict(left[1], upper[1], upperLeft[1]) + int(g8)) & 0xFF,
				(predict(left[2], upper[2], upperLeft[2]) + int(b8)) & 0xFF,
			}
			rgb[y*w+x] = cur

			idx := (y*w + x) * 4
			pixels[idx] = byte(cur[0])
			pixels[idx+1] = byte(cur[1])
			pixels[idx+2] = byte(cur[2])
			pixels[idx+3] = 255
		}
	}
	return pixels
}
