// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"io"
)

// tileSize is the fixed tile edge TRLE and ZRLE partition a rectangle into,
// per RFC 6143 Section 7.7.4. Edge tiles are clipped to whatever remains of
// the rectangle.
const tileSize = 16

// decodeTileStream reads the TRLE tile stream that both the TRLE and ZRLE
// encodings share, filling pixels (a rectW x rectH canonical RGBA buffer)
// tile by tile in left-to-right, top-to-bottom order.
func decodeTileStream(pixels []byte, rectW, rectH uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color) error {
	for ty := uint16(0); ty < rectH; ty += tileSize {
		th := minU16(tileSize, rectH-ty)
		for tx := uint16(0); tx < rectW; tx += tileSize {
			tw := minU16(tileSize, rectW-tx)
			if err := decodeTile(pixels, rectW, tx, ty, tw, th, r, converter, colorMap); err != nil {
				return err
			}
		}
	}
	return nil
}

func minU16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

// decodeTile decodes one tile per the TRLE subencoding byte: 0 (raw), 1
// (solid color), 2-16 (packed palette), 128 (plain RLE), or 130-255
// (palette RLE). Subencodings 17-127 and 129 are unused by the protocol.
func decodeTile(pixels []byte, rectW, tx, ty, tw, th uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color) error {
	var subEncByte [1]byte
	if _, err := io.ReadFull(r, subEncByte[:]); err != nil {
		return encodingError("decodeTile", "failed to read tile subencoding", err)
	}
	sub := subEncByte[0]

	put := func(x, y uint16, rgba [4]byte) {
		idx := (int(ty+y)*int(rectW) + int(tx+x)) * 4
		copy(pixels[idx:], rgba[:])
	}

	switch {
	case sub == 0:
		return decodeTileRaw(tw, th, r, converter, colorMap, put)
	case sub == 1:
		return decodeTileSolid(tw, th, r, converter, colorMap, put)
	case sub >= 2 && sub <= 16:
		return decodeTilePackedPalette(int(sub), tw, th, r, converter, colorMap, put)
	case sub == 128:
		return decodeTilePlainRLE(tw, th, r, converter, colorMap, put)
	case sub >= 130:
		return decodeTilePaletteRLE(int(sub)-128, tw, th, r, converter, colorMap, put)
	default:
		return protocolError("decodeTile", "reserved tile subencoding value", nil)
	}
}

func decodeTileRaw(tw, th uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color, put func(uint16, uint16, [4]byte)) error {
	for y := uint16(0); y < th; y++ {
		for x := uint16(0); x < tw; x++ {
			pixel, err := converter.ReadCpixel(r)
			if err != nil {
				return encodingError("decodeTileRaw", "failed to read pixel", err)
			}
			put(x, y, converter.PixelToRGBA(pixel, colorMap))
		}
	}
	return nil
}

func decodeTileSolid(tw, th uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color, put func(uint16, uint16, [4]byte)) error {
	pixel, err := converter.ReadCpixel(r)
	if err != nil {
		return encodingError("decodeTileSolid", "failed to read solid color", err)
	}
	rgba := converter.PixelToRGBA(pixel, colorMap)
	for y := uint16(0); y < th; y++ {
		for x := uint16(0); x < tw; x++ {
			put(x, y, rgba)
		}
	}
	return nil
}

func decodeTilePackedPalette(paletteSize int, tw, th uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color, put func(uint16, uint16, [4]byte)) error {
	palette, err := readPalette(paletteSize, r, converter, colorMap)
	if err != nil {
		return err
	}

	bits := bitsForPaletteSize(paletteSize)
	rowBytes := (int(tw)*bits + 7) / 8
	row := make([]byte, rowBytes)

	for y := uint16(0); y < th; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return encodingError("decodeTilePackedPalette", "failed to read packed row", err)
		}
		bitPos := 0
		for x := uint16(0); x < tw; x++ {
			byteIdx := bitPos / 8
			bitOffset := 8 - bits - (bitPos % 8)
			idx := int((row[byteIdx] >> uint(bitOffset)) & byte((1<<bits)-1))
			put(x, y, palette[idx])
			bitPos += bits
		}
	}
	return nil
}

func decodeTilePlainRLE(tw, th uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color, put func(uint16, uint16, [4]byte)) error {
	total := int(tw) * int(th)
	written := 0
	for written < total {
		pixel, err := converter.ReadCpixel(r)
		if err != nil {
			return encodingError("decodeTilePlainRLE", "failed to read run pixel", err)
		}
		rgba := converter.PixelToRGBA(pixel, colorMap)
		runLen, err := readRunLength(r)
		if err != nil {
			return encodingError("decodeTilePlainRLE", "failed to read run length", err)
		}
		for i := 0; i < runLen && written < total; i++ {
			put(uint16(written%int(tw)), uint16(written/int(tw)), rgba)
			written++
		}
	}
	return nil
}

func decodeTilePaletteRLE(paletteSize int, tw, th uint16, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color, put func(uint16, uint16, [4]byte)) error {
	palette, err := readPalette(paletteSize, r, converter, colorMap)
	if err != nil {
		return err
	}

	total := int(tw) * int(th)
	written := 0
	for written < total {
		var idxByte [1]byte
		if _, err := io.ReadFull(r, idxByte[:]); err != nil {
			return encodingError("decodeTilePaletteRLE", "failed to read palette index", err)
		}
		idx := int(idxByte[0])
		runLen := 1
		if idx&0x80 != 0 {
			idx &= 0x7F
			runLen, err = readRunLength(r)
			if err != nil {
				return encodingError("decodeTilePaletteRLE", "failed to read run length", err)
			}
		}
		if idx >= len(palette) {
			return protocolError("decodeTilePaletteRLE", "palette index out of range", nil)
		}
		rgba := palette[idx]
		for i := 0; i < runLen && written < total; i++ {
			put(uint16(written%int(tw)), uint16(written/int(tw)), rgba)
			written++
		}
	}
	return nil
}

func readPalette(size int, r io.Reader, converter *PixelFormatConverter, colorMap [ColorMapSize]Color) ([][4]byte, error) {
	palette := make([][4]byte, size)
	for i := range palette {
		pixel, err := converter.ReadCpixel(r)
		if err != nil {
			return nil, encodingError("readPalette", "failed to read palette entry", err)
		}
		palette[i] = converter.PixelToRGBA(pixel, colorMap)
	}
	return palette, nil
}

// bitsForPaletteSize returns the packed-index bit width RFC 6143 assigns to
// a given palette size: 1 bit for 2 colors, 2 bits for 3-4, 4 bits for 5-16.
func bitsForPaletteSize(size int) int {
	switch {
	case size <= 2:
		return 1
	case size <= 4:
		return 2
	default:
		return 4
	}
}

// readRunLength decodes the RLE run-length format: a sequence of 255 bytes
// each contribute 255 to the total, terminated by a final byte less than
// 255 whose value is added, with the whole sum offset by 1 (a run always
// covers at least one pixel).
func readRunLength(r io.Reader) (int, error) {
	total := 1
	for {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		total += int(b[0])
		if b[0] != 255 {
			return total, nil
		}
	}
}
