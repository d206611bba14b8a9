// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// calculateMaskDataSize calculates the size needed for a cursor's
// 1-bit-per-pixel visibility mask: one bit per pixel, packed MSB-first,
// padded up to a whole byte per row.
func calculateMaskDataSize(width, height uint16) int {
	bytesPerRow := (width + 7) / 8
	return int(bytesPerRow) * int(height)
}
