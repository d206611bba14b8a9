// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// Encoding type identifiers, as assigned by RFC 6143 and the Tight/ZRLE
// extensions. Hextile and RRE are recognized on the wire (ValidateEncodingType
// still accepts server-sent values) but this engine never advertises or
// decodes them.
const (
	EncodingRaw      int32 = 0
	EncodingCopyRect int32 = 1
	EncodingRRE      int32 = 2
	EncodingHextile  int32 = 5
	EncodingTRLE     int32 = 15
	EncodingZRLE     int32 = 16
	EncodingTight    int32 = 7

	PseudoEncodingDesktopSize int32 = -223
	PseudoEncodingLastRect    int32 = -224
	PseudoEncodingCursor      int32 = -239
)

// decoderFunc decodes one rectangle's payload from r, consuming exactly its
// wire bytes, and emits the resulting OutputEvent(s) onto the session
// itself. handleFramebufferUpdate picks the decoder by looking rect.Encoding
// up in decoders; it does not compare it with the advertised encoding list.
type decoderFunc func(s *session, rect Rectangle, r *wireReader) error

// decoders maps every encoding type this engine understands to the
// function that decodes it. The PseudoEncodingLastRect entry is never
// called: the framebuffer update loop special-cases LastRect before it would
// use its decoder, since it carries no payload and terminates the rectangle
// list early.
var decoders = map[int32]decoderFunc{
	EncodingRaw:               decodeRaw,
	EncodingCopyRect:          decodeCopyRect,
	EncodingTRLE:              decodeTRLE,
	EncodingZRLE:              decodeZRLE,
	EncodingTight:             decodeTight,
	PseudoEncodingDesktopSize: decodeDesktopSize,
	PseudoEncodingCursor:      decodeCursor,
	PseudoEncodingLastRect:    decodeLastRect,
}

// decodeLastRect is registered so LastRect rectangles resolve to a known
// decoder in the decoders lookup, even though the framebuffer update loop
// ends the rectangle list on LastRect without calling it.
func decodeLastRect(_ *session, _ Rectangle, _ *wireReader) error {
	return nil
}
