// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

// InputEvent is something the caller wants to send to the server: pointer
// motion, a key press, clipboard text, or a request to refresh a region.
// Exactly one of the fields is meaningful, selected by Kind.
type InputEvent struct {
	Kind InputKind

	// PointerMove / PointerButtons
	X, Y    uint16
	Buttons ButtonMask

	// Key
	Keysym  uint32
	Pressed bool

	// ClipboardText
	Text string

	// Refresh
	Incremental             bool
	RefreshX, RefreshY      uint16
	RefreshW, RefreshH      uint16

	// SetEncodings
	Encodings []int32
}

// InputKind selects which fields of an InputEvent are populated.
type InputKind int

const (
	// InputPointerMove reports pointer position and button state.
	InputPointerMove InputKind = iota
	// InputKey reports a key press or release.
	InputKey
	// InputClipboardText sends clipboard text to the server.
	InputClipboardText
	// InputRefresh requests a framebuffer update for a region.
	InputRefresh
	// InputSetEncodings changes the accepted encoding list mid-session.
	InputSetEncodings
)

// PointerMoveEvent builds an InputEvent describing pointer motion and
// button state.
func PointerMoveEvent(buttons ButtonMask, x, y uint16) InputEvent {
	return InputEvent{Kind: InputPointerMove, Buttons: buttons, X: x, Y: y}
}

// KeyEventInput builds an InputEvent for a key press or release.
func KeyEventInput(keysym uint32, pressed bool) InputEvent {
	return InputEvent{Kind: InputKey, Keysym: keysym, Pressed: pressed}
}

// ClipboardTextEvent builds an InputEvent carrying clipboard text destined
// for the server.
func ClipboardTextEvent(text string) InputEvent {
	return InputEvent{Kind: InputClipboardText, Text: text}
}

// RefreshEvent builds an InputEvent requesting a framebuffer update.
func RefreshEvent(incremental bool, x, y, w, h uint16) InputEvent {
	return InputEvent{Kind: InputRefresh, Incremental: incremental, RefreshX: x, RefreshY: y, RefreshW: w, RefreshH: h}
}

// SetEncodingsEvent builds an InputEvent that reconfigures the accepted
// encoding list.
func SetEncodingsEvent(encodings []int32) InputEvent {
	return InputEvent{Kind: InputSetEncodings, Encodings: encodings}
}

// OutputKind selects which fields of an OutputEvent are populated.
type OutputKind int

const (
	// OutputDecodedRect carries a decoded rectangle of pixels or a
	// blit-source description (CopyRect).
	OutputDecodedRect OutputKind = iota
	// OutputResize reports a framebuffer dimension change.
	OutputResize
	// OutputCursor reports a new cursor shape.
	OutputCursor
	// OutputClipboardText reports clipboard text pushed by the server.
	OutputClipboardText
	// OutputBell reports a bell notification.
	OutputBell
	// OutputDisconnected reports a fatal, terminal session error.
	OutputDisconnected
)

// DecodedRect is a fully decoded rectangle of the framebuffer, in
// canonical 32-bit RGBA row-major order, or a blit-source description if
// IsCopyRect is set.
type DecodedRect struct {
	X, Y          uint16
	Width, Height uint16

	// Pixels holds Width*Height*4 canonical RGBA bytes. Empty for
	// CopyRect rectangles.
	Pixels []byte

	// IsCopyRect marks this rectangle as a blit instruction rather than
	// pixel data: the caller should copy (SrcX, SrcY, Width, Height) from
	// its own framebuffer to (X, Y).
	IsCopyRect bool
	SrcX, SrcY uint16
}

// CursorShape describes a client-rendered cursor: RGBA pixels plus a
// 1-bit-per-pixel visibility mask.
type CursorShape struct {
	HotspotX, HotspotY uint16
	Width, Height      uint16
	Pixels             []byte // Width*Height*4 RGBA
	Mask               []byte // ceil(Width/8)*Height, MSB-first
}

// DisconnectReason describes why the session became terminal.
type DisconnectReason struct {
	Code    ErrorCode
	Message string
}

// OutputEvent is something the engine wants to tell the caller about:
// decoded pixels, a resize, a new cursor shape, clipboard text pushed by
// the server, a bell, or a terminal disconnection. Exactly one of the
// fields is meaningful, selected by Kind.
type OutputEvent struct {
	Kind OutputKind

	Rect   DecodedRect
	Width  uint16
	Height uint16
	Cursor CursorShape
	Text   string

	Disconnect DisconnectReason
}
