// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"fmt"
	"sync"
)

// sessionState tracks progress through the linear RFB handshake before the
// session settles into Running, where FramebufferUpdate/SetColorMapEntries/
// Bell/ServerCutText messages are dispatched until the transport closes.
type sessionState int

const (
	stateAwaitingVersion sessionState = iota
	stateAwaitingSecurityList
	stateNegotiatingSecurity
	stateAwaitingSecurityResult
	stateSendClientInit
	stateAwaitingServerInit
	stateRunning
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateAwaitingVersion:
		return "awaiting_version"
	case stateAwaitingSecurityList:
		return "awaiting_security_list"
	case stateNegotiatingSecurity:
		return "negotiating_security"
	case stateAwaitingSecurityResult:
		return "awaiting_security_result"
	case stateSendClientInit:
		return "send_client_init"
	case stateAwaitingServerInit:
		return "awaiting_server_init"
	case stateRunning:
		return "running"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// sessionConfig carries everything a session needs that the caller supplies
// through ClientOptions, decoupled from Client so it can be constructed
// before the handshake runs.
type sessionConfig struct {
	transport             Transport
	authRegistry          *AuthRegistry
	authPreference        []uint8
	credentials           string
	username              string
	sharedFlag            bool
	acceptedEncodings     []int32
	pixelFormatPreference *PixelFormat
	tlsPolicy             TLSCertPolicy
	logger                Logger
	metrics               MetricsCollector
	outputBufferSize      int
	inputBufferSize       int
}

// session owns the transport, the wire codec, the persistent zlib streams,
// and the framebuffer state that decoders mutate. Exactly one goroutine
// (readPump) ever touches the transport's read side and one
// (writePump) ever touches its write side, so no locking is needed around
// I/O itself; the mutex below only protects the small set of fields the
// public API's accessor methods read concurrently with the read pump.
type session struct {
	cfg sessionConfig

	transport Transport
	r         *wireReader
	w         *wireWriter

	logger  Logger
	metrics MetricsCollector

	zlib *zlibStreamPool

	mu          sync.RWMutex
	state       sessionState
	pixelFormat PixelFormat
	colorMap    [ColorMapSize]Color
	fbWidth     uint16
	fbHeight    uint16
	desktopName string
	encodings   []int32

	output chan OutputEvent
	input  chan InputEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func newSession(cfg sessionConfig) *session {
	if cfg.logger == nil {
		cfg.logger = &NoOpLogger{}
	}
	if cfg.metrics == nil {
		cfg.metrics = &NoOpMetrics{}
	}
	if cfg.outputBufferSize <= 0 {
		cfg.outputBufferSize = 64
	}
	if cfg.inputBufferSize <= 0 {
		cfg.inputBufferSize = 16
	}
	if cfg.acceptedEncodings == nil {
		cfg.acceptedEncodings = DefaultEncodings()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &session{
		cfg:       cfg,
		transport: cfg.transport,
		r:         newWireReader(cfg.transport),
		w:         newWireWriter(cfg.transport),
		logger:    cfg.logger,
		metrics:   cfg.metrics,
		zlib:      newZlibStreamPool(),
		state:     stateAwaitingVersion,
		encodings: cfg.acceptedEncodings,
		output:    make(chan OutputEvent, cfg.outputBufferSize),
		input:     make(chan InputEvent, cfg.inputBufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// DefaultEncodings returns the encoding preference list a client advertises
// when the caller does not supply one: every decoder this engine
// implements, most-efficient first, plus the three pseudo-encodings.
func DefaultEncodings() []int32 {
	return []int32{
		EncodingTight,
		EncodingZRLE,
		EncodingTRLE,
		EncodingCopyRect,
		EncodingRaw,
		PseudoEncodingDesktopSize,
		PseudoEncodingCursor,
		PseudoEncodingLastRect,
	}
}

// setState transitions the handshake state machine, logging every hop for
// diagnosability since a stuck handshake otherwise looks identical from the
// outside no matter which step it stalled on.
func (s *session) setState(next sessionState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()
	s.logger.Debug("session state transition",
		Field{Key: "from", Value: prev.String()},
		Field{Key: "to", Value: next.String()})
}

func (s *session) getState() sessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// connect runs the full handshake synchronously: version negotiation,
// security negotiation (including any VeNCrypt TLS upgrade), ClientInit and
// ServerInit. On success the session is left in stateRunning and the caller
// should start the read/write pumps.
func (s *session) connect(ctx context.Context) error {
	version, err := negotiateVersion(ctx, s.r, s.w)
	if err != nil {
		return err
	}
	s.logger.Info("negotiated protocol version",
		Field{Key: "major", Value: version.Major}, Field{Key: "minor", Value: version.Minor})

	s.setState(stateAwaitingSecurityList)
	if err := s.negotiateSecurity(ctx, version); err != nil {
		return err
	}

	s.setState(stateSendClientInit)
	if err := s.w.u8(boolToU8(s.cfg.sharedFlag)); err != nil {
		return networkError("session.connect", "failed to send ClientInit", err)
	}

	s.setState(stateAwaitingServerInit)
	if err := s.readServerInit(); err != nil {
		return err
	}

	if s.cfg.pixelFormatPreference != nil {
		if err := s.sendSetPixelFormat(*s.cfg.pixelFormatPreference); err != nil {
			return err
		}
	}
	if err := s.sendSetEncodings(s.encodings); err != nil {
		return err
	}

	s.setState(stateRunning)
	s.requestUpdate(false)
	return nil
}

// requestUpdate enqueues a FramebufferUpdateRequest covering the whole
// framebuffer. Per RFC 6143 Section 4.5 the client is expected to keep this
// pull loop running itself: once with incremental=false right after the
// handshake, and once with incremental=true after every FramebufferUpdate
// the server sends, so the caller never has to drive refreshes by hand to
// see the desktop update. It only enqueues onto the input channel that
// writePump drains, so it is safe to call before start() (the send just
// buffers) or from readPump once running.
func (s *session) requestUpdate(incremental bool) {
	fbWidth, fbHeight := s.snapshotFramebufferSize()
	ev := RefreshEvent(incremental, 0, 0, fbWidth, fbHeight)
	select {
	case s.input <- ev:
	case <-s.ctx.Done():
	}
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// negotiateSecurity reads the server's offered security types (RFB 3.7+) or
// single security type (RFB 3.3), selects one via the auth registry, runs
// its handshake, and reads the SecurityResult.
func (s *session) negotiateSecurity(ctx context.Context, version protocolVersion) error {
	validator := newInputValidator()

	var serverTypes []uint8
	if version.atLeast(version37) {
		count, err := s.r.u8()
		if err != nil {
			return networkError("session.negotiateSecurity", "failed to read security type count", err)
		}
		if count == 0 {
			reason, _ := s.r.str(MaxClipboardLength)
			return authenticationError("session.negotiateSecurity", "server refused connection: "+reason, nil)
		}
		serverTypes = make([]uint8, count)
		for i := range serverTypes {
			if serverTypes[i], err = s.r.u8(); err != nil {
				return networkError("session.negotiateSecurity", "failed to read security types", err)
			}
		}
	} else {
		t, err := s.r.u32()
		if err != nil {
			return networkError("session.negotiateSecurity", "failed to read security type", err)
		}
		serverTypes = []uint8{uint8(t)} // #nosec G115 - RFB 3.3 security type is always < 256 in practice
	}

	if err := validator.ValidateSecurityTypes(serverTypes); err != nil {
		return protocolError("session.negotiateSecurity", "invalid security types offered", err)
	}

	s.setState(stateNegotiatingSecurity)
	registry := s.cfg.authRegistry
	if registry == nil {
		registry = NewAuthRegistry()
	}
	registry.SetLogger(s.logger)

	auth, chosen, err := registry.NegotiateAuth(ctx, serverTypes, s.cfg.authPreference)
	if err != nil {
		return err
	}
	if err := s.configureAuth(auth); err != nil {
		return err
	}

	if version.atLeast(version37) {
		if err := s.w.u8(chosen); err != nil {
			return networkError("session.negotiateSecurity", "failed to send chosen security type", err)
		}
	}

	upgraded, err := auth.Handshake(ctx, s.transport)
	if err != nil {
		return authenticationError("session.negotiateSecurity", "authentication handshake failed", err)
	}
	if upgraded != s.transport {
		s.transport = upgraded
		s.r = newWireReader(upgraded)
		s.w = newWireWriter(upgraded)
		s.logger.Info("transport upgraded during security negotiation")
	}

	s.setState(stateAwaitingSecurityResult)
	if version.atLeast(version38) || chosen != 1 {
		result, err := s.r.u32()
		if err != nil {
			return networkError("session.negotiateSecurity", "failed to read security result", err)
		}
		if result != 0 {
			reason := "authentication failed"
			if version.atLeast(version38) {
				if r, err := s.r.str(MaxClipboardLength); err == nil {
					reason = r
				}
			}
			return authenticationError("session.negotiateSecurity", reason, nil)
		}
	}

	return nil
}

// configureAuth injects session-level credentials into the negotiated
// method so callers don't need to pre-build ClientAuth values by hand.
func (s *session) configureAuth(auth ClientAuth) error {
	switch a := auth.(type) {
	case *PasswordAuth:
		a.Password = s.cfg.credentials
		a.SetLogger(s.logger)
	case *ClientAuthNone:
		a.SetLogger(s.logger)
	case *VeNCryptAuth:
		a.Username = s.cfg.username
		a.Password = s.cfg.credentials
		a.TLSPolicy = s.cfg.tlsPolicy
		a.SetLogger(s.logger)
	}
	return nil
}

// readServerInit reads the framebuffer dimensions, server pixel format, and
// desktop name that complete the handshake.
func (s *session) readServerInit() error {
	validator := newInputValidator()

	width, err := s.r.u16()
	if err != nil {
		return networkError("session.readServerInit", "failed to read framebuffer width", err)
	}
	height, err := s.r.u16()
	if err != nil {
		return networkError("session.readServerInit", "failed to read framebuffer height", err)
	}
	if err := validator.ValidateFramebufferDimensions(width, height); err != nil {
		return protocolError("session.readServerInit", "invalid framebuffer dimensions", err)
	}

	var pf PixelFormat
	if err := readPixelFormat(s.r.reader(), &pf); err != nil {
		return err
	}
	if err := validator.ValidatePixelFormat(&pf); err != nil {
		return protocolError("session.readServerInit", "invalid pixel format", err)
	}

	name, err := s.r.str(MaxClipboardLength)
	if err != nil {
		return networkError("session.readServerInit", "failed to read desktop name", err)
	}

	s.mu.Lock()
	s.fbWidth, s.fbHeight = width, height
	s.pixelFormat = pf
	s.desktopName = name
	s.colorMap = NewColorMap().ToArray()
	s.mu.Unlock()

	s.logger.Info("server init received",
		Field{Key: "width", Value: width}, Field{Key: "height", Value: height},
		Field{Key: "desktop_name", Value: name})
	return nil
}

func (s *session) sendSetPixelFormat(pf PixelFormat) error {
	if err := s.w.u8(0); err != nil {
		return networkError("session.sendSetPixelFormat", "failed to write message type", err)
	}
	var pad [3]byte
	if err := s.w.writeAll(pad[:]); err != nil {
		return networkError("session.sendSetPixelFormat", "failed to write padding", err)
	}
	raw, err := writePixelFormat(&pf)
	if err != nil {
		return err
	}
	if err := s.w.writeAll(raw); err != nil {
		return networkError("session.sendSetPixelFormat", "failed to write pixel format", err)
	}
	s.mu.Lock()
	s.pixelFormat = pf
	s.mu.Unlock()
	return nil
}

func (s *session) sendSetEncodings(encodings []int32) error {
	if err := s.w.u8(2); err != nil {
		return networkError("session.sendSetEncodings", "failed to write message type", err)
	}
	if err := s.w.u8(0); err != nil {
		return networkError("session.sendSetEncodings", "failed to write padding", err)
	}
	if err := s.w.u16(uint16(len(encodings))); err != nil { // #nosec G115 - encoding lists are always small
		return networkError("session.sendSetEncodings", "failed to write encoding count", err)
	}
	for _, enc := range encodings {
		if err := s.w.u32(uint32(enc)); err != nil { // #nosec G115 - reinterpreting signed encoding id as bits
			return networkError("session.sendSetEncodings", "failed to write encoding", err)
		}
	}
	s.mu.Lock()
	s.encodings = encodings
	s.mu.Unlock()
	return nil
}

// start launches the read and write pumps. Must be called only after
// connect has returned successfully.
func (s *session) start() {
	s.wg.Add(2)
	go s.readPump()
	go s.writePump()
}

// emit delivers an OutputEvent to the caller, blocking until there is room
// or the session is closing.
func (s *session) emit(ev OutputEvent) {
	select {
	case s.output <- ev:
	case <-s.ctx.Done():
	}
}

// readPump is the sole reader of the transport: it dispatches Running-state
// server messages until the transport closes or the context is cancelled.
func (s *session) readPump() {
	defer s.wg.Done()
	defer close(s.output)

	for {
		if s.ctx.Err() != nil {
			return
		}

		msgType, err := s.r.u8()
		if err != nil {
			s.reportDisconnect(err)
			return
		}

		if err := s.dispatchServerMessage(msgType); err != nil {
			s.reportDisconnect(err)
			return
		}
	}
}

func (s *session) reportDisconnect(err error) {
	code := ErrNetwork
	if ve, ok := err.(*VNCError); ok {
		code = ve.Code
	}
	s.emit(OutputEvent{Kind: OutputDisconnected, Disconnect: DisconnectReason{Code: code, Message: err.Error()}})
	s.logger.Warn("session terminated", Field{Key: "error", Value: err})
	s.setState(stateClosed)
}

// dispatchServerMessage handles one Running-state message from the server.
func (s *session) dispatchServerMessage(msgType uint8) error {
	switch msgType {
	case 0:
		return s.handleFramebufferUpdate()
	case 1:
		return s.handleSetColorMapEntries()
	case 2:
		s.emit(OutputEvent{Kind: OutputBell})
		return nil
	case 3:
		return s.handleServerCutText()
	default:
		return unsupportedError("session.dispatchServerMessage", fmt.Sprintf("unknown server message type %d", msgType), nil)
	}
}

func (s *session) handleFramebufferUpdate() error {
	if _, err := s.r.u8(); err != nil { // padding
		return networkError("session.handleFramebufferUpdate", "failed to read padding", err)
	}
	numRects, err := s.r.u16()
	if err != nil {
		return networkError("session.handleFramebufferUpdate", "failed to read rectangle count", err)
	}

	validator := newInputValidator()
	if numRects != 0xFFFF {
		if err := validator.ValidateMessageLength(uint32(numRects), MaxRectanglesPerUpdate); err != nil {
			return protocolError("session.handleFramebufferUpdate", "too many rectangles", err)
		}
	}

	for i := uint16(0); numRects == 0xFFFF || i < numRects; i++ {
		rect, err := s.r.rectangleHeader()
		if err != nil {
			return networkError("session.handleFramebufferUpdate", "failed to read rectangle header", err)
		}

		decode, ok := decoders[rect.Encoding]
		if !ok {
			return unsupportedError("session.handleFramebufferUpdate",
				fmt.Sprintf("unsupported encoding type: %d", rect.Encoding), nil)
		}

		if rect.Encoding == PseudoEncodingLastRect {
			s.requestUpdate(true)
			return nil
		}

		if err := decode(s, rect, s.r); err != nil {
			return encodingError("session.handleFramebufferUpdate", "failed to decode rectangle", err)
		}
	}
	s.requestUpdate(true)
	return nil
}

func (s *session) handleSetColorMapEntries() error {
	if _, err := s.r.u8(); err != nil {
		return networkError("session.handleSetColorMapEntries", "failed to read padding", err)
	}
	first, err := s.r.u16()
	if err != nil {
		return networkError("session.handleSetColorMapEntries", "failed to read first color", err)
	}
	count, err := s.r.u16()
	if err != nil {
		return networkError("session.handleSetColorMapEntries", "failed to read color count", err)
	}

	validator := newInputValidator()
	if err := validator.ValidateColorMapEntries(first, count, ColorMapSize); err != nil {
		return protocolError("session.handleSetColorMapEntries", "invalid color map entries", err)
	}

	s.mu.Lock()
	for i := uint16(0); i < count; i++ {
		r, _ := s.r.u16()
		g, _ := s.r.u16()
		b, _ := s.r.u16()
		s.colorMap[first+i] = Color{R: r, G: g, B: b}
	}
	s.mu.Unlock()
	return nil
}

func (s *session) handleServerCutText() error {
	if _, err := s.r.bytes(3); err != nil {
		return networkError("session.handleServerCutText", "failed to read padding", err)
	}
	text, err := s.r.str(MaxServerClipboardLength)
	if err != nil {
		return networkError("session.handleServerCutText", "failed to read clipboard text", err)
	}

	validator := newInputValidator()
	if err := validator.ValidateTextData(text, int(MaxServerClipboardLength)); err != nil {
		s.logger.Warn("sanitizing invalid clipboard text from server", Field{Key: "error", Value: err})
		text = validator.SanitizeText(text)
	}

	s.emit(OutputEvent{Kind: OutputClipboardText, Text: text})
	return nil
}

// writePump is the sole writer of the transport: it serializes InputEvents
// from the caller into client-to-server messages.
func (s *session) writePump() {
	defer s.wg.Done()

	for {
		select {
		case ev, ok := <-s.input:
			if !ok {
				return
			}
			if err := s.handleInput(ev); err != nil {
				s.logger.Warn("failed to send input event", Field{Key: "error", Value: err})
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *session) handleInput(ev InputEvent) error {
	switch ev.Kind {
	case InputPointerMove:
		return s.sendPointerEvent(ev.Buttons, ev.X, ev.Y)
	case InputKey:
		return s.sendKeyEvent(ev.Keysym, ev.Pressed)
	case InputClipboardText:
		return s.sendClientCutText(ev.Text)
	case InputRefresh:
		return s.sendFramebufferUpdateRequest(ev.Incremental, ev.RefreshX, ev.RefreshY, ev.RefreshW, ev.RefreshH)
	case InputSetEncodings:
		return s.sendSetEncodings(ev.Encodings)
	default:
		return validationError("session.handleInput", fmt.Sprintf("unknown input kind %d", ev.Kind), nil)
	}
}

// sendPointerEvent wires a pointer position onto a PointerEvent message,
// first clamping the position to the current framebuffer bounds so a
// caller-supplied coordinate outside the desktop never reaches the wire.
func (s *session) sendPointerEvent(buttons ButtonMask, x, y uint16) error {
	if fbWidth, fbHeight := s.snapshotFramebufferSize(); fbWidth != 0 && fbHeight != 0 {
		validator := newInputValidator()
		if err := validator.ValidatePointerPosition(x, y, fbWidth, fbHeight); err != nil {
			s.logger.Debug("clamping out-of-bounds pointer position",
				Field{Key: "error", Value: err})
			if x >= fbWidth {
				x = fbWidth - 1
			}
			if y >= fbHeight {
				y = fbHeight - 1
			}
		}
	}

	if err := s.w.u8(5); err != nil {
		return networkError("session.sendPointerEvent", "failed to write message type", err)
	}
	if err := s.w.u8(uint8(buttons)); err != nil {
		return networkError("session.sendPointerEvent", "failed to write button mask", err)
	}
	if err := s.w.u16(x); err != nil {
		return networkError("session.sendPointerEvent", "failed to write x position", err)
	}
	return wrapNetErr("session.sendPointerEvent", s.w.u16(y))
}

func (s *session) sendKeyEvent(keysym uint32, pressed bool) error {
	if err := s.w.u8(4); err != nil {
		return networkError("session.sendKeyEvent", "failed to write message type", err)
	}
	if err := s.w.u8(boolToU8(pressed)); err != nil {
		return networkError("session.sendKeyEvent", "failed to write down flag", err)
	}
	var pad [2]byte
	if err := s.w.writeAll(pad[:]); err != nil {
		return networkError("session.sendKeyEvent", "failed to write padding", err)
	}
	return wrapNetErr("session.sendKeyEvent", s.w.u32(keysym))
}

func (s *session) sendClientCutText(text string) error {
	validator := newInputValidator()
	if err := validator.ValidateTextData(text, MaxClipboardLength); err != nil {
		return validationError("session.sendClientCutText", "invalid clipboard text", err)
	}
	if err := s.w.u8(6); err != nil {
		return networkError("session.sendClientCutText", "failed to write message type", err)
	}
	var pad [3]byte
	if err := s.w.writeAll(pad[:]); err != nil {
		return networkError("session.sendClientCutText", "failed to write padding", err)
	}
	return wrapNetErr("session.sendClientCutText", s.w.str(text))
}

// sendFramebufferUpdateRequest wires x/y/w/h onto the FramebufferUpdateRequest
// message, first clamping the rectangle to the current framebuffer bounds:
// per the InvalidInput policy an out-of-bounds refresh request is silently
// narrowed to fit rather than rejected or forwarded to the server verbatim.
func (s *session) sendFramebufferUpdateRequest(incremental bool, x, y, w, h uint16) error {
	if fbWidth, fbHeight := s.snapshotFramebufferSize(); fbWidth != 0 && fbHeight != 0 {
		validator := newInputValidator()
		if err := validator.ValidateRectangle(x, y, w, h, fbWidth, fbHeight); err != nil {
			s.logger.Debug("clamping out-of-bounds refresh rectangle",
				Field{Key: "error", Value: err})
			x, y, w, h = clampRectangleToFramebuffer(x, y, w, h, fbWidth, fbHeight)
		}
	}

	if err := s.w.u8(3); err != nil {
		return networkError("session.sendFramebufferUpdateRequest", "failed to write message type", err)
	}
	if err := s.w.u8(boolToU8(incremental)); err != nil {
		return networkError("session.sendFramebufferUpdateRequest", "failed to write incremental flag", err)
	}
	if err := s.w.u16(x); err != nil {
		return networkError("session.sendFramebufferUpdateRequest", "failed to write x", err)
	}
	if err := s.w.u16(y); err != nil {
		return networkError("session.sendFramebufferUpdateRequest", "failed to write y", err)
	}
	if err := s.w.u16(w); err != nil {
		return networkError("session.sendFramebufferUpdateRequest", "failed to write width", err)
	}
	return wrapNetErr("session.sendFramebufferUpdateRequest", s.w.u16(h))
}

// clampRectangleToFramebuffer narrows a rectangle to fit within a fbWidth x
// fbHeight framebuffer: an origin already outside the framebuffer resets to
// (0,0), and width/height are trimmed to whatever remains.
func clampRectangleToFramebuffer(x, y, w, h, fbWidth, fbHeight uint16) (uint16, uint16, uint16, uint16) {
	if x >= fbWidth || y >= fbHeight {
		x, y = 0, 0
	}
	if maxW := uint32(fbWidth) - uint32(x); w == 0 || uint32(w) > maxW {
		w = uint16(maxW) // #nosec G115 - maxW is derived from uint16 fbWidth so it always fits
	}
	if maxH := uint32(fbHeight) - uint32(y); h == 0 || uint32(h) > maxH {
		h = uint16(maxH) // #nosec G115 - maxH is derived from uint16 fbHeight so it always fits
	}
	return x, y, w, h
}

func wrapNetErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return networkError(op, "write failed", err)
}

// close cancels the session context, closes the transport to unblock any
// in-flight read, and waits for both pumps to exit.
func (s *session) close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.transport.Close()
		s.wg.Wait()
		s.zlib.close()
	})
	return err
}

func (s *session) snapshotPixelFormat() PixelFormat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pixelFormat
}

func (s *session) snapshotColorMap() [ColorMapSize]Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colorMap
}

func (s *session) snapshotFramebufferSize() (uint16, uint16) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fbWidth, s.fbHeight
}

func (s *session) snapshotDesktopName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.desktopName
}

func (s *session) setFramebufferSize(w, h uint16) {
	s.mu.Lock()
	s.fbWidth, s.fbHeight = w, h
	s.mu.Unlock()
}
