// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"time"
)

// ButtonMask represents the state of pointer buttons in a VNC pointer event.
type ButtonMask uint8

// Button mask constants for standard mouse buttons and scroll wheel events.
const (
	ButtonLeft ButtonMask = 1 << iota
	ButtonMiddle
	ButtonRight
	Button4
	Button5
	Button6
	Button7
	Button8
)

// VNC protocol constants.
const (
	ColorMapSize             = 256
	MaxClipboardLength       = 1024 * 1024
	Latin1MaxCodePoint       = 255
	MaxRectanglesPerUpdate   = 10000
	MaxServerClipboardLength = 10 * 1024 * 1024
)

// MetricsCollector defines the interface for collecting metrics and observability data.
type MetricsCollector interface {
	Counter(name string, tags ...interface{}) interface{}
	Gauge(name string, tags ...interface{}) interface{}
	Histogram(name string, tags ...interface{}) interface{}
}

// NoOpMetrics is a MetricsCollector implementation that discards all metrics.
type NoOpMetrics struct{}

// Counter returns a no-op counter metric.
func (m *NoOpMetrics) Counter(name string, tags ...interface{}) interface{} { return nil }

// Gauge returns a no-op gauge metric.
func (m *NoOpMetrics) Gauge(name string, tags ...interface{}) interface{} { return nil }

// Histogram returns a no-op histogram metric.
func (m *NoOpMetrics) Histogram(name string, tags ...interface{}) interface{} { return nil }

// ClientOption configures a Client before Connect performs the handshake.
type ClientOption func(*sessionConfig)

// WithAuth sets the authentication methods this client is willing to use,
// tried in the order the server's advertised security types allow.
func WithAuth(preferredTypes ...uint8) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.authPreference = preferredTypes
	}
}

// WithAuthRegistry sets a custom authentication registry, letting callers
// register security types beyond None/VncAuth/VeNCrypt.
func WithAuthRegistry(registry *AuthRegistry) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.authRegistry = registry
	}
}

// WithPassword sets the VNC password used for VncAuth or VeNCrypt Plain
// authentication, if the server selects one of those methods.
func WithPassword(password string) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.credentials = password
	}
}

// WithUsername sets the username sent for VeNCrypt Plain authentication.
func WithUsername(username string) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.username = username
	}
}

// WithTLSPolicy configures certificate handling for VeNCrypt's X509 security
// sub-types.
func WithTLSPolicy(policy TLSCertPolicy) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.tlsPolicy = policy
	}
}

// WithExclusive sets whether the client requests exclusive access, causing
// the server to disconnect other clients when true.
func WithExclusive(exclusive bool) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.sharedFlag = !exclusive
	}
}

// WithEncodings overrides the default encoding preference list advertised
// to the server. See DefaultEncodings for what is sent when this option is
// omitted.
func WithEncodings(encodings ...int32) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.acceptedEncodings = encodings
	}
}

// WithPixelFormat requests a specific pixel format immediately after the
// handshake completes, before the first FramebufferUpdateRequest is sent.
func WithPixelFormat(pf *PixelFormat) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.pixelFormatPreference = pf
	}
}

// WithLogger sets the logger used for connection diagnostics.
// Use NoOpLogger to disable logging or provide a custom implementation.
func WithLogger(logger Logger) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.logger = logger
	}
}

// WithMetrics sets the metrics collector used for connection monitoring.
func WithMetrics(metrics MetricsCollector) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.metrics = metrics
	}
}

// WithOutputBufferSize sets the capacity of the channel PollEvent drains.
// A full buffer applies backpressure to the read pump, which stalls the
// transport until the caller catches up.
func WithOutputBufferSize(n int) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.outputBufferSize = n
	}
}

// WithInputBufferSize sets the capacity of the channel Input enqueues to.
func WithInputBufferSize(n int) ClientOption {
	return func(cfg *sessionConfig) {
		cfg.inputBufferSize = n
	}
}

// Client is a connected RFB session: a background session goroutine pair
// owns the transport, and the caller drives it through PollEvent/Input
// without ever touching the wire directly.
type Client struct {
	session *session
}

// Connect performs the full RFB handshake over t (version negotiation,
// security negotiation including any VeNCrypt TLS upgrade, ClientInit, and
// ServerInit) and, on success, starts the background read/write pumps.
//
// The returned Client is ready for PollEvent/Input immediately. The session
// drives its own FramebufferUpdateRequest pull loop: it issues a full
// request as soon as the handshake completes and an incremental follow-up
// after every FramebufferUpdate the server sends, so the first framebuffer
// contents and every update after it arrive without the caller ever calling
// Refresh. Refresh remains available for requesting an out-of-cycle repaint
// of a specific region.
func Connect(ctx context.Context, t Transport, opts ...ClientOption) (*Client, error) {
	cfg := sessionConfig{
		transport:  t,
		sharedFlag: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := newSession(cfg)
	if err := s.connect(ctx); err != nil {
		_ = s.close()
		return nil, err
	}
	s.start()

	return &Client{session: s}, nil
}

// ConnectTimeout is a convenience wrapper around Connect that bounds the
// entire handshake with a deadline.
func ConnectTimeout(t Transport, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return Connect(ctx, t, opts...)
}

// PollEvent blocks until the session produces an OutputEvent, the context
// is cancelled, or the session has been closed (reported once as a final
// OutputDisconnected event, after which ok is false).
func (c *Client) PollEvent(ctx context.Context) (OutputEvent, bool) {
	select {
	case ev, ok := <-c.session.output:
		return ev, ok
	case <-ctx.Done():
		return OutputEvent{}, false
	}
}

// TryPollEvent returns immediately: an event and true if one was already
// queued, or a zero event and false otherwise. Useful for draining the
// event queue inside a rendering loop without blocking a frame.
func (c *Client) TryPollEvent() (OutputEvent, bool) {
	select {
	case ev, ok := <-c.session.output:
		return ev, ok
	default:
		return OutputEvent{}, false
	}
}

// Input enqueues an event to be sent to the server. It returns an error
// only if the session has already been closed; delivery itself happens
// asynchronously on the write pump and its own errors surface as log
// entries, since RFB gives the client no way to correlate a send failure
// back to a specific input message.
func (c *Client) Input(ev InputEvent) error {
	select {
	case c.session.input <- ev:
		return nil
	case <-c.session.ctx.Done():
		return disconnectedError("Client.Input", "session is closed", nil)
	}
}

// Refresh is a convenience wrapper around Input(RefreshEvent(...)). The
// session's own pull loop already keeps the framebuffer current; call this
// only to force an out-of-cycle repaint of a specific region. x/y/w/h are
// clamped to the current framebuffer bounds before they reach the wire, so
// an out-of-bounds rectangle is narrowed rather than rejected.
func (c *Client) Refresh(incremental bool, x, y, w, h uint16) error {
	return c.Input(RefreshEvent(incremental, x, y, w, h))
}

// Close terminates the session: it cancels the background pumps, closes
// the transport, and waits for both goroutines to exit. Safe to call more
// than once.
func (c *Client) Close() error {
	return c.session.close()
}

// FramebufferSize returns the current framebuffer dimensions, updated
// whenever the server sends a DesktopSize pseudo-rectangle.
func (c *Client) FramebufferSize() (width, height uint16) {
	return c.session.snapshotFramebufferSize()
}

// DesktopName returns the desktop name reported in ServerInit.
func (c *Client) DesktopName() string {
	return c.session.snapshotDesktopName()
}

// PixelFormat returns the pixel format currently in effect: either the
// server's default or, after WithPixelFormat / a SetPixelFormat-equivalent
// change, the client's requested format.
func (c *Client) PixelFormat() PixelFormat {
	return c.session.snapshotPixelFormat()
}

// ColorMap returns a snapshot of the current 256-entry color map, only
// meaningful when PixelFormat().TrueColor is false.
func (c *Client) ColorMap() [ColorMapSize]Color {
	return c.session.snapshotColorMap()
}
