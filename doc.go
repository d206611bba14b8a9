// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Package rfb implements the client half of the RFB (Remote Framebuffer)
// protocol described in RFC 6143, plus the Tight and VeNCrypt extensions,
// as a transport-agnostic, non-blocking protocol engine.
//
// The engine speaks Transport (any io.Reader/io.Writer with Close and
// CloseWrite), not net.Conn directly, so it drives plain TCP, WebSocket, or
// SOCKS-proxied connections identically. Connect performs the handshake
// synchronously and returns a Client backed by a background session that
// owns the transport; callers never read or write the wire themselves.
//
// # Basic Usage
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	conn, err := net.Dial("tcp", "localhost:5900")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := rfb.Connect(ctx, rfb.NewTCPTransport(conn),
//		rfb.WithPassword("secret"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// # Event Loop
//
// Once connected, the caller drives the session with PollEvent and Input.
// The session requests the full framebuffer itself as soon as the handshake
// completes and an incremental update after every FramebufferUpdate, so
// events arrive without any call to Refresh:
//
//	for {
//		ev, ok := client.PollEvent(ctx)
//		if !ok {
//			break
//		}
//		switch ev.Kind {
//		case rfb.OutputDecodedRect:
//			// blit ev.Rect.Pixels, or copy ev.Rect.SrcX/SrcY if IsCopyRect
//		case rfb.OutputResize:
//			// reallocate the local framebuffer to ev.Width x ev.Height
//		case rfb.OutputCursor:
//			// update the client-rendered cursor from ev.Cursor
//		case rfb.OutputDisconnected:
//			// ev.Disconnect explains why; the session is now closed
//		}
//	}
//
// # Input Events
//
//	client.Input(rfb.KeyEventInput(0x0061, true))  // 'a' key down
//	client.Input(rfb.KeyEventInput(0x0061, false)) // 'a' key up
//	client.Input(rfb.PointerMoveEvent(rfb.ButtonLeft, 100, 100))
//	client.Input(rfb.PointerMoveEvent(0, 100, 100))
//
// # Authentication
//
// None, VncAuth (DES-based password auth), and VeNCrypt (TLS-wrapped
// Plain/X509 sub-types) are negotiated automatically through AuthRegistry
// based on what the server offers and WithAuth's preference order;
// WithPassword and WithUsername supply the credentials each method needs.
//
// # Error Handling
//
//	if rfb.IsVNCError(err, rfb.ErrAuthentication) {
//		log.Printf("authentication failed: %v", err)
//	}
package rfb
