// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"time"
)

// Transport is a duplex byte stream the session drives directly: a plain
// TCP connection, a WebSocket-tunneled connection, or a SOCKS-proxied
// connection all satisfy it. *net.TCPConn implements Transport directly;
// NewTCPTransport adapts any net.Conn.
type Transport interface {
	io.Reader
	io.Writer

	// CloseWrite half-closes the write side, letting the peer observe
	// EOF while reads continue to drain any in-flight response.
	CloseWrite() error

	Close() error
}

// netConnTransport adapts a net.Conn to Transport, falling back to a full
// Close when the underlying connection has no half-close support.
type netConnTransport struct {
	net.Conn
}

// NewTCPTransport wraps a net.Conn (typically from net.Dial) as a Transport.
func NewTCPTransport(conn net.Conn) Transport {
	return &netConnTransport{Conn: conn}
}

func (t *netConnTransport) CloseWrite() error {
	type halfCloser interface {
		CloseWrite() error
	}
	if hc, ok := t.Conn.(halfCloser); ok {
		return hc.CloseWrite()
	}
	return t.Conn.Close()
}

// TLSCertPolicy controls how a mid-stream TLS upgrade validates the peer
// certificate, matching the two VeNCrypt behaviors: the X509 sub-types
// validate against a caller-supplied root store, the Tls sub-types accept
// any certificate (the server has no PKI, only anonymous confidentiality).
type TLSCertPolicy struct {
	// RootCAs is used to validate the peer certificate when VerifyPeer is
	// true. A nil pool falls back to the system root store.
	RootCAs *x509.CertPool

	// ClientCert is presented to the server if non-nil.
	ClientCert *tls.Certificate

	// VerifyPeer selects certificate validation (X509 sub-types) versus
	// blind acceptance (Tls sub-types).
	VerifyPeer bool

	ServerName string
}

// upgradeToTLS wraps a Transport in a TLS client connection per the given
// policy. This is the "raw -> tls_wrapped" upgrade function the VeNCrypt
// negotiator calls mid-handshake.
func upgradeToTLS(t Transport, policy TLSCertPolicy) (Transport, error) {
	cfg := &tls.Config{
		InsecureSkipVerify: !policy.VerifyPeer, // #nosec G402 - VeNCrypt Tls sub-types are anonymous-DH by design
		RootCAs:            policy.RootCAs,
		ServerName:         policy.ServerName,
		MinVersion:         tls.VersionTLS12,
	}
	if policy.ClientCert != nil {
		cfg.Certificates = []tls.Certificate{*policy.ClientCert}
	}

	tlsConn := tls.Client(&transportConnAdapter{Transport: t}, cfg)
	if err := tlsConn.Handshake(); err != nil {
		return nil, tlsError("upgradeToTLS", "TLS handshake failed", err)
	}
	return &netConnTransport{Conn: tlsConn}, nil
}

// transportConnAdapter adapts a Transport (which has no LocalAddr/etc.) to
// the net.Conn shape crypto/tls.Client requires.
type transportConnAdapter struct {
	Transport
}

func (a *transportConnAdapter) LocalAddr() net.Addr                { return nil }
func (a *transportConnAdapter) RemoteAddr() net.Addr               { return nil }
func (a *transportConnAdapter) SetDeadline(t time.Time) error      { return nil }
func (a *transportConnAdapter) SetReadDeadline(t time.Time) error  { return nil }
func (a *transportConnAdapter) SetWriteDeadline(t time.Time) error { return nil }
