// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"net/url"

	// Registering the "socks4" scheme with golang.org/x/net/proxy so
	// proxy.FromURL can dial socks4:// URLs alongside the socks5:// support
	// proxy already provides natively.
	_ "github.com/bdandy/go-socks4"
	"golang.org/x/net/proxy"
)

// DialProxiedTransport establishes a TCP connection to addr through a
// SOCKS proxy (socks5:// or socks4://) and wraps it as a Transport. Used
// when the VNC server is only reachable through a jump host.
func DialProxiedTransport(proxyURL, addr string) (Transport, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, configurationError("DialProxiedTransport", "invalid proxy URL", err)
	}

	dialer, err := proxy.FromURL(parsed, proxy.Direct)
	if err != nil {
		return nil, configurationError("DialProxiedTransport", "failed to construct proxy dialer", err)
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, networkError("DialProxiedTransport", "proxied dial failed", err)
	}

	return NewTCPTransport(conn), nil
}
