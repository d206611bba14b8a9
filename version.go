// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"fmt"
)

// protocolVersion is the negotiated RFB major.minor pair. Unrecognized
// version strings are treated as 3.3 per RFC 6143 section 7.1.1.
type protocolVersion struct {
	Major, Minor uint
}

var (
	version33 = protocolVersion{3, 3}
	version37 = protocolVersion{3, 7}
	version38 = protocolVersion{3, 8}
)

const pvLen = 12

// parseProtocolVersion parses a VNC protocol version string.
func parseProtocolVersion(pv []byte) (uint, uint, error) {
	var major, minor uint

	if len(pv) < pvLen {
		return 0, 0, protocolError("parseProtocolVersion",
			fmt.Sprintf("protocol version message too short (%v < %v)", len(pv), pvLen), nil)
	}

	l, err := fmt.Sscanf(string(pv), "RFB %d.%d\n", &major, &minor)
	if l != 2 {
		return 0, 0, protocolError("parseProtocolVersion", "invalid protocol version format", nil)
	}
	if err != nil {
		return 0, 0, protocolError("parseProtocolVersion", "failed to parse protocol version", err)
	}

	return major, minor, nil
}

func (v protocolVersion) atLeast(other protocolVersion) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}

func (v protocolVersion) bytes() [pvLen]byte {
	var out [pvLen]byte
	copy(out[:], fmt.Sprintf("RFB %03d.%03d\n", v.Major, v.Minor))
	return out
}

// parseVersionString parses a 12-byte "RFB xxx.yyy\n" version announcement.
// A malformed string falls back to version 3.3, matching the behavior of
// servers that predate the versioned handshake.
func parseVersionString(raw [pvLen]byte) protocolVersion {
	major, minor, err := parseProtocolVersion(raw[:])
	if err != nil {
		return version33
	}
	return protocolVersion{major, minor}
}

// negotiateVersion performs the RFB version exchange: read the server's
// announcement, pick the highest version both sides support, and reply
// with it.
func negotiateVersion(ctx context.Context, r *wireReader, w *wireWriter) (protocolVersion, error) {
	var raw [pvLen]byte
	if err := r.readFull(raw[:]); err != nil {
		return protocolVersion{}, err
	}

	if err := (newInputValidator()).ValidateProtocolVersion(string(raw[:])); err != nil {
		return protocolVersion{}, protocolError("negotiateVersion", "server sent invalid protocol version format", err)
	}

	server := parseVersionString(raw)
	if server.Major < 3 {
		return protocolVersion{}, unsupportedError("negotiateVersion",
			fmt.Sprintf("unsupported major version: %d", server.Major), nil)
	}

	chosen := version38
	switch {
	case server.atLeast(version38):
		chosen = version38
	case server.atLeast(version37):
		chosen = version37
	default:
		chosen = version33
	}

	reply := chosen.bytes()
	if err := w.writeAll(reply[:]); err != nil {
		return protocolVersion{}, err
	}

	return chosen, nil
}
