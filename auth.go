// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"
)

// ClientAuth defines the interface for VNC authentication methods. Handshake
// receives the current transport and returns the transport to use for the
// remainder of the session: every method but VeNCrypt returns t unchanged,
// VeNCrypt returns the TLS-wrapped transport produced by its sub-negotiation.
type ClientAuth interface {
	SecurityType() uint8
	Handshake(ctx context.Context, t Transport) (Transport, error)
	String() string
}

// ClientAuthNone implements the "None" authentication method (security type 1).
type ClientAuthNone struct {
	logger Logger
}

// SecurityType returns the security type identifier for None authentication.
func (c *ClientAuthNone) SecurityType() uint8 {
	return 1
}

// Handshake performs the None authentication handshake.
func (c *ClientAuthNone) Handshake(ctx context.Context, t Transport) (Transport, error) {
	select {
	case <-ctx.Done():
		if c.logger != nil {
			c.logger.Warn("None authentication cancelled by context")
		}
		return nil, timeoutError("ClientAuthNone.Handshake", "authentication cancelled", ctx.Err())
	default:
	}

	if c.logger != nil {
		c.logger.Debug("Performing None authentication handshake")
		c.logger.Info("None authentication completed successfully")
	}

	return t, nil
}

// String returns a human-readable description of the authentication method.
func (c *ClientAuthNone) String() string {
	return "None"
}

// SetLogger sets the logger for the authentication method.
func (c *ClientAuthNone) SetLogger(logger Logger) {
	c.logger = logger
}

// PasswordAuth implements VNC Authentication (security type 2).
type PasswordAuth struct {
	Password     string
	logger       Logger
	secureMemory *SecureMemory
}

// NewPasswordAuth creates a new PasswordAuth instance with enhanced security features.
func NewPasswordAuth(password string) *PasswordAuth {
	return &PasswordAuth{
		Password:     password,
		secureMemory: &SecureMemory{},
	}
}

// SecurityType returns the security type identifier for VNC Password authentication.
func (p *PasswordAuth) SecurityType() uint8 {
	return 2
}

// Handshake performs the VNC Authentication handshake with the server.
func (p *PasswordAuth) Handshake(ctx context.Context, c Transport) (Transport, error) {
	select {
	case <-ctx.Done():
		if p.logger != nil {
			p.logger.Warn("VNC authentication cancelled by context")
		}
		return nil, timeoutError("PasswordAuth.Handshake", "authentication cancelled", ctx.Err())
	default:
	}

	if p.logger != nil {
		p.logger.Debug("Starting VNC password authentication handshake")

		if len(p.Password) > VNCMaxPasswordLength {
			p.logger.Warn("Password exceeds VNC maximum length, will be truncated for DES encryption",
				Field{Key: "password_length", Value: len(p.Password)})
		}

		if len(p.Password) == 0 {
			p.logger.Warn("Empty password provided for VNC authentication")
		}
	}

	if p.secureMemory == nil {
		p.secureMemory = &SecureMemory{}
	}

	memProtection := newMemoryProtection()
	challengeBuffer := memProtection.NewProtectedBytes(VNCChallengeSize)
	defer challengeBuffer.Clear()

	if err := binary.Read(c, binary.BigEndian, challengeBuffer.Data()); err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to read authentication challenge from server",
				Field{Key: "error", Value: err})
		}
		return nil, networkError("PasswordAuth.Handshake", "failed to read authentication challenge", err)
	}

	if p.logger != nil {
		p.logger.Debug("Received authentication challenge from server",
			Field{Key: "challenge_length", Value: challengeBuffer.Size()})
	}

	select {
	case <-ctx.Done():
		if p.logger != nil {
			p.logger.Warn("VNC authentication cancelled during encryption")
		}
		return nil, timeoutError("PasswordAuth.Handshake", "authentication cancelled during encryption", ctx.Err())
	default:
	}

	crypted, err := p.encrypt(p.Password, challengeBuffer.Data())
	if err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to encrypt password challenge",
				Field{Key: "error", Value: err})
		}
		return nil, authenticationError("PasswordAuth.Handshake", "failed to encrypt password", err)
	}

	responseBuffer := memProtection.NewProtectedBytes(len(crypted))
	defer responseBuffer.Clear()

	if err := responseBuffer.Copy(crypted); err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to copy encrypted response to protected buffer",
				Field{Key: "error", Value: err})
		}
		return nil, authenticationError("PasswordAuth.Handshake", "failed to prepare encrypted response", err)
	}

	if p.secureMemory != nil {
		p.secureMemory.ClearBytes(crypted)
	}

	if p.logger != nil {
		p.logger.Debug("Successfully encrypted authentication challenge")
	}

	if err := binary.Write(c, binary.BigEndian, responseBuffer.Data()); err != nil {
		if p.logger != nil {
			p.logger.Error("Failed to send encrypted password response",
				Field{Key: "error", Value: err})
		}
		return nil, networkError("PasswordAuth.Handshake", "failed to send encrypted password", err)
	}

	if p.logger != nil {
		p.logger.Debug("VNC password authentication handshake completed")
	}

	return c, nil
}

// String returns a human-readable description of the authentication method.
func (p *PasswordAuth) String() string {
	return "VNC Password"
}

// SetLogger sets the logger for the authentication method.
func (p *PasswordAuth) SetLogger(logger Logger) {
	p.logger = logger
}

// ClearPassword securely clears the password from memory.
func (p *PasswordAuth) ClearPassword() {
	if p.secureMemory != nil && p.Password != "" {
		p.Password = p.secureMemory.ClearString(p.Password)
	}
}

// encrypt performs DES encryption of the challenge using the provided password.
func (p *PasswordAuth) encrypt(key string, bytes []byte) ([]byte, error) {
	secureCipher := newSecureDESCipher()
	timingProtection := newTimingProtection()

	var result []byte
	var encryptErr error

	err := timingProtection.ConstantTimeAuthentication(func() error {
		var err error
		result, err = secureCipher.EncryptVNCChallenge(key, bytes)
		encryptErr = err
		return err
	}, 50*time.Millisecond)

	if err != nil {
		return nil, err
	}

	if encryptErr != nil {
		return nil, encryptErr
	}

	return result, nil
}

// AuthFactory is a function type that creates new instances of authentication methods.
type AuthFactory func() ClientAuth

// AuthRegistry manages available authentication methods.
type AuthRegistry struct {
	factories map[uint8]AuthFactory
	mu        sync.RWMutex
	logger    Logger
}

// NewAuthRegistry creates a new authentication registry with default authentication methods.
func NewAuthRegistry() *AuthRegistry {
	registry := &AuthRegistry{
		factories: make(map[uint8]AuthFactory),
		logger:    &NoOpLogger{},
	}

	registry.Register(1, func() ClientAuth {
		return &ClientAuthNone{}
	})

	registry.Register(2, func() ClientAuth {
		return &PasswordAuth{}
	})

	registry.Register(19, func() ClientAuth {
		return &VeNCryptAuth{}
	})

	return registry
}

// Register adds an authentication method factory to the registry.
func (r *AuthRegistry) Register(securityType uint8, factory AuthFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("Registering authentication method",
			Field{Key: "security_type", Value: securityType})
	}

	r.factories[securityType] = factory
}

// Unregister removes an authentication method from the registry.
func (r *AuthRegistry) Unregister(securityType uint8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[securityType]; exists {
		delete(r.factories, securityType)

		if r.logger != nil {
			r.logger.Debug("Unregistered authentication method",
				Field{Key: "security_type", Value: securityType})
		}

		return true
	}

	return false
}

// CreateAuth creates a new instance of the authentication method for the given security type.
func (r *AuthRegistry) CreateAuth(securityType uint8) (ClientAuth, error) {
	r.mu.RLock()
	factory, exists := r.factories[securityType]
	r.mu.RUnlock()

	if !exists {
		if r.logger != nil {
			r.logger.Warn("Unsupported authentication method requested",
				Field{Key: "security_type", Value: securityType})
		}
		return nil, unsupportedError("AuthRegistry.CreateAuth",
			fmt.Sprintf("unsupported security type: %d", securityType), nil)
	}

	auth := factory()

	if r.logger != nil {
		r.logger.Debug("Created authentication method instance",
			Field{Key: "security_type", Value: securityType},
			Field{Key: "method", Value: auth.String()})
	}

	return auth, nil
}

// GetSupportedTypes returns a list of all supported security types.
func (r *AuthRegistry) GetSupportedTypes() []uint8 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]uint8, 0, len(r.factories))
	for securityType := range r.factories {
		types = append(types, securityType)
	}

	return types
}

// IsSupported checks if a security type is supported by the registry.
func (r *AuthRegistry) IsSupported(securityType uint8) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[securityType]
	return exists
}

// SetLogger sets the logger for the authentication registry.
func (r *AuthRegistry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger = logger
}

// NegotiateAuth performs authentication method negotiation between client and server.
func (r *AuthRegistry) NegotiateAuth(ctx context.Context, serverTypes []uint8, preferredOrder []uint8) (ClientAuth, uint8, error) {
	select {
	case <-ctx.Done():
		if r.logger != nil {
			r.logger.Warn("Authentication negotiation cancelled by context")
		}
		return nil, 0, timeoutError("AuthRegistry.NegotiateAuth", "negotiation cancelled", ctx.Err())
	default:
	}

	if r.logger != nil {
		r.logger.Debug("Starting authentication negotiation",
			Field{Key: "server_types", Value: serverTypes},
			Field{Key: "preferred_order", Value: preferredOrder})
	}

	if preferredOrder == nil {
		preferredOrder = serverTypes
	}

	for _, preferredType := range preferredOrder {
		for _, serverType := range serverTypes {
			if preferredType == serverType && r.IsSupported(preferredType) {
				auth, err := r.CreateAuth(preferredType)
				if err != nil {
					if r.logger != nil {
						r.logger.Error("Failed to create authentication method during negotiation",
							Field{Key: "security_type", Value: preferredType},
							Field{Key: "error", Value: err})
					}
					continue
				}

				if r.logger != nil {
					r.logger.Info("Authentication method negotiated successfully",
						Field{Key: "security_type", Value: preferredType},
						Field{Key: "method", Value: auth.String()})
				}

				return auth, preferredType, nil
			}
		}
	}

	supportedTypes := r.GetSupportedTypes()
	if r.logger != nil {
		r.logger.Error("No mutual authentication method found",
			Field{Key: "server_types", Value: serverTypes},
			Field{Key: "client_types", Value: supportedTypes})
	}

	return nil, 0, unsupportedError("AuthRegistry.NegotiateAuth",
		fmt.Sprintf("no mutual authentication method found. server: %v, client: %v", serverTypes, supportedTypes), nil)
}

// ValidateAuthMethod performs validation on an authentication method instance.
func (r *AuthRegistry) ValidateAuthMethod(auth ClientAuth) error {
	if auth == nil {
		return validationError("AuthRegistry.ValidateAuthMethod", "authentication method is nil", nil)
	}

	securityType := auth.SecurityType()
	if securityType == 0 {
		return validationError("AuthRegistry.ValidateAuthMethod", "invalid security type 0", nil)
	}

	switch a := auth.(type) {
	case *PasswordAuth:
		if a.Password == "" {
			if r.logger != nil {
				r.logger.Warn("Password authentication method has empty password")
			}
			return validationError("AuthRegistry.ValidateAuthMethod", "password authentication requires non-empty password", nil)
		}
		if len(a.Password) > VNCMaxPasswordLength {
			if r.logger != nil {
				r.logger.Warn("Password exceeds VNC maximum length",
					Field{Key: "length", Value: len(a.Password)})
			}
		}
	case *ClientAuthNone:
		// No validation required.
	case *VeNCryptAuth:
		// Credential requirements depend on which sub-type negotiation
		// picks (Plain/Vnc sub-types need credentials, *None sub-types
		// don't), so nothing is checked here; Handshake sends the Username
		// and Password fields as they are for whichever sub-type is chosen.
	default:
		if r.logger != nil {
			r.logger.Debug("Validating custom authentication method",
				Field{Key: "method", Value: auth.String()},
				Field{Key: "security_type", Value: securityType})
		}
	}

	if r.logger != nil {
		r.logger.Debug("Authentication method validation successful",
			Field{Key: "method", Value: auth.String()},
			Field{Key: "security_type", Value: securityType})
	}

	return nil
}

// VeNCrypt sub-type identifiers, as defined by the VeNCrypt 0.2 extension.
// The "X509" family authenticates the server certificate against RootCAs;
// the "Tls" family accepts any certificate (anonymous confidentiality only).
const (
	VeNCryptPlain    uint32 = 256
	VeNCryptTLSNone  uint32 = 257
	VeNCryptTLSVnc   uint32 = 258
	VeNCryptTLSPlain uint32 = 259
	VeNCryptX509None uint32 = 260
	VeNCryptX509Vnc  uint32 = 261
	VeNCryptX509Plain uint32 = 262
)

// VeNCryptAuth implements the VeNCrypt security type (19): a TLS-wrapping
// meta-authentication that negotiates a sub-type, optionally upgrades the
// transport to TLS, then runs an inner authentication method over it.
type VeNCryptAuth struct {
	// Username and Password feed the Plain and *Vnc sub-types.
	Username string
	Password string

	// Preference lists sub-types in the order they should be tried against
	// the server's offered list. A nil Preference falls back to the
	// strongest-first default: X509Plain, X509Vnc, X509None, TlsPlain,
	// TlsVnc, TlsNone, Plain.
	Preference []uint32

	// TLSPolicy controls certificate validation for the TLS upgrade.
	// VerifyPeer is forced on for X509 sub-types and off for Tls sub-types
	// regardless of the value supplied here.
	TLSPolicy TLSCertPolicy

	logger Logger
}

// SecurityType returns the security type identifier for VeNCrypt.
func (v *VeNCryptAuth) SecurityType() uint8 {
	return 19
}

// String returns a human-readable description of the authentication method.
func (v *VeNCryptAuth) String() string {
	return "VeNCrypt"
}

// SetLogger sets the logger for the authentication method.
func (v *VeNCryptAuth) SetLogger(logger Logger) {
	v.logger = logger
}

func defaultVeNCryptPreference() []uint32 {
	return []uint32{
		VeNCryptX509Plain, VeNCryptX509Vnc, VeNCryptX509None,
		VeNCryptTLSPlain, VeNCryptTLSVnc, VeNCryptTLSNone,
		VeNCryptPlain,
	}
}

// Handshake negotiates the VeNCrypt version and sub-type, upgrades the
// transport to TLS when the chosen sub-type requires it, and runs the
// sub-type's inner authentication over the resulting transport.
func (v *VeNCryptAuth) Handshake(ctx context.Context, t Transport) (Transport, error) {
	select {
	case <-ctx.Done():
		return nil, timeoutError("VeNCryptAuth.Handshake", "authentication cancelled", ctx.Err())
	default:
	}

	r := newWireReader(t)
	w := newWireWriter(t)

	serverMajor, err := r.u8()
	if err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to read VeNCrypt version", err)
	}
	if _, err := r.u8(); err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to read VeNCrypt version", err)
	}
	if serverMajor != 0 {
		return nil, unsupportedError("VeNCryptAuth.Handshake",
			fmt.Sprintf("unsupported VeNCrypt major version %d", serverMajor), nil)
	}

	if err := w.u8(0); err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to send VeNCrypt version", err)
	}
	if err := w.u8(2); err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to send VeNCrypt version", err)
	}

	ack, err := r.u8()
	if err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to read version acknowledgement", err)
	}
	if ack != 0 {
		return nil, authenticationError("VeNCryptAuth.Handshake", "server rejected VeNCrypt version 0.2", nil)
	}

	numTypes, err := r.u8()
	if err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to read sub-type count", err)
	}
	offered := make([]uint32, numTypes)
	for i := range offered {
		if offered[i], err = r.u32(); err != nil {
			return nil, networkError("VeNCryptAuth.Handshake", "failed to read sub-type list", err)
		}
	}

	if err := newInputValidator().ValidateVeNCryptSubtypes(offered); err != nil {
		return nil, protocolError("VeNCryptAuth.Handshake", "invalid VeNCrypt sub-type list", err)
	}

	preference := v.Preference
	if preference == nil {
		preference = defaultVeNCryptPreference()
	}

	chosen := uint32(0)
	for _, want := range preference {
		for _, have := range offered {
			if want == have {
				chosen = want
				break
			}
		}
		if chosen != 0 {
			break
		}
	}
	if chosen == 0 {
		return nil, unsupportedError("VeNCryptAuth.Handshake",
			fmt.Sprintf("no mutually supported VeNCrypt sub-type, server offered: %v", offered), nil)
	}

	if err := w.u32(chosen); err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to send chosen sub-type", err)
	}

	ack, err = r.u8()
	if err != nil {
		return nil, networkError("VeNCryptAuth.Handshake", "failed to read sub-type acknowledgement", err)
	}
	if ack != 1 {
		return nil, authenticationError("VeNCryptAuth.Handshake", "server rejected chosen VeNCrypt sub-type", nil)
	}

	if v.logger != nil {
		v.logger.Info("VeNCrypt sub-type negotiated", Field{Key: "sub_type", Value: chosen})
	}

	return v.runSubtype(ctx, t, chosen)
}

func (v *VeNCryptAuth) runSubtype(ctx context.Context, t Transport, subtype uint32) (Transport, error) {
	switch subtype {
	case VeNCryptPlain:
		if err := v.sendPlainCredentials(newWireWriter(t)); err != nil {
			return nil, err
		}
		return t, nil

	case VeNCryptTLSNone, VeNCryptX509None:
		upgraded, err := v.upgrade(t, subtype)
		if err != nil {
			return nil, err
		}
		return upgraded, nil

	case VeNCryptTLSVnc, VeNCryptX509Vnc:
		upgraded, err := v.upgrade(t, subtype)
		if err != nil {
			return nil, err
		}
		inner := &PasswordAuth{Password: v.Password, logger: v.logger}
		if _, err := inner.Handshake(ctx, upgraded); err != nil {
			return nil, err
		}
		return upgraded, nil

	case VeNCryptTLSPlain, VeNCryptX509Plain:
		upgraded, err := v.upgrade(t, subtype)
		if err != nil {
			return nil, err
		}
		if err := v.sendPlainCredentials(newWireWriter(upgraded)); err != nil {
			return nil, err
		}
		return upgraded, nil

	default:
		return nil, unsupportedError("VeNCryptAuth.Handshake", fmt.Sprintf("unhandled VeNCrypt sub-type %d", subtype), nil)
	}
}

func (v *VeNCryptAuth) upgrade(t Transport, subtype uint32) (Transport, error) {
	policy := v.TLSPolicy
	policy.VerifyPeer = subtype == VeNCryptX509None || subtype == VeNCryptX509Vnc || subtype == VeNCryptX509Plain
	return upgradeToTLS(t, policy)
}

// sendPlainCredentials writes the VeNCrypt Plain sub-authentication payload:
// two u32 length prefixes followed by the raw username and password bytes.
func (v *VeNCryptAuth) sendPlainCredentials(w *wireWriter) error {
	if err := w.u32(uint32(len(v.Username))); err != nil { // #nosec G115 - credential lengths are small
		return networkError("VeNCryptAuth.sendPlainCredentials", "failed to send username length", err)
	}
	if err := w.u32(uint32(len(v.Password))); err != nil { // #nosec G115 - credential lengths are small
		return networkError("VeNCryptAuth.sendPlainCredentials", "failed to send password length", err)
	}
	if err := w.writeAll([]byte(v.Username)); err != nil {
		return networkError("VeNCryptAuth.sendPlainCredentials", "failed to send username", err)
	}
	if err := w.writeAll([]byte(v.Password)); err != nil {
		return networkError("VeNCryptAuth.sendPlainCredentials", "failed to send password", err)
	}
	return nil
}
