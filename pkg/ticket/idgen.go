package ticket

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// GrantingPrefix identifies granting-ticket ids
	GrantingPrefix = "TGT-"
	// ServicePrefix identifies service-ticket ids
	ServicePrefix = "ST-"
	// idRandomBytes is the entropy per id (32 bytes = 256 bits)
	idRandomBytes = 32
)

// IDGenerator produces unguessable ticket ids: a kind prefix followed by
// base64url-encoded random bytes.
type IDGenerator struct{}

// NewIDGenerator creates a new id generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GrantingID generates a fresh granting-ticket id.
func (g *IDGenerator) GrantingID() (string, error) {
	return g.generate(GrantingPrefix)
}

// ServiceID generates a fresh service-ticket id.
func (g *IDGenerator) ServiceID() (string, error) {
	return g.generate(ServicePrefix)
}

func (g *IDGenerator) generate(prefix string) (string, error) {
	buf := make([]byte, idRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateFormat checks that an id carries a known prefix and a valid
// base64url payload. It does not check liveness.
func (g *IDGenerator) ValidateFormat(id string) error {
	var payload string
	switch {
	case strings.HasPrefix(id, GrantingPrefix):
		payload = strings.TrimPrefix(id, GrantingPrefix)
	case strings.HasPrefix(id, ServicePrefix):
		payload = strings.TrimPrefix(id, ServicePrefix)
	default:
		return fmt.Errorf("id must start with %q or %q", GrantingPrefix, ServicePrefix)
	}
	if payload == "" {
		return fmt.Errorf("id is too short")
	}
	if _, err := base64.RawURLEncoding.DecodeString(payload); err != nil {
		return fmt.Errorf("invalid id encoding: %w", err)
	}
	return nil
}
