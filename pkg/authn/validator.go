package authn

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"sync"
)

// StaticValidator is an in-memory CredentialValidator backed by a fixed user
// table. Passwords are stored as SHA-256 digests, never in plaintext. It is
// intended for bootstrap deployments and tests; production installations
// plug in their own validator.
type StaticValidator struct {
	mu    sync.RWMutex
	users map[string]staticUser
}

type staticUser struct {
	passwordHash string
	locked       bool
	attributes   map[string]string
}

// NewStaticValidator creates an empty static validator.
func NewStaticValidator() *StaticValidator {
	return &StaticValidator{users: make(map[string]staticUser)}
}

// AddUser registers a user. A user added twice keeps the latest password and
// attributes.
func (v *StaticValidator) AddUser(username, password string, attributes map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	attrs := make(map[string]string, len(attributes))
	for k, val := range attributes {
		attrs[k] = val
	}
	v.users[username] = staticUser{
		passwordHash: hashPassword(password),
		attributes:   attrs,
	}
}

// LockUser marks a user as administratively locked. Locking an unknown user
// is a no-op.
func (v *StaticValidator) LockUser(username string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	u, ok := v.users[username]
	if !ok {
		return
	}
	u.locked = true
	v.users[username] = u
}

// Validate implements CredentialValidator.
func (v *StaticValidator) Validate(_ context.Context, cred Credential) (Principal, error) {
	v.mu.RLock()
	u, ok := v.users[cred.Username]
	v.mu.RUnlock()

	if !ok {
		return Principal{}, &ValidationFailure{Kind: FailureAccountNotFound, Message: "no such account"}
	}
	if u.locked {
		return Principal{}, &ValidationFailure{Kind: FailureAccountLocked, Message: "account is locked"}
	}
	if subtle.ConstantTimeCompare([]byte(u.passwordHash), []byte(hashPassword(cred.Password))) != 1 {
		return Principal{}, &ValidationFailure{Kind: FailureBadPassword, Message: "password does not match"}
	}

	attrs := make(map[string]string, len(u.attributes))
	for k, val := range u.attributes {
		attrs[k] = val
	}
	return Principal{ID: cred.Username, Attributes: attrs}, nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
