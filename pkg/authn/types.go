package authn

import (
	"context"
	"fmt"
)

// Credential is a single username/password pair submitted during login.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Principal is the authenticated identity carried by tickets after a
// successful login.
type Principal struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Clone returns a copy of the principal with its own attribute map so that
// callers cannot mutate shared state through a returned handle.
func (p Principal) Clone() Principal {
	out := Principal{ID: p.ID}
	if p.Attributes != nil {
		out.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// FailureKind tags the underlying cause of a credential-validation failure.
type FailureKind string

const (
	// FailureAccountNotFound indicates no account exists for the username.
	FailureAccountNotFound FailureKind = "AccountNotFound"
	// FailureBadPassword indicates the account exists but the password is wrong.
	FailureBadPassword FailureKind = "BadPassword"
	// FailureAccountLocked indicates the account is administratively locked.
	FailureAccountLocked FailureKind = "AccountLocked"
	// FailureOther covers causes the validator cannot attribute more precisely.
	FailureOther FailureKind = "Other"
)

// ValidationFailure is the typed error a CredentialValidator returns when a
// credential is rejected.
type ValidationFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message,omitempty"`
}

// Error implements the error interface.
func (f *ValidationFailure) Error() string {
	if f.Message == "" {
		return fmt.Sprintf("credential validation failed: %s", f.Kind)
	}
	return fmt.Sprintf("credential validation failed: %s: %s", f.Kind, f.Message)
}

// CredentialValidator verifies one submitted credential. Implementations
// return the authenticated principal, or a *ValidationFailure describing why
// the credential was rejected.
type CredentialValidator interface {
	Validate(ctx context.Context, cred Credential) (Principal, error)
}
