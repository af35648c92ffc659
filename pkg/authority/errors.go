package authority

import (
	"errors"
	"fmt"

	"github.com/fernwood-labs/gatehouse/pkg/authn"
)

var (
	// ErrNoCredentials is returned when a login request carries no credentials
	ErrNoCredentials = errors.New("no credentials supplied")

	// ErrServiceUnauthorized is returned when the target service is unknown,
	// disabled, or not enabled for single sign-on
	ErrServiceUnauthorized = errors.New("service not authorized for single sign-on")

	// ErrProxyNotAllowed is returned when a proxy ticket is requested for a
	// service whose definition forbids proxying
	ErrProxyNotAllowed = errors.New("service not allowed to proxy")
)

// RejectionError reports a login rejected because every submitted credential
// failed validation. It carries the classifier's symbolic outcome and the
// raw per-credential failures for diagnostics.
type RejectionError struct {
	Outcome  authn.Outcome
	Failures map[string]*authn.ValidationFailure
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("login rejected: %s (%d credential failures)", e.Outcome, len(e.Failures))
}
