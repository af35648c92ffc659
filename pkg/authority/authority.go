package authority

import (
	"context"
	"errors"
	"fmt"

	"github.com/fernwood-labs/gatehouse/pkg/authn"
	"github.com/fernwood-labs/gatehouse/pkg/observability"
	"github.com/fernwood-labs/gatehouse/pkg/services"
	"github.com/fernwood-labs/gatehouse/pkg/ticket"
)

// Config wires the authority's collaborators and ticket policies.
type Config struct {
	Tickets    *ticket.Registry
	Services   *services.Manager
	Validator  authn.CredentialValidator
	Classifier *authn.Classifier
	Logger     *observability.Logger
	Metrics    *observability.Metrics

	// GrantingPolicy is attached to every issued TGT
	GrantingPolicy ticket.ExpirationPolicy
	// ServicePolicy is attached to every issued ST
	ServicePolicy ticket.ExpirationPolicy
}

// Authority orchestrates credential validation, service authorization, and
// ticket issuance.
type Authority struct {
	tickets    *ticket.Registry
	services   *services.Manager
	validator  authn.CredentialValidator
	classifier *authn.Classifier
	logger     *observability.Logger
	metrics    *observability.Metrics

	grantingPolicy ticket.ExpirationPolicy
	servicePolicy  ticket.ExpirationPolicy
}

// New creates an authority. Classifier, Logger, and Metrics may be nil;
// defaults are applied.
func New(cfg Config) *Authority {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = authn.NewClassifier()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	return &Authority{
		tickets:        cfg.Tickets,
		services:       cfg.Services,
		validator:      cfg.Validator,
		classifier:     classifier,
		logger:         logger.WithField("component", "authority"),
		metrics:        metrics,
		grantingPolicy: cfg.GrantingPolicy,
		servicePolicy:  cfg.ServicePolicy,
	}
}

// LoginRequest is one login attempt: candidate credentials plus an optional
// target service URL.
type LoginRequest struct {
	Credentials []authn.Credential
	Service     string
	ClientIP    string
}

// LoginResult is a granted session: the new TGT id, the principal it
// carries, and, when the request named a target service, a first service
// ticket for it.
type LoginResult struct {
	TicketGrantingTicket string          `json:"ticket_granting_ticket"`
	ServiceTicket        string          `json:"service_ticket,omitempty"`
	Principal            authn.Principal `json:"principal"`
}

// Login validates the request's credentials and issues a granting ticket.
// When every credential fails, the returned error is a *RejectionError
// carrying the classified outcome. When a target service is named and the
// registry denies it, the error wraps ErrServiceUnauthorized.
func (a *Authority) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := a.logger.FromContext(ctx).WithField("client_ip", req.ClientIP)

	if len(req.Credentials) == 0 {
		a.metrics.RecordLogin("rejected")
		return nil, ErrNoCredentials
	}

	var principal authn.Principal
	authenticated := false
	failures := make(map[string]*authn.ValidationFailure)

	for i, cred := range req.Credentials {
		p, err := a.validator.Validate(ctx, cred)
		if err == nil {
			principal = p
			authenticated = true
			break
		}
		var vf *authn.ValidationFailure
		if !errors.As(err, &vf) {
			vf = &authn.ValidationFailure{Kind: authn.FailureOther, Message: err.Error()}
		}
		failures[fmt.Sprintf("credential[%d]", i)] = vf
	}

	if !authenticated {
		outcome := a.classifier.Classify(failures)
		a.metrics.RecordLogin(string(outcome))
		log.WithField("outcome", string(outcome)).Warn("login rejected")
		return nil, &RejectionError{Outcome: outcome, Failures: failures}
	}

	if req.Service != "" {
		if _, err := a.authorizeService(req.Service); err != nil {
			a.metrics.RecordLogin("denied")
			log.WithError(err).WithField("service", req.Service).Warn("service denied at login")
			return nil, err
		}
	}

	tgtID, err := a.tickets.IssueGrantingTicket(principal, a.grantingPolicy)
	if err != nil {
		a.metrics.RecordLogin("error")
		return nil, fmt.Errorf("failed to issue granting ticket: %w", err)
	}
	a.metrics.RecordTicketIssued(string(ticket.KindGranting))

	result := &LoginResult{TicketGrantingTicket: tgtID, Principal: principal}

	if req.Service != "" {
		stID, err := a.tickets.GrantServiceTicket(tgtID, req.Service, a.servicePolicy)
		if err != nil {
			return nil, fmt.Errorf("failed to issue service ticket: %w", err)
		}
		a.metrics.RecordTicketIssued(string(ticket.KindService))
		result.ServiceTicket = stID
	}

	a.metrics.RecordLogin("granted")
	log.WithFields(map[string]interface{}{
		"principal": principal.ID,
		"service":   req.Service,
	}).Info("login granted")
	return result, nil
}

// GrantService issues a service ticket from an existing granting ticket
// after the registry authorizes the target service.
func (a *Authority) GrantService(ctx context.Context, tgtID, serviceURL string) (string, error) {
	if _, err := a.authorizeService(serviceURL); err != nil {
		return "", err
	}
	stID, err := a.tickets.GrantServiceTicket(tgtID, serviceURL, a.servicePolicy)
	if err != nil {
		return "", err
	}
	a.metrics.RecordTicketIssued(string(ticket.KindService))
	a.logger.FromContext(ctx).WithFields(map[string]interface{}{
		"granting_ticket": tgtID,
		"service":         serviceURL,
	}).Debug("service ticket granted")
	return stID, nil
}

// GrantProxy issues a child granting ticket for proxying, provided the
// matched service definition allows it.
func (a *Authority) GrantProxy(ctx context.Context, tgtID, serviceURL string) (string, error) {
	svc, err := a.authorizeService(serviceURL)
	if err != nil {
		return "", err
	}
	if !svc.AllowedToProxy {
		return "", ErrProxyNotAllowed
	}
	proxyID, err := a.tickets.GrantProxyTicket(tgtID, a.grantingPolicy)
	if err != nil {
		return "", err
	}
	a.metrics.RecordTicketIssued(string(ticket.KindGranting))
	a.logger.FromContext(ctx).WithFields(map[string]interface{}{
		"granting_ticket": tgtID,
		"service":         serviceURL,
	}).Debug("proxy granting ticket issued")
	return proxyID, nil
}

// Renew refreshes a granting ticket's last-used timestamp, keeping sliding
// expiration policies alive without issuing anything.
func (a *Authority) Renew(ctx context.Context, tgtID string) error {
	if err := a.tickets.RenewGrantingTicket(tgtID); err != nil {
		return err
	}
	a.logger.FromContext(ctx).WithField("granting_ticket", tgtID).Debug("granting ticket renewed")
	return nil
}

// Validate consumes a service ticket and returns the principal carried by
// its root granting ticket. The store consumes first, then the registry
// re-checks the service, so a burned ticket is never replayable even after
// an authorization failure.
func (a *Authority) Validate(ctx context.Context, stID, serviceURL string) (authn.Principal, error) {
	principal, err := a.tickets.ValidateServiceTicket(stID, serviceURL)
	if err != nil {
		a.metrics.RecordValidation(validationStatus(err))
		return authn.Principal{}, err
	}

	if _, err := a.authorizeService(serviceURL); err != nil {
		a.metrics.RecordValidation("denied")
		return authn.Principal{}, err
	}

	a.metrics.RecordValidation("success")
	a.logger.FromContext(ctx).WithFields(map[string]interface{}{
		"service":   serviceURL,
		"principal": principal.ID,
	}).Info("service ticket validated")
	return principal, nil
}

// Logout invalidates a granting ticket and every ticket issued from it.
// Idempotent: logging out an unknown or dead ticket is a no-op.
func (a *Authority) Logout(ctx context.Context, tgtID string) {
	a.tickets.Invalidate(tgtID)
	a.metrics.TicketsInvalidatedTotal.Inc()
	a.logger.FromContext(ctx).WithField("granting_ticket", tgtID).Info("session terminated")
}

// authorizeService resolves serviceURL against the registry and enforces the
// enabled and SSO flags.
func (a *Authority) authorizeService(serviceURL string) (services.RegisteredService, error) {
	svc, err := a.services.FindMatching(serviceURL)
	if err != nil {
		return services.RegisteredService{}, fmt.Errorf("%w: %s", ErrServiceUnauthorized, serviceURL)
	}
	if !svc.Enabled || !svc.SSOEnabled {
		return services.RegisteredService{}, fmt.Errorf("%w: %s", ErrServiceUnauthorized, serviceURL)
	}
	return svc, nil
}

func validationStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ticket.ErrTicketConsumed):
		return "consumed"
	case errors.Is(err, ticket.ErrTicketExpired):
		return "expired"
	case errors.Is(err, ticket.ErrServiceMismatch):
		return "mismatch"
	default:
		return "not_found"
	}
}
