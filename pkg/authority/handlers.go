package authority

import (
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fernwood-labs/gatehouse/pkg/authn"
	"github.com/fernwood-labs/gatehouse/pkg/httputil"
	"github.com/fernwood-labs/gatehouse/pkg/ticket"
)

// Handlers exposes the authority over HTTP: ticket creation, service-ticket
// issuance, validation, renewal, and logout.
type Handlers struct {
	authority *Authority
	idgen     *ticket.IDGenerator
}

// NewHandlers creates authority handlers.
func NewHandlers(authority *Authority) *Handlers {
	return &Handlers{authority: authority, idgen: ticket.NewIDGenerator()}
}

// RegisterRoutes registers the ticket routes.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/tickets", h.login).Methods("POST")
	router.HandleFunc("/v1/tickets/{tgt}", h.grantServiceTicket).Methods("POST")
	router.HandleFunc("/v1/tickets/{tgt}", h.logout).Methods("DELETE")
	router.HandleFunc("/v1/tickets/{tgt}/proxy", h.grantProxyTicket).Methods("POST")
	router.HandleFunc("/v1/tickets/{tgt}/renew", h.renew).Methods("POST")
	router.HandleFunc("/v1/validate", h.validate).Methods("POST")
}

// loginPayload is the POST /v1/tickets request body. A bare username and
// password is shorthand for a single-credential login.
type loginPayload struct {
	Username    string             `json:"username,omitempty"`
	Password    string             `json:"password,omitempty"`
	Credentials []authn.Credential `json:"credentials,omitempty"`
	Service     string             `json:"service,omitempty"`
}

// rejectionBody is the response body for a classified login rejection.
type rejectionBody struct {
	Error    string                              `json:"error"`
	Outcome  authn.Outcome                       `json:"outcome"`
	Failures map[string]*authn.ValidationFailure `json:"failures"`
}

// login handles POST /v1/tickets
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}

	creds := payload.Credentials
	if payload.Username != "" {
		creds = append(creds, authn.Credential{Username: payload.Username, Password: payload.Password})
	}

	result, err := h.authority.Login(r.Context(), LoginRequest{
		Credentials: creds,
		Service:     payload.Service,
		ClientIP:    clientIP(r),
	})
	if err != nil {
		var rejection *RejectionError
		switch {
		case errors.As(err, &rejection):
			httputil.WriteJSON(w, http.StatusUnauthorized, rejectionBody{
				Error:    "authentication failed",
				Outcome:  rejection.Outcome,
				Failures: rejection.Failures,
			})
		case errors.Is(err, ErrServiceUnauthorized):
			httputil.WriteErrorMessage(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrNoCredentials):
			httputil.WriteValidationError(w, err.Error())
		default:
			httputil.WriteInternalError(w, err)
		}
		return
	}

	w.Header().Set("Location", "/v1/tickets/"+result.TicketGrantingTicket)
	httputil.WriteCreated(w, result)
}

// grantBody is the request body for service/proxy ticket issuance.
type grantBody struct {
	Service string `json:"service"`
}

// grantServiceTicket handles POST /v1/tickets/{tgt}
func (h *Handlers) grantServiceTicket(w http.ResponseWriter, r *http.Request) {
	var body grantBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if body.Service == "" {
		httputil.WriteValidationError(w, "service is required")
		return
	}

	tgtID, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	stID, err := h.authority.GrantService(r.Context(), tgtID, body.Service)
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	httputil.WriteCreated(w, map[string]string{"service_ticket": stID})
}

// grantProxyTicket handles POST /v1/tickets/{tgt}/proxy
func (h *Handlers) grantProxyTicket(w http.ResponseWriter, r *http.Request) {
	var body grantBody
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if body.Service == "" {
		httputil.WriteValidationError(w, "service is required")
		return
	}

	tgtID, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	proxyID, err := h.authority.GrantProxy(r.Context(), tgtID, body.Service)
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	httputil.WriteCreated(w, map[string]string{"proxy_granting_ticket": proxyID})
}

// renew handles POST /v1/tickets/{tgt}/renew
func (h *Handlers) renew(w http.ResponseWriter, r *http.Request) {
	tgtID, ok := h.ticketID(w, r)
	if !ok {
		return
	}
	if err := h.authority.Renew(r.Context(), tgtID); err != nil {
		h.writeTicketError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// validatePayload is the POST /v1/validate request body.
type validatePayload struct {
	ServiceTicket string `json:"service_ticket"`
	Service       string `json:"service"`
}

// validate handles POST /v1/validate
func (h *Handlers) validate(w http.ResponseWriter, r *http.Request) {
	var payload validatePayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if payload.ServiceTicket == "" || payload.Service == "" {
		httputil.WriteValidationError(w, "service_ticket and service are required")
		return
	}
	if err := h.idgen.ValidateFormat(payload.ServiceTicket); err != nil {
		httputil.WriteValidationError(w, "invalid ticket id")
		return
	}

	principal, err := h.authority.Validate(r.Context(), payload.ServiceTicket, payload.Service)
	if err != nil {
		h.writeTicketError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"principal": principal})
}

// logout handles DELETE /v1/tickets/{tgt}
func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	tgtID, ok := h.ticketID(w, r)
	if !ok {
		return
	}
	h.authority.Logout(r.Context(), tgtID)
	httputil.WriteNoContent(w)
}

// ticketID extracts the {tgt} path parameter and rejects malformed ids
// before they reach the store.
func (h *Handlers) ticketID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["tgt"]
	if err := h.idgen.ValidateFormat(id); err != nil {
		httputil.WriteValidationError(w, "invalid ticket id")
		return "", false
	}
	return id, true
}

// writeTicketError maps ticket and authorization failures onto HTTP codes.
func (h *Handlers) writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ticket.ErrTicketNotFound):
		httputil.WriteNotFoundError(w, "ticket not found")
	case errors.Is(err, ticket.ErrTicketExpired):
		httputil.WriteErrorMessage(w, http.StatusGone, "ticket expired")
	case errors.Is(err, ticket.ErrTicketConsumed):
		httputil.WriteErrorMessage(w, http.StatusConflict, "service ticket already consumed")
	case errors.Is(err, ticket.ErrServiceMismatch):
		httputil.WriteValidationError(w, "service does not match ticket")
	case errors.Is(err, ticket.ErrNotGrantingTicket):
		httputil.WriteValidationError(w, "not a granting ticket")
	case errors.Is(err, ErrServiceUnauthorized), errors.Is(err, ErrProxyNotAllowed):
		httputil.WriteErrorMessage(w, http.StatusForbidden, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
