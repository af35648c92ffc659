package services

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fernwood-labs/gatehouse/pkg/httputil"
)

// Handlers exposes service-registry CRUD over HTTP.
type Handlers struct {
	manager *Manager
}

// NewHandlers creates registry handlers on a manager.
func NewHandlers(manager *Manager) *Handlers {
	return &Handlers{manager: manager}
}

// RegisterRoutes registers the registry routes.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/services", h.listServices).Methods("GET")
	router.HandleFunc("/v1/services", h.createService).Methods("POST")
	router.HandleFunc("/v1/services/{id}", h.getService).Methods("GET")
	router.HandleFunc("/v1/services/{id}", h.updateService).Methods("PUT")
	router.HandleFunc("/v1/services/{id}", h.deleteService).Methods("DELETE")
}

// listServices handles GET /v1/services
func (h *Handlers) listServices(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.manager.ListAll())
}

// createService handles POST /v1/services
func (h *Handlers) createService(w http.ResponseWriter, r *http.Request) {
	var svc RegisteredService
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if svc.MatchPattern == "" {
		httputil.WriteValidationError(w, "match_pattern is required")
		return
	}
	svc.ID = 0

	saved, err := h.manager.Save(svc)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, saved)
}

// getService handles GET /v1/services/{id}
func (h *Handlers) getService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}
	svc, err := h.manager.FindByID(id)
	if err != nil {
		httputil.WriteNotFoundError(w, "service not found")
		return
	}
	httputil.WriteSuccess(w, svc)
}

// updateService handles PUT /v1/services/{id}
func (h *Handlers) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}

	var svc RegisteredService
	if err := httputil.DecodeJSON(r, &svc); err != nil {
		httputil.WriteValidationError(w, err.Error())
		return
	}
	if svc.MatchPattern == "" {
		httputil.WriteValidationError(w, "match_pattern is required")
		return
	}
	svc.ID = id

	saved, err := h.manager.Save(svc)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			httputil.WriteNotFoundError(w, "service not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, saved)
}

// deleteService handles DELETE /v1/services/{id}
func (h *Handlers) deleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.serviceID(w, r)
	if !ok {
		return
	}
	if _, err := h.manager.Delete(id); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			httputil.WriteNotFoundError(w, "service not found")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handlers) serviceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httputil.WriteValidationError(w, "invalid service id")
		return 0, false
	}
	return id, true
}
