package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/middleware"
	"github.com/helpmesh/helpmesh/internal/transport"
	"github.com/helpmesh/helpmesh/internal/volunteer"
)

// VolunteerHandler exposes application submission for users and the review
// queue for admins.
type VolunteerHandler struct {
	svc *volunteer.Service
}

func NewVolunteerHandler(svc *volunteer.Service) *VolunteerHandler {
	return &VolunteerHandler{svc: svc}
}

func (h *VolunteerHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var in volunteer.ApplyInput
	if !decode(w, r, &in) {
		return
	}

	app, err := h.svc.Apply(r.Context(), middleware.UserID(r.Context()), in)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusCreated, app)
}

func (h *VolunteerHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.MyApplications(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, apps)
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if middleware.Role(r.Context()) != domain.RoleAdmin {
		transport.DomainError(w, domain.ErrForbidden)
		return false
	}
	return true
}

// List returns applications with applicant identity. Admin only; an optional
// status query filters the queue.
func (h *VolunteerHandler) List(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	apps, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, apps)
}

func (h *VolunteerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	app, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "applicationId"))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, app)
}

func (h *VolunteerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	app, err := h.svc.Approve(r.Context(), chi.URLParam(r, "applicationId"))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, app)
}

func (h *VolunteerHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	app, err := h.svc.Reject(r.Context(), chi.URLParam(r, "applicationId"))
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, app)
}
