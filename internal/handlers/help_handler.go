package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/help"
	"github.com/helpmesh/helpmesh/internal/transport"
)

// HelpHandler exposes the help board.
type HelpHandler struct {
	svc *help.Service
}

func NewHelpHandler(svc *help.Service) *HelpHandler {
	return &HelpHandler{svc: svc}
}

func (h *HelpHandler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		entry, err := h.svc.FindByCategory(category)
		if err != nil {
			transport.DomainError(w, err)
			return
		}
		transport.WriteData(w, http.StatusOK, entry)
		return
	}
	transport.WriteData(w, http.StatusOK, h.svc.List())
}

func (h *HelpHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in help.Input
	if !decode(w, r, &in) {
		return
	}
	transport.WriteData(w, http.StatusCreated, h.svc.Add(in))
}

func helpID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		transport.DomainError(w, domain.ErrHelpNotFound)
		return 0, false
	}
	return id, true
}

func (h *HelpHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpID(w, r)
	if !ok {
		return
	}

	var in help.Input
	if !decode(w, r, &in) {
		return
	}

	entry, err := h.svc.Update(id, in)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, entry)
}

func (h *HelpHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := helpID(w, r)
	if !ok {
		return
	}

	var in help.PatchInput
	if !decode(w, r, &in) {
		return
	}

	entry, err := h.svc.Patch(id, in)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, entry)
}
