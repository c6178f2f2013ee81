package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/helpmesh/helpmesh/internal/auth"
	"github.com/helpmesh/helpmesh/internal/domain"
	"github.com/helpmesh/helpmesh/internal/middleware"
	"github.com/helpmesh/helpmesh/internal/transport"
)

// AuthHandler exposes signup, login and account endpoints.
type AuthHandler struct {
	svc      *auth.Service
	validate *validator.Validate
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc, validate: validator.New()}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type googleLoginRequest struct {
	IDToken  string `json:"idToken" validate:"required"`
	Username string `json:"username"`
}

type updatePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", "invalid JSON body")
		return false
	}
	return true
}

func (h *AuthHandler) valid(w http.ResponseWriter, v interface{}) bool {
	if err := h.validate.Struct(v); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return false
	}
	return true
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) || !h.valid(w, &req) {
		return
	}

	res, err := h.svc.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) || !h.valid(w, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, res)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !decode(w, r, &req) || !h.valid(w, &req) {
		return
	}

	res, err := h.svc.LoginWithGoogle(r.Context(), req.IDToken, req.Username)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, res)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !decode(w, r, &req) || !h.valid(w, &req) {
		return
	}

	if err := h.svc.UpdatePassword(r.Context(), req.Email, req.NewPassword); err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, map[string]string{"message": "password updated"})
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// UpdateLocation stores the caller's last known coordinates.
func (h *AuthHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req updateLocationRequest
	if !decode(w, r, &req) || !h.valid(w, &req) {
		return
	}

	userID := middleware.UserID(r.Context())
	loc := domain.Location{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := h.svc.UpdateLocationByID(r.Context(), userID, loc); err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, map[string]string{"message": "location updated"})
}

// ListUsers returns every account. Admin only.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if middleware.Role(r.Context()) != domain.RoleAdmin {
		transport.DomainError(w, domain.ErrForbidden)
		return
	}

	users, err := h.svc.FindAll(r.Context())
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, users)
}

// ListByRole returns accounts with the role given in the query string,
// defaulting to volunteers.
func (h *AuthHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		role = domain.RoleVolunteer
	}

	users, err := h.svc.FindByRole(r.Context(), role)
	if err != nil {
		transport.DomainError(w, err)
		return
	}
	transport.WriteData(w, http.StatusOK, users)
}
