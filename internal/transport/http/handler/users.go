package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-api-checkin/internal/application/session"
	"github.com/go-api-checkin/internal/application/user"
	"github.com/go-api-checkin/internal/application/verification"
	"github.com/go-api-checkin/internal/domain"
	"github.com/go-api-checkin/internal/pkg/validate"
	"github.com/go-api-checkin/internal/transport/http/middleware"
)

// UserHandler handles the login flow and user lookups.
type UserHandler struct {
	codes    verification.Service
	sessions session.Service
	users    user.Service
}

func NewUserHandler(codes verification.Service, sessions session.Service, users user.Service) *UserHandler {
	return &UserHandler{codes: codes, sessions: sessions, users: users}
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Phone string `json:"phone" validate:"max=32"`
	Code  string `json:"code" validate:"max=32"`
}

type userIDParam struct {
	ID string `validate:"required,ulid"`
}

func (h *UserHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	if err := h.codes.Issue(r.Context(), r.URL.Query().Get("phone")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.sessions.Login(r.Context(), req.Phone, req.Code)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOK(w, TokenEnvelope{Token: token})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), token); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeOK(w, u)
}

// Get returns the public view of a user. An unknown id is a success with
// no data.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := userIDParam{ID: chi.URLParam(r, "id")}
	if err := validate.Struct(p); err != nil {
		writeDomainError(w, r, fmt.Errorf("user id: %s: %w", err, domain.ErrBadRequest))
		return
	}
	u, err := h.users.Get(r.Context(), p.ID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if u == nil {
		writeOK(w, nil)
		return
	}
	writeOK(w, u)
}
