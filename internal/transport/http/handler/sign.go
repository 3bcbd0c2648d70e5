package handler

import (
	"net/http"
	"time"

	"github.com/go-api-checkin/internal/application/attendance"
	"github.com/go-api-checkin/internal/transport/http/middleware"
)

// SignHandler records and reports daily check-ins for the current user.
type SignHandler struct {
	svc attendance.Service
	now func() time.Time
}

func NewSignHandler(svc attendance.Service) *SignHandler {
	return &SignHandler{svc: svc, now: time.Now}
}

func (h *SignHandler) Sign(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Mark(r.Context(), u.ID, h.now()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (h *SignHandler) Count(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	n, err := h.svc.Streak(r.Context(), u.ID, h.now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeOK(w, StreakEnvelope{Count: n})
}
