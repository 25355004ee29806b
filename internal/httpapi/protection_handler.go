package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	protectiondomain "github.com/vbs-0/bomber/internal/protection/domain"
)

// ProtectionHandler covers the self-service protected-number routes; the
// caller's own phone is always the subject.
type ProtectionHandler struct {
	protection ProtectionService
	logger     *slog.Logger
}

func NewProtectionHandler(protection ProtectionService, logger *slog.Logger) *ProtectionHandler {
	return &ProtectionHandler{
		protection: protection,
		logger:     logger.With("handler", "protection"),
	}
}

func (h *ProtectionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/protect-my-number", h.handleProtect)
	r.Post("/unprotect-my-number", h.handleUnprotect)
	r.Get("/my-number-protection-status", h.handleStatus)
}

func (h *ProtectionHandler) handleProtect(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.protection.ProtectOwn(r.Context(), user.ID, user.Phone); err != nil {
		if errors.Is(err, protectiondomain.ErrAlreadyProtected) {
			respondError(w, http.StatusBadRequest, "Your number is already protected")
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to protect number", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to protect number")
		return
	}
	respondMessage(w, http.StatusOK, "Your number is now protected")
}

func (h *ProtectionHandler) handleUnprotect(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.protection.Unprotect(r.Context(), user.Phone); err != nil {
		if errors.Is(err, protectiondomain.ErrNotProtected) {
			respondError(w, http.StatusBadRequest, "Your number is not protected")
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to unprotect number", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to unprotect number")
		return
	}
	respondMessage(w, http.StatusOK, "Your number is no longer protected")
}

func (h *ProtectionHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	protected, err := h.protection.IsProtected(r.Context(), user.Phone)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to check protection status", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to check protection status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"isProtected": protected, "phone": user.Phone})
}
