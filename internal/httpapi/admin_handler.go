package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	creditapp "github.com/vbs-0/bomber/internal/credit/app"
	protectiondomain "github.com/vbs-0/bomber/internal/protection/domain"
	smsapp "github.com/vbs-0/bomber/internal/sms/app"
	smsrepo "github.com/vbs-0/bomber/internal/sms/repository"
	userrepo "github.com/vbs-0/bomber/internal/user/repository"
)

// AdminHandler covers the administrator routes. Admin sends are unmetered;
// protected numbers are still enforced on bomber sends.
type AdminHandler struct {
	dispatch   Dispatcher
	credit     CreditService
	protection ProtectionService
	users      userrepo.UserRepository
	messages   smsrepo.MessageRepository
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewAdminHandler(
	dispatch Dispatcher,
	credit CreditService,
	protection ProtectionService,
	users userrepo.UserRepository,
	messages smsrepo.MessageRepository,
	validate *validator.Validate,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		dispatch:   dispatch,
		credit:     credit,
		protection: protection,
		users:      users,
		messages:   messages,
		validate:   validate,
		logger:     logger.With("handler", "admin"),
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/custom-message", h.handleCustomMessage)
	r.Post("/bomber", h.handleBomber)

	r.Get("/users", h.handleListUsers)
	r.Get("/dashboard-stats", h.handleDashboardStats)
	r.Get("/messages", h.handleListMessages)
	r.Get("/credit-requests", h.handleListCreditRequests)
	r.Get("/protected-numbers", h.handleListProtectedNumbers)

	r.Post("/add-credits", h.handleAddCredits)
	r.Post("/remove-credits", h.handleRemoveCredits)
	r.Post("/toggle-user", h.handleToggleUser)
	r.Post("/protect-number", h.handleProtectNumber)
	r.Post("/unprotect-number", h.handleUnprotectNumber)
	r.Post("/approve-credit-request", h.handleApproveCreditRequest)
	r.Post("/reject-credit-request", h.handleRejectCreditRequest)
	r.Post("/delete-message", h.handleDeleteMessage)
	r.Post("/delete-messages", h.handleDeleteMessages)
}

func (h *AdminHandler) handleCustomMessage(w http.ResponseWriter, r *http.Request) {
	admin, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendMessageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.dispatch.AdminCustom(r.Context(), admin, req.Phone, req.Message); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	respondMessage(w, http.StatusOK, "Message sent successfully")
}

func (h *AdminHandler) handleBomber(w http.ResponseWriter, r *http.Request) {
	admin, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BomberRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	summary, err := h.dispatch.AdminBomber(r.Context(), admin, req.Phone, req.Repeat, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, smsapp.ErrNumberProtected):
			respondError(w, http.StatusForbidden, "This number is protected")
		case errors.Is(err, smsapp.ErrGatewayFailure):
			respondError(w, http.StatusInternalServerError, "Failed to send messages")
		default:
			h.logger.ErrorContext(r.Context(), "Admin bomber failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to send messages")
		}
		return
	}
	respondMessage(w, http.StatusOK, summary)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list users", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.users.Count(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	messagesSent, err := h.messages.CountSent(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	pendingRequests, err := h.credit.CountPending(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	protectedNumbers, err := h.protection.Count(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"totalUsers":            totalUsers,
		"messagesSent":          messagesSent,
		"pendingCreditRequests": pendingRequests,
		"protectedNumbers":      protectedNumbers,
	})
}

func (h *AdminHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *AdminHandler) handleListCreditRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.credit.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load credit requests")
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

func (h *AdminHandler) handleListProtectedNumbers(w http.ResponseWriter, r *http.Request) {
	entries, err := h.protection.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load protected numbers")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) handleAddCredits(w http.ResponseWriter, r *http.Request) {
	var req AdminCreditsRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.credit.Add(r.Context(), req.UserID, req.Credits); err != nil {
		if errors.Is(err, creditapp.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to add credits")
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("Added %d credits", req.Credits))
}

func (h *AdminHandler) handleRemoveCredits(w http.ResponseWriter, r *http.Request) {
	var req AdminCreditsRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.credit.Remove(r.Context(), req.UserID, req.Credits); err != nil {
		if errors.Is(err, creditapp.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to remove credits")
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("Removed %d credits", req.Credits))
}

func (h *AdminHandler) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	var req ToggleUserRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, err := h.users.GetByID(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to toggle user")
		return
	}

	if err := h.users.SetActive(r.Context(), user.ID, !user.IsActive); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to toggle user")
		return
	}

	state := "activated"
	if user.IsActive {
		state = "suspended"
	}
	respondMessage(w, http.StatusOK, "User "+state)
}

func (h *AdminHandler) handleProtectNumber(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.protection.ProtectByAdmin(r.Context(), req.Phone); err != nil {
		if errors.Is(err, protectiondomain.ErrAlreadyProtected) {
			respondError(w, http.StatusBadRequest, "Number is already protected")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to protect number")
		return
	}
	respondMessage(w, http.StatusOK, "Number protected")
}

func (h *AdminHandler) handleUnprotectNumber(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.protection.Unprotect(r.Context(), req.Phone); err != nil {
		if errors.Is(err, protectiondomain.ErrNotProtected) {
			respondError(w, http.StatusBadRequest, "Number is not protected")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to unprotect number")
		return
	}
	respondMessage(w, http.StatusOK, "Number unprotected")
}

func (h *AdminHandler) handleApproveCreditRequest(w http.ResponseWriter, r *http.Request) {
	var req CreditRequestDecision
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.credit.Approve(r.Context(), req.RequestID); err != nil {
		switch {
		case errors.Is(err, creditapp.ErrRequestNotFound):
			respondError(w, http.StatusNotFound, "Credit request not found")
		case errors.Is(err, creditapp.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to approve credit request")
		}
		return
	}
	respondMessage(w, http.StatusOK, "Credit request approved")
}

func (h *AdminHandler) handleRejectCreditRequest(w http.ResponseWriter, r *http.Request) {
	var req CreditRequestDecision
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.credit.Reject(r.Context(), req.RequestID); err != nil {
		if errors.Is(err, creditapp.ErrRequestNotFound) {
			respondError(w, http.StatusNotFound, "Credit request not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to reject credit request")
		return
	}
	respondMessage(w, http.StatusOK, "Credit request rejected")
}

func (h *AdminHandler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	var req DeleteMessageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.messages.Delete(r.Context(), req.MessageID); err != nil {
		if errors.Is(err, smsrepo.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Message not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	respondMessage(w, http.StatusOK, "Message deleted")
}

func (h *AdminHandler) handleDeleteMessages(w http.ResponseWriter, r *http.Request) {
	var req DeleteMessagesRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	deleted, err := h.messages.DeleteMany(r.Context(), req.MessageIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete messages")
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("Deleted %d messages", deleted))
}
