package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	smsapp "github.com/vbs-0/bomber/internal/sms/app"
	smsrepo "github.com/vbs-0/bomber/internal/sms/repository"
)

// MessageHandler covers the user-facing send, bomber and credit-request
// routes.
type MessageHandler struct {
	dispatch Dispatcher
	credit   CreditService
	messages smsrepo.MessageRepository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewMessageHandler(dispatch Dispatcher, credit CreditService, messages smsrepo.MessageRepository, validate *validator.Validate, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		dispatch: dispatch,
		credit:   credit,
		messages: messages,
		validate: validate,
		logger:   logger.With("handler", "message"),
	}
}

func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/send-message", h.handleSendMessage)
	r.Get("/messages", h.handleListMessages)
	r.Post("/bomber", h.handleBomber)
	r.Post("/request-credits", h.handleRequestCredits)
}

func (h *MessageHandler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendMessageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	msg, err := h.dispatch.SendSingle(r.Context(), user, req.Phone, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, smsapp.ErrAccountSuspended):
			respondError(w, http.StatusForbidden, "Your account has been suspended")
		case errors.Is(err, smsapp.ErrNoCredit):
			respondError(w, http.StatusForbidden, "You don't have any credits left")
		case errors.Is(err, smsapp.ErrGatewayFailure):
			respondError(w, http.StatusInternalServerError, "Failed to send message")
		default:
			h.logger.ErrorContext(r.Context(), "Single send failed", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "Failed to send message")
		}
		return
	}

	respondJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	msgs, err := h.messages.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list messages", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) handleBomber(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BomberRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.dispatch.SendBomber(r.Context(), user, req.Phone, req.Repeat); err != nil {
		switch {
		case errors.Is(err, smsapp.ErrInsufficientCredit):
			respondError(w, http.StatusBadRequest, "You don't have enough credits")
		case errors.Is(err, smsapp.ErrAccountSuspended):
			respondError(w, http.StatusForbidden, "Your account has been suspended")
		case errors.Is(err, smsapp.ErrNumberProtected):
			respondError(w, http.StatusForbidden, "This number is protected")
		case errors.Is(err, smsapp.ErrGatewayFailure):
			respondError(w, http.StatusInternalServerError, "Failed to send messages")
		default:
			h.logger.ErrorContext(r.Context(), "Bomber send failed", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "Failed to send messages")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Bomber messages sent successfully")
}

func (h *MessageHandler) handleRequestCredits(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req RequestCreditsRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.credit.Request(r.Context(), user.ID, user.Phone, req.Credits, req.Reason)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Credit request failed", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to submit credit request")
		return
	}

	respondJSON(w, http.StatusOK, created)
}
