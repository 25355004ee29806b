package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	otpapp "github.com/vbs-0/bomber/internal/otp/app"
	userapp "github.com/vbs-0/bomber/internal/user/app"
)

// AuthHandler covers registration, OTP verification, login and password
// management.
type AuthHandler struct {
	auth     AuthService
	otp      OTPService
	dispatch Dispatcher
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAuthHandler(auth AuthService, otp OTPService, dispatch Dispatcher, validate *validator.Validate, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		otp:      otp,
		dispatch: dispatch,
		validate: validate,
		logger:   logger.With("handler", "auth"),
	}
}

func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/verify-otp", h.handleVerifyOTP)
	r.Post("/complete-registration", h.handleCompleteRegistration)
	r.Post("/login", h.handleLogin)
}

func (h *AuthHandler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
	r.Get("/user", h.handleCurrentUser)
	r.Post("/change-password", h.handleChangePassword)
}

// handleRegister checks for duplicates and delivers an OTP; the account is
// only created by complete-registration after the code is verified.
func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.auth.CheckAvailability(r.Context(), req.Username, req.Phone); err != nil {
		switch {
		case errors.Is(err, userapp.ErrUsernameExists):
			respondError(w, http.StatusBadRequest, "Username already taken")
		case errors.Is(err, userapp.ErrPhoneExists):
			respondError(w, http.StatusBadRequest, "Phone number already registered")
		default:
			respondError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	otp, err := h.otp.Issue(r.Context(), req.Phone)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue OTP", "error", err)
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	if err := h.dispatch.DeliverOTP(r.Context(), req.Phone, otp.Code); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to send verification code")
		return
	}

	respondMessage(w, http.StatusOK, "Verification code sent")
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.otp.Verify(r.Context(), req.Phone, req.Code); err != nil {
		switch {
		case errors.Is(err, otpapp.ErrNotFound),
			errors.Is(err, otpapp.ErrExpired),
			errors.Is(err, otpapp.ErrAlreadyVerified),
			errors.Is(err, otpapp.ErrCodeMismatch):
			respondError(w, http.StatusBadRequest, capitalize(err.Error()))
		default:
			respondError(w, http.StatusInternalServerError, "Verification failed")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Phone number verified")
}

func (h *AuthHandler) handleCompleteRegistration(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.otp.RequireVerified(r.Context(), req.Phone); err != nil {
		if errors.Is(err, otpapp.ErrNotVerified) {
			respondError(w, http.StatusBadRequest, "Phone number not verified")
			return
		}
		respondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user, err := h.auth.CreateAccount(r.Context(), userapp.NewAccount{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrUsernameExists):
			respondError(w, http.StatusBadRequest, "Username already taken")
		case errors.Is(err, userapp.ErrPhoneExists):
			respondError(w, http.StatusBadRequest, "Phone number already registered")
		default:
			h.logger.ErrorContext(r.Context(), "Account creation failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrAccountDisabled):
			respondError(w, http.StatusUnauthorized, "Your account has been suspended")
		case errors.Is(err, userapp.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			respondError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	token, expiresAt, err := h.auth.CreateSession(user)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to create session", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, userapp.ErrWrongPassword) {
			respondError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	respondMessage(w, http.StatusOK, "Password changed successfully")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
