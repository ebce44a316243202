package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/halcyonlabs/identity-service/internal/httputil"
	"github.com/halcyonlabs/identity-service/internal/logging"
)

// Handler exposes the credential service over HTTP. It owns request
// decoding and validation, error-to-status mapping, and forwarding
// notification records to the mail publisher; the service itself consumes
// already-validated input.
type Handler struct {
	service   *Service
	publisher Publisher
	logger    *logging.Logger
}

func NewHandler(service *Service, publisher Publisher, logger *logging.Logger) *Handler {
	return &Handler{
		service:   service,
		publisher: publisher,
		logger:    logger,
	}
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles account registration
// @Summary      Register a new account
// @Description  Create an account with email and password. A verification email is dispatched out of band.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration fields"
// @Success      201 {object} AuthTokens
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if !h.validateRegister(w, &req) {
		return
	}

	result, err := h.service.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		logger.Error("registration failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	h.publish(result.Notification)

	httputil.RespondJSON(w, result.Tokens, http.StatusCreated)
}

// Login handles authentication
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthTokens
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      403 {object} httputil.ErrorResponse "Email not verified"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		return
	}

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, ErrEmailNotVerified):
			httputil.RespondErrorWithCode(w, "email not verified, please check your inbox", httputil.CodeEmailNotVerified, http.StatusForbidden)
		default:
			logger.Error("login failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, tokens, http.StatusOK)
}

// Logout clears the caller's refresh token
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), accountID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			httputil.RespondErrorWithCode(w, "account not found", httputil.CodeAccountNotFound, http.StatusNotFound)
			return
		}
		logger.Error("logout failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to log out", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "logged out successfully"}, http.StatusOK)
}

// VerifyEmail consumes a verification token
// @Summary      Verify email address
// @Tags         auth
// @Produce      json
// @Param        token query string true "Verification token"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid or expired token"
// @Router       /auth/verify-email [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.RespondErrorWithCode(w, "token is required", httputil.CodeInvalidToken, http.StatusBadRequest)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			httputil.RespondErrorWithCode(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusBadRequest)
			return
		}
		logger.Error("email verification failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to verify email", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "email successfully verified"}, http.StatusOK)
}

// ForgotPassword requests a password reset. The response is identical
// whether or not the account exists, so it cannot enumerate accounts.
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} MessageResponse
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		httputil.RespondErrorWithCode(w, "email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return
	}

	result, err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			logger.Error("password reset request failed", "error", err.Error())
		}
		// Fall through to the uniform response either way.
	} else {
		h.publish(result.Notification)
	}

	httputil.RespondJSON(w, MessageResponse{Message: "if the account exists, a password reset email has been sent"}, http.StatusOK)
}

// ResetPassword consumes a reset token and sets a new password
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid or expired token"
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		httputil.RespondErrorWithCode(w, "token is required", httputil.CodeInvalidToken, http.StatusBadRequest)
		return
	}
	if req.NewPassword == "" {
		httputil.RespondErrorWithCode(w, "password is required", httputil.CodePasswordRequired, http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		httputil.RespondErrorWithCode(w, "password must be at least 8 characters", httputil.CodePasswordTooShort, http.StatusBadRequest)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			httputil.RespondErrorWithCode(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusBadRequest)
			return
		}
		logger.Error("password reset failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Message: "password reset successfully"}, http.StatusOK)
}

func (h *Handler) validateRegister(w http.ResponseWriter, req *RegisterRequest) bool {
	if req.Email == "" {
		httputil.RespondErrorWithCode(w, "email is required", httputil.CodeEmailRequired, http.StatusBadRequest)
		return false
	}
	if len(req.Email) > 254 {
		httputil.RespondErrorWithCode(w, "invalid email format", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		return false
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httputil.RespondErrorWithCode(w, "invalid email format", httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		return false
	}
	if req.Password == "" {
		httputil.RespondErrorWithCode(w, "password is required", httputil.CodePasswordRequired, http.StatusBadRequest)
		return false
	}
	if len(req.Password) < 8 {
		httputil.RespondErrorWithCode(w, "password must be at least 8 characters", httputil.CodePasswordTooShort, http.StatusBadRequest)
		return false
	}
	if req.FirstName == "" || req.LastName == "" {
		httputil.RespondErrorWithCode(w, "first and last name are required", httputil.CodeNameRequired, http.StatusBadRequest)
		return false
	}
	return true
}

// publish forwards a notification record to the mail side channel without
// blocking the request; delivery is fire-and-forget.
func (h *Handler) publish(n Notification) {
	go func() {
		ctx := context.Background()
		if err := h.publisher.Publish(ctx, n); err != nil {
			h.logger.Warn("failed to publish notification",
				"kind", string(n.Kind),
				"error", err.Error(),
			)
		}
	}()
}
