package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"regexp"

	"web3events/internal/delivery/http/helpers"
	"web3events/internal/domain"
)

// loginCodeRegex matches the six digit one-time login code.
var loginCodeRegex = regexp.MustCompile(`^[0-9]{6}$`)

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{Logger: logger, Service: svc}
}

// WalletLoginRequest is the request body for POST /auth/wallet.
type WalletLoginRequest struct {
	Address string `json:"address"`
}

// Validate implements helpers.Validator.
func (w WalletLoginRequest) Validate() []string {
	if !ledgerIDRegex.MatchString(w.Address) {
		return []string{"address must be a 0x-prefixed hex wallet address"}
	}
	return nil
}

// TokenResponse carries a session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// TokenSuccessResponse is the success response envelope for login endpoints.
type TokenSuccessResponse struct {
	Data  TokenResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// WalletLogin godoc
// @Summary Log in with a wallet address
// @Description Ensures a profile exists for the address and issues a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.WalletLoginRequest true "Wallet address"
// @Success 200 {object} controllers.TokenSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/wallet [post]
func (c *AuthController) WalletLogin(w http.ResponseWriter, r *http.Request) {
	var req WalletLoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, err := c.Service.WalletLogin(r.Context(), req.Address)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TokenResponse{Token: token})
}

// RequestLoginCodeRequest is the request body for POST /auth/email/code.
type RequestLoginCodeRequest struct {
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (q RequestLoginCodeRequest) Validate() []string {
	if _, err := mail.ParseAddress(q.Email); err != nil {
		return []string{"email is not a valid address"}
	}
	return nil
}

// RequestLoginCode godoc
// @Summary Request a one-time email login code
// @Description Generates a six digit code, emails it, and stores only its hash. Always returns 202 for well-formed requests so the endpoint does not leak which emails are registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.RequestLoginCodeRequest true "Email address"
// @Success 202 {object} helpers.APIResponse "data contains {requested: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/email/code [post]
func (c *AuthController) RequestLoginCode(w http.ResponseWriter, r *http.Request) {
	var req RequestLoginCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RequestLoginCode(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusAccepted, map[string]bool{"requested": true})
}

// EmailLoginRequest is the request body for POST /auth/email/login.
type EmailLoginRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Validate implements helpers.Validator.
func (q EmailLoginRequest) Validate() []string {
	var errs []string
	if _, err := mail.ParseAddress(q.Email); err != nil {
		errs = append(errs, "email is not a valid address")
	}
	if !loginCodeRegex.MatchString(q.Code) {
		errs = append(errs, "code must be six digits")
	}
	return errs
}

// EmailLogin godoc
// @Summary Log in with an emailed one-time code
// @Description Consumes a valid code, ensures a profile keyed by the email exists, and issues a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.EmailLoginRequest true "Email and code"
// @Success 200 {object} controllers.TokenSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (bad or expired code)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/email/login [post]
func (c *AuthController) EmailLogin(w http.ResponseWriter, r *http.Request) {
	var req EmailLoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, err := c.Service.EmailLogin(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired code")
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, TokenResponse{Token: token})
}
