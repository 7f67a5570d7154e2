package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"web3events/internal/delivery/http/helpers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{Logger: logger, Service: svc}
}

// RegisterSuccessResponse is the success response envelope for POST /events/{eventID}/register (201).
type RegisterSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// Register godoc
// @Summary Register for an event
// @Description Submits the registration transaction to the ledger, then records the registration locally. The caller's wallet or email identity comes from the session token.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Ledger object id"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered or event full)"
// @Failure 502 {object} helpers.APIResponse "error.code: ledger_error"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.Register(r.Context(), eventID, identity)
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// GetRegistrationSuccessResponse is the success response envelope for GET /events/{eventID}/registration (200).
type GetRegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetRegistration godoc
// @Summary Get the caller's registration for an event
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Ledger object id"
// @Success 200 {object} controllers.GetRegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/registration [get]
func (c *RegistrationController) GetRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.GetRegistration(r.Context(), eventID, identity.Key())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// CheckInRequest names the attendee the event creator is checking in.
type CheckInRequest struct {
	IdentityKey string `json:"identity_key"`
}

// Validate implements helpers.Validator.
func (c CheckInRequest) Validate() []string {
	if c.IdentityKey == "" {
		return []string{"identity_key is required"}
	}
	return nil
}

// CheckIn godoc
// @Summary Check an attendee in
// @Description Marks a registered identity as attended. Only the event creator may call it. Checking in an already-attended identity is a no-op.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Ledger object id"
// @Param body body controllers.CheckInRequest true "Attendee identity key"
// @Success 200 {object} helpers.APIResponse "data contains {checked_in: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not registered)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: ledger_error"
// @Router /events/{eventID}/checkin [post]
func (c *RegistrationController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.MarkAttendance(r.Context(), eventID, req.IdentityKey, identity.Address); err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"checked_in": true})
}

// ClaimPOAPSuccessResponse is the success response envelope for POST /events/{eventID}/poap (200).
type ClaimPOAPSuccessResponse struct {
	Data  *domain.TransactionResult `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ClaimPOAP godoc
// @Summary Claim the attendance badge for an event
// @Description Mints the proof-of-attendance badge on the ledger for the caller. Requires the caller to have been checked in first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Ledger object id"
// @Success 200 {object} controllers.ClaimPOAPSuccessResponse "data contains the mint transaction result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not attended)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: ledger_error"
// @Router /events/{eventID}/poap [post]
func (c *RegistrationController) ClaimPOAP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.ClaimPOAP(r.Context(), eventID, identity.Key())
	if err != nil {
		c.writeRegistrationError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// writeRegistrationError maps registration workflow errors onto the response envelope.
func (c *RegistrationController) writeRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrIdentityRequired):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "a wallet address or email is required")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event creator can do this")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already registered for this event")
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event is at capacity")
	case errors.Is(err, domain.ErrNotRegistered):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "identity is not registered for this event")
	case errors.Is(err, domain.ErrNotAttended):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "identity has not checked in to this event")
	case errors.Is(err, domain.ErrLedgerRejected):
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeLedgerError, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
