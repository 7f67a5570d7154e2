package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"web3events/internal/delivery/http/helpers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/domain"
)

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{Logger: logger, Service: svc}
}

// UpsertProfileRequest is the request body for POST /profiles.
type UpsertProfileRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	AvatarURL      string `json:"avatar_url"`
	TwitterHandle  string `json:"twitter_handle"`
	TelegramHandle string `json:"telegram_handle"`
}

// Validate implements helpers.Validator.
func (p UpsertProfileRequest) Validate() []string {
	var errs []string
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			errs = append(errs, "email is not a valid address")
		}
	}
	return errs
}

// ProfileSuccessResponse is the success response envelope for profile endpoints.
type ProfileSuccessResponse struct {
	Data  *domain.Profile   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpsertProfile godoc
// @Summary Create or update the caller's profile
// @Description Merges the payload into the profile keyed by the caller's wallet or email, creating it if absent. The on-chain profile object is mirrored best effort.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body controllers.UpsertProfileRequest true "Profile data"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles [post]
func (c *ProfileController) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req UpsertProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	email := req.Email
	if email == "" {
		email = identity.Email
	}
	now := time.Now()
	profile := domain.NewProfile(identity.Address, email, req.Name, now, now)
	profile.AvatarURL = req.AvatarURL
	profile.TwitterHandle = req.TwitterHandle
	profile.TelegramHandle = req.TelegramHandle

	saved, err := c.Service.UpsertProfile(r.Context(), profile)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, saved)
}

// GetProfile godoc
// @Summary Get a profile by wallet address
// @Tags profiles
// @Produce json
// @Param address path string true "Wallet address (0x-prefixed hex)"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/{address} [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if !ledgerIDRegex.MatchString(address) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid address")
		return
	}
	profile, err := c.Service.GetProfile(r.Context(), address)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "profile not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// UpdateProfileRequest is the request body for PUT /profiles/me. Absent fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	AvatarURL      *string `json:"avatar_url"`
	TwitterHandle  *string `json:"twitter_handle"`
	TelegramHandle *string `json:"telegram_handle"`
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Partial update; only fields present in the body change.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body controllers.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [put]
func (c *ProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.Address == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	profile, err := c.Service.UpdateProfile(r.Context(), identity.Address, req.Name, req.AvatarURL, req.TwitterHandle, req.TelegramHandle)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "profile not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}
