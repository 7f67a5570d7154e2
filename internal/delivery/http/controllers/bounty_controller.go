package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"web3events/internal/delivery/http/helpers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/domain"
)

type BountyController struct {
	Logger  *slog.Logger
	Service domain.BountyService
}

func NewBountyController(logger *slog.Logger, svc domain.BountyService) *BountyController {
	return &BountyController{Logger: logger, Service: svc}
}

// CreateBountyRequest is the request body for POST /bounties.
type CreateBountyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      string `json:"reward"`
}

// Validate implements helpers.Validator.
func (b CreateBountyRequest) Validate() []string {
	var errs []string
	if b.Title == "" {
		errs = append(errs, "title is required")
	}
	if b.Reward == "" {
		errs = append(errs, "reward is required")
	}
	return errs
}

// BountySuccessResponse is the success response envelope for single-bounty endpoints.
type BountySuccessResponse struct {
	Data  *domain.Bounty    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateBounty godoc
// @Summary Post a bounty
// @Tags bounties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bounty body controllers.CreateBountyRequest true "Bounty data"
// @Success 201 {object} controllers.BountySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bounties [post]
func (c *BountyController) CreateBounty(w http.ResponseWriter, r *http.Request) {
	var req CreateBountyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	now := time.Now()
	bounty := domain.NewBounty(identity.Address, req.Title, req.Description, req.Reward, now, now)
	if err := c.Service.CreateBounty(r.Context(), bounty); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, bounty)
}

// ListBountiesResponse is the payload for GET /bounties.
type ListBountiesResponse struct {
	Bounties   []*domain.Bounty       `json:"bounties"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListBounties godoc
// @Summary List bounties
// @Description Returns bounties, optionally filtered by status. Public; no authentication required.
// @Tags bounties
// @Produce json
// @Param status query string false "Filter by status (open, claimed, proof_submitted, resolved)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains bounties and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bounties [get]
func (c *BountyController) ListBounties(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", domain.BountyStatusOpen, domain.BountyStatusClaimed, domain.BountyStatusProofSubmitted, domain.BountyStatusResolved:
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid status filter")
		return
	}
	params := helpers.ParsePagination(r)
	bounties, total, err := c.Service.ListBounties(r.Context(), status, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListBountiesResponse{
		Bounties:   bounties,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetBountyByID godoc
// @Summary Get a bounty
// @Tags bounties
// @Produce json
// @Param bountyID path string true "Bounty UUID"
// @Success 200 {object} controllers.BountySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bounties/{bountyID} [get]
func (c *BountyController) GetBountyByID(w http.ResponseWriter, r *http.Request) {
	bountyID := r.PathValue("bountyID")
	if !uuidRegex.MatchString(bountyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bountyID")
		return
	}
	bounty, err := c.Service.GetBounty(r.Context(), bountyID)
	if err != nil {
		c.writeBountyError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bounty)
}

// ClaimBounty godoc
// @Summary Claim an open bounty
// @Description Marks the bounty claimed by the caller. Creators cannot claim their own bounties.
// @Tags bounties
// @Produce json
// @Security BearerAuth
// @Param bountyID path string true "Bounty UUID"
// @Success 200 {object} controllers.BountySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not open)"
// @Router /bounties/{bountyID}/claim [post]
func (c *BountyController) ClaimBounty(w http.ResponseWriter, r *http.Request) {
	bountyID := r.PathValue("bountyID")
	if !uuidRegex.MatchString(bountyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bountyID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bounty, err := c.Service.ClaimBounty(r.Context(), bountyID, identity.Address)
	if err != nil {
		c.writeBountyError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bounty)
}

// SubmitProofRequest is the request body for POST /bounties/{bountyID}/proof.
type SubmitProofRequest struct {
	ProofURL string `json:"proof_url"`
}

// Validate implements helpers.Validator.
func (p SubmitProofRequest) Validate() []string {
	if p.ProofURL == "" {
		return []string{"proof_url is required"}
	}
	return nil
}

// SubmitProof godoc
// @Summary Submit proof of work for a claimed bounty
// @Description Only the claimant may submit proof, and only while the bounty is in claimed status.
// @Tags bounties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bountyID path string true "Bounty UUID"
// @Param body body controllers.SubmitProofRequest true "Proof URL"
// @Success 200 {object} controllers.BountySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the claimant)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not claimed)"
// @Router /bounties/{bountyID}/proof [post]
func (c *BountyController) SubmitProof(w http.ResponseWriter, r *http.Request) {
	bountyID := r.PathValue("bountyID")
	if !uuidRegex.MatchString(bountyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bountyID")
		return
	}
	var req SubmitProofRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bounty, err := c.Service.SubmitProof(r.Context(), bountyID, identity.Address, req.ProofURL)
	if err != nil {
		c.writeBountyError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bounty)
}

// ResolveBounty godoc
// @Summary Resolve a bounty with submitted proof
// @Description Only the bounty creator may resolve, and only after proof has been submitted.
// @Tags bounties
// @Produce json
// @Security BearerAuth
// @Param bountyID path string true "Bounty UUID"
// @Success 200 {object} controllers.BountySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (no proof submitted)"
// @Router /bounties/{bountyID}/resolve [post]
func (c *BountyController) ResolveBounty(w http.ResponseWriter, r *http.Request) {
	bountyID := r.PathValue("bountyID")
	if !uuidRegex.MatchString(bountyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bountyID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	bounty, err := c.Service.ResolveBounty(r.Context(), bountyID, identity.Address)
	if err != nil {
		c.writeBountyError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bounty)
}

// writeBountyError maps bounty lifecycle errors onto the response envelope.
func (c *BountyController) writeBountyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "bounty not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not allowed on this bounty")
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
