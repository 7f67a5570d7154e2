package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"web3events/internal/delivery/http/helpers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/domain"
)

// ledgerIDRegex matches an on-chain object id (0x-prefixed hex).
var ledgerIDRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Blast   domain.BlastService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, blast domain.BlastService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Blast:   blast,
	}
}

// CreateEventRequest is the request body for POST /events. The event already
// exists on the ledger; this creates its relational mirror row.
type CreateEventRequest struct {
	LedgerID     string `json:"ledger_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	StartsAt     int64  `json:"starts_at"` // epoch milliseconds
	EndsAt       int64  `json:"ends_at"`   // epoch milliseconds
	Capacity     int    `json:"capacity"`
	IsFree       bool   `json:"is_free"`
	Price        uint64 `json:"price"`
	IsPrivate    bool   `json:"is_private"`
	BannerURL    string `json:"banner_url"`
	NFTImageURL  string `json:"nft_image_url"`
	POAPImageURL string `json:"poap_image_url"`
}

// Validate implements helpers.Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if !ledgerIDRegex.MatchString(c.LedgerID) {
		errs = append(errs, "ledger_id must be a 0x-prefixed object id")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity cannot be negative")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Mirror a ledger event
// @Description Creates the relational mirror row for an event that already exists on the ledger. The authenticated wallet becomes the creator of record.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the mirrored event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already mirrored)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	now := time.Now()
	event := domain.NewEvent(req.LedgerID, identity.Address, req.Title, now, now)
	event.Description = req.Description
	event.Location = req.Location
	if req.StartsAt > 0 {
		event.StartsAt = time.UnixMilli(req.StartsAt).UTC()
	}
	if req.EndsAt > 0 {
		event.EndsAt = time.UnixMilli(req.EndsAt).UTC()
	}
	event.Capacity = req.Capacity
	event.IsFree = req.IsFree
	event.Price = req.Price
	event.IsPrivate = req.IsPrivate
	event.BannerURL = req.BannerURL
	event.NFTImageURL = req.NFTImageURL
	event.POAPImageURL = req.POAPImageURL

	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event already mirrored")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEventsResponse is the payload for GET /events: events plus pagination metadata.
type ListEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEvents godoc
// @Summary List mirrored events
// @Description Returns mirrored events ordered by start time, newest first. Public; no authentication required.
// @Tags events
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEventByID godoc
// @Summary Get an event
// @Description Returns the event by ledger object id or mirror row id. A mirror miss triggers a re-derive from ledger state before returning 404.
// @Tags events
// @Produce json
// @Param eventID path string true "Ledger object id or mirror UUID"
// @Success 200 {object} controllers.GetEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) && !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SyncEvent godoc
// @Summary Re-derive one mirror row from ledger state
// @Tags sync
// @Produce json
// @Param eventID path string true "Ledger object id"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the re-derived event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (not on ledger)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/sync [post]
func (c *EventController) SyncEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	event, err := c.Service.SyncEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found on ledger")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SyncEventsResponse reports how many mirror rows a full sync wrote.
type SyncEventsResponse struct {
	Synced int `json:"synced"`
}

// SyncEvents godoc
// @Summary Re-derive all mirror rows from ledger state
// @Tags sync
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the synced row count"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sync/events [post]
func (c *EventController) SyncEvents(w http.ResponseWriter, r *http.Request) {
	synced, err := c.Service.SyncEvents(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SyncEventsResponse{Synced: synced})
}

// SendBlastRequest is the request body for POST /events/{eventID}/blast.
type SendBlastRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate implements helpers.Validator.
func (b SendBlastRequest) Validate() []string {
	var errs []string
	if b.Subject == "" {
		errs = append(errs, "subject is required")
	}
	if b.Message == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// SendBlastResponse reports the fan-out outcome.
type SendBlastResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// SendBlast godoc
// @Summary Email all registrants of an event
// @Description Sends the message to every registrant with an email on file. Only the event creator may call it. Individual send failures are reported, not fatal.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Ledger object id"
// @Param body body controllers.SendBlastRequest true "Blast subject and message"
// @Success 200 {object} helpers.APIResponse "data contains sent count and failed recipients"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/blast [post]
func (c *EventController) SendBlast(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !ledgerIDRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req SendBlastRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	sent, failed, err := c.Blast.SendEventBlast(r.Context(), eventID, identity.Address, req.Subject, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrForbidden):
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the event creator can send a blast")
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SendBlastResponse{Sent: sent, Failed: failed})
}
