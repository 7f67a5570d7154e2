package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"web3events/internal/delivery/http/helpers"
	"web3events/internal/delivery/http/middleware"
	"web3events/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr       error
	lastCreated     *domain.Event
	getErr          error
	getResult       *domain.Event
	listErr         error
	listResult      []*domain.Event
	listTotal       int
	lastListParams  domain.PaginationParams
	syncErr         error
	syncResult      *domain.Event
	lastSyncID      string
	syncAllErr      error
	syncAllCount    int
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreated = event
	if f.createErr != nil {
		return f.createErr
	}
	event.MirrorID = "mirror-1"
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastListParams = params
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

func (f *fakeEventService) SyncEvent(ctx context.Context, ledgerID string) (*domain.Event, error) {
	f.lastSyncID = ledgerID
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return f.syncResult, nil
}

func (f *fakeEventService) SyncEvents(ctx context.Context) (int, error) {
	if f.syncAllErr != nil {
		return 0, f.syncAllErr
	}
	return f.syncAllCount, nil
}

// fakeBlastService implements domain.BlastService for handler tests.
type fakeBlastService struct {
	err         error
	sent        int
	failed      []string
	lastEventID string
	lastCaller  string
	lastSubject string
}

func (f *fakeBlastService) SendEventBlast(ctx context.Context, eventID, callerAddress, subject, message string) (int, []string, error) {
	f.lastEventID = eventID
	f.lastCaller = callerAddress
	f.lastSubject = subject
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.sent, f.failed, nil
}

func TestEventController_CreateEvent(t *testing.T) {
	validBody := fmt.Sprintf(`{"ledger_id":%q,"title":"Denver Meetup","capacity":100,"is_free":true}`, testEventID)

	tests := []struct {
		name           string
		body           string
		fakeErr        error
		noIdentity     bool
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           fmt.Sprintf(`{"ledger_id":%q}`, testEventID),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "title is required",
		},
		{
			name:           "bad ledger id",
			body:           `{"ledger_id":"xyz","title":"Meetup"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "ledger_id",
		},
		{
			name:           "no identity in context",
			body:           validBody,
			noIdentity:     true,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
		},
		{
			name:           "already mirrored",
			body:           validBody,
			fakeErr:        domain.ErrConflict,
			wantStatus:     http.StatusConflict,
			wantBodySubstr: "already mirrored",
		},
		{
			name:           "service error",
			body:           validBody,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{createErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake, &fakeBlastService{})
			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.noIdentity {
				req = req.WithContext(middleware.SetIdentity(req.Context(), domain.Identity{Address: "0xcreator"}))
			}
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				require.NotNil(t, fake.lastCreated)
				assert.Equal(t, "0xcreator", fake.lastCreated.CreatorAddress)
				assert.Equal(t, testEventID, fake.lastCreated.LedgerID)
				assert.Equal(t, "Denver Meetup", fake.lastCreated.Title)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestEventController_GetEventByID(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		fakeErr    error
		wantStatus int
	}{
		{
			name:       "by ledger id",
			eventID:    testEventID,
			wantStatus: http.StatusOK,
		},
		{
			name:       "by mirror uuid",
			eventID:    "11111111-2222-3333-4444-555555555555",
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed id",
			eventID:    "nope",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			eventID:    testEventID,
			fakeErr:    domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{
				getErr:    tt.fakeErr,
				getResult: &domain.Event{LedgerID: testEventID, Title: "Denver Meetup"},
			}
			ctrl := NewEventController(testLogger, fake, &fakeBlastService{})
			req := httptest.NewRequest(http.MethodGet, "http://test/events/"+tt.eventID, nil)
			req.SetPathValue("eventID", tt.eventID)
			rr := httptest.NewRecorder()

			ctrl.GetEventByID(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	fake := &fakeEventService{
		listResult: []*domain.Event{{LedgerID: testEventID, Title: "Denver Meetup"}},
		listTotal:  41,
	}
	ctrl := NewEventController(testLogger, fake, &fakeBlastService{})
	req := httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=10", nil)
	rr := httptest.NewRecorder()

	ctrl.ListEvents(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, fake.lastListParams.Page)
	assert.Equal(t, 10, fake.lastListParams.PageSize)

	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var payload ListEventsResponse
	require.NoError(t, json.Unmarshal(dataBytes, &payload))
	assert.Len(t, payload.Events, 1)
	assert.Equal(t, 41, payload.Pagination.Total)
	assert.Equal(t, 5, payload.Pagination.TotalPages)
}

func TestEventController_SendBlast(t *testing.T) {
	body := `{"subject":"Venue change","message":"We moved to the main hall."}`

	tests := []struct {
		name       string
		body       string
		fakeErr    error
		wantStatus int
	}{
		{name: "success", body: body, wantStatus: http.StatusOK},
		{name: "missing subject", body: `{"message":"hi"}`, wantStatus: http.StatusBadRequest},
		{name: "not the creator", body: body, fakeErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "event not found", body: body, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blast := &fakeBlastService{err: tt.fakeErr, sent: 3, failed: []string{"bad@example.com"}}
			ctrl := NewEventController(testLogger, &fakeEventService{}, blast)
			req := httptest.NewRequest(http.MethodPost, "http://test/events/"+testEventID+"/blast", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("eventID", testEventID)
			req = req.WithContext(middleware.SetIdentity(req.Context(), domain.Identity{Address: "0xcreator"}))
			rr := httptest.NewRecorder()

			ctrl.SendBlast(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, testEventID, blast.lastEventID)
				assert.Equal(t, "0xcreator", blast.lastCaller)
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var payload SendBlastResponse
				require.NoError(t, json.Unmarshal(dataBytes, &payload))
				assert.Equal(t, 3, payload.Sent)
				assert.Equal(t, []string{"bad@example.com"}, payload.Failed)
			}
		})
	}
}

func TestEventController_SyncEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeEventService{syncResult: &domain.Event{LedgerID: testEventID, Title: "Denver Meetup"}}
		ctrl := NewEventController(testLogger, fake, &fakeBlastService{})
		req := httptest.NewRequest(http.MethodPost, "http://test/events/"+testEventID+"/sync", nil)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()

		ctrl.SyncEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testEventID, fake.lastSyncID)
	})

	t.Run("not on ledger", func(t *testing.T) {
		fake := &fakeEventService{syncErr: domain.ErrNotFound}
		ctrl := NewEventController(testLogger, fake, &fakeBlastService{})
		req := httptest.NewRequest(http.MethodPost, "http://test/events/"+testEventID+"/sync", nil)
		req.SetPathValue("eventID", testEventID)
		rr := httptest.NewRecorder()

		ctrl.SyncEvent(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}
