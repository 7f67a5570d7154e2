package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"web3events/internal/adapters/ledger"
	"web3events/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	gateway   domain.LedgerGateway
	sync      *SyncService
	logger    *slog.Logger
}

// NewEventService creates the mirror-side event service. Lookups that miss the
// mirror fall back to re-deriving the row from ledger state.
func NewEventService(eventRepo domain.EventRepository, gateway domain.LedgerGateway, sync *SyncService, logger *slog.Logger) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		gateway:   gateway,
		sync:      sync,
		logger:    logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if event.LedgerID == "" {
		return fmt.Errorf("%w: ledger_id is required", domain.ErrInvalidInput)
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create event mirror: %w", err)
	}
	return nil
}

// GetEvent looks an event up by ledger id, falling back to the mirror row id.
// A mirror miss triggers a sync from the ledger before giving up.
func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByLedgerID(ctx, id)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event, err = s.eventRepo.GetByMirrorID(ctx, id); err == nil {
		return event, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.SyncEvent(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	events, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	total, err := s.eventRepo.CountAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// SyncEvent re-derives one mirror row from the ledger object.
func (s *eventService) SyncEvent(ctx context.Context, ledgerID string) (*domain.Event, error) {
	obj, err := s.gateway.GetObject(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s not on ledger", domain.ErrNotFound, ledgerID)
	}
	event, err := ledger.DecodeEvent(obj)
	if err != nil {
		return nil, fmt.Errorf("decode event %s: %w", ledgerID, err)
	}
	if err := s.eventRepo.Upsert(ctx, event); err != nil {
		return nil, fmt.Errorf("upsert event mirror: %w", err)
	}
	return event, nil
}

// SyncEvents re-derives mirror rows for everything the synchronizer can fetch.
// Per-row upsert failures are logged and skipped; the count of synced rows is
// returned.
func (s *eventService) SyncEvents(ctx context.Context) (int, error) {
	events, err := s.sync.FetchEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch ledger events: %w", err)
	}
	synced := 0
	for _, event := range events {
		if err := s.eventRepo.Upsert(ctx, event); err != nil {
			s.logger.Warn("event mirror upsert failed", "ledger_id", event.LedgerID, "err", err)
			continue
		}
		synced++
	}
	return synced, nil
}
