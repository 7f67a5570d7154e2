package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"web3events/internal/adapters/ledger"
	"web3events/internal/domain"
	"web3events/internal/state"
)

// Registry field names holding the nested table references.
const (
	registryEventsField     = "events"
	registryAttendanceField = "attendance_records"
)

// Refresher schedules a deferred re-fetch of ledger state. Mutating workflows
// call it after a confirmed transaction so the store converges on what the
// ledger actually recorded.
type Refresher interface {
	ScheduleRefresh()
}

// SyncService is the event state synchronizer: it reads the on-chain registry,
// decodes every event it can, and installs the result into the shared store.
// A failure on any single event drops that event only; partial results beat an
// all-or-nothing failure.
type SyncService struct {
	gateway      domain.LedgerGateway
	registryID   string
	store        *state.Store
	logger       *slog.Logger
	refreshDelay time.Duration
}

// NewSyncService creates a SyncService polling the registry object with the
// given id. refreshDelay bounds how long after a local mutation the re-fetch
// runs.
func NewSyncService(gateway domain.LedgerGateway, registryID string, store *state.Store, logger *slog.Logger, refreshDelay time.Duration) *SyncService {
	return &SyncService{
		gateway:      gateway,
		registryID:   registryID,
		store:        store,
		logger:       logger,
		refreshDelay: refreshDelay,
	}
}

// FetchEvents reads the registry, enumerates both nested tables, decodes each
// event entry, and cross-references attendance records. The resulting snapshot
// replaces the store contents unless a later-started fetch already landed.
// Read-only against the ledger; safe to retry or poll.
func (s *SyncService) FetchEvents(ctx context.Context) ([]*domain.Event, error) {
	seq := s.store.BeginSync()

	registry, err := s.gateway.GetObject(ctx, s.registryID)
	if err != nil {
		return nil, fmt.Errorf("get registry object: %w", err)
	}
	eventsTableID, err := ledger.DecodeTableID(registry.Fields[registryEventsField])
	if err != nil {
		return nil, fmt.Errorf("decode events table reference: %w", err)
	}
	attendanceTableID, err := ledger.DecodeTableID(registry.Fields[registryAttendanceField])
	if err != nil {
		return nil, fmt.Errorf("decode attendance table reference: %w", err)
	}

	attendance := s.fetchAttendance(ctx, attendanceTableID)

	entries, err := s.gateway.GetDynamicFields(ctx, eventsTableID)
	if err != nil {
		return nil, fmt.Errorf("enumerate events table: %w", err)
	}

	events := make([]*domain.Event, 0, len(entries))
	for _, entry := range entries {
		obj, err := s.gateway.GetObject(ctx, entry.ObjectID)
		if err != nil {
			s.logger.Warn("skipping event entry: fetch failed", "object_id", entry.ObjectID, "err", err)
			continue
		}
		ev, err := ledger.DecodeEvent(obj)
		if err != nil {
			s.logger.Warn("skipping event entry: decode failed", "object_id", entry.ObjectID, "err", err)
			continue
		}
		if attended, ok := attendance[ev.LedgerID]; ok {
			ev.Attended = attended
		}
		events = append(events, ev)
	}

	if !s.store.ReplaceAll(seq, events) {
		s.logger.Debug("discarded stale ledger snapshot", "seq", seq)
	}
	return events, nil
}

// fetchAttendance builds the event-id -> attended-addresses map from the
// attendance table. Errors here degrade to empty attendance rather than
// failing the whole fetch.
func (s *SyncService) fetchAttendance(ctx context.Context, tableID string) map[string][]string {
	attendance := make(map[string][]string)
	entries, err := s.gateway.GetDynamicFields(ctx, tableID)
	if err != nil {
		s.logger.Warn("attendance table enumeration failed", "err", err)
		return attendance
	}
	for _, entry := range entries {
		obj, err := s.gateway.GetObject(ctx, entry.ObjectID)
		if err != nil {
			s.logger.Warn("skipping attendance entry: fetch failed", "object_id", entry.ObjectID, "err", err)
			continue
		}
		eventID := decodeEntryName(obj.Fields["name"], entry.Name)
		if eventID == "" {
			continue
		}
		attendance[eventID] = ledger.DecodeAddressSet(obj.Fields["value"])
	}
	return attendance
}

// decodeEntryName resolves a table entry key from the entry object fields,
// falling back to the enumeration metadata. Keys appear as bare strings or as
// {value: "..."} wrappers.
func decodeEntryName(candidates ...any) string {
	for _, v := range candidates {
		switch name := v.(type) {
		case string:
			if name != "" {
				return name
			}
		case map[string]any:
			if s, ok := name["value"].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Events returns the current store snapshot.
func (s *SyncService) Events() []*domain.Event {
	return s.store.Snapshot()
}

// ScheduleRefresh runs FetchEvents after the configured delay. The delayed
// fetch prefers ledger state over any local optimistic update it overlaps.
func (s *SyncService) ScheduleRefresh() {
	time.AfterFunc(s.refreshDelay, func() {
		if _, err := s.FetchEvents(context.Background()); err != nil {
			s.logger.Warn("scheduled refresh failed", "err", err)
		}
	})
}

var _ Refresher = (*SyncService)(nil)
