package domain

import (
	"context"
	"time"
)

// Event is a normalized event record. LedgerID is the on-chain object id and is
// the primary identity; MirrorID is the local row id assigned by the relational
// mirror. Registered and Attended are derived sets of wallet addresses and are
// never nil after decoding.
type Event struct {
	LedgerID         string    `json:"ledger_id"`
	MirrorID         string    `json:"mirror_id,omitempty"`
	CreatorAddress   string    `json:"creator_address"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	Capacity         int       `json:"capacity"` // 0 means unlimited
	IsFree           bool      `json:"is_free"`
	Price            uint64    `json:"price"`
	IsPrivate        bool      `json:"is_private"`
	RequiresApproval bool      `json:"requires_approval"`
	BannerURL        string    `json:"banner_url,omitempty"`
	NFTImageURL      string    `json:"nft_image_url,omitempty"`
	POAPImageURL     string    `json:"poap_image_url,omitempty"`
	Registered       []string  `json:"registered"`
	Attended         []string  `json:"attended"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewEvent returns an Event with the derived sets initialized to empty slices.
func NewEvent(ledgerID, creator, title string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		LedgerID:       ledgerID,
		CreatorAddress: creator,
		Title:          title,
		Registered:     []string{},
		Attended:       []string{},
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// IsRegistered reports whether identity is in the registered set.
func (e *Event) IsRegistered(identity string) bool {
	for _, a := range e.Registered {
		if a == identity {
			return true
		}
	}
	return false
}

// HasAttended reports whether identity is in the attended set.
func (e *Event) HasAttended(identity string) bool {
	for _, a := range e.Attended {
		if a == identity {
			return true
		}
	}
	return false
}

// AtCapacity reports whether the registered set has reached the capacity bound.
// Events with no capacity set are never full.
func (e *Event) AtCapacity() bool {
	return e.Capacity > 0 && len(e.Registered) >= e.Capacity
}

// EventRepository is the relational mirror of ledger events. Mirror rows are a
// convenience cache; the ledger stays the source of truth.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByMirrorID(ctx context.Context, id string) (*Event, error)
	GetByLedgerID(ctx context.Context, ledgerID string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, error)
	CountAll(ctx context.Context) (int, error)
	Upsert(ctx context.Context, event *Event) error
}

// EventService exposes the mirror-side event operations of the REST surface.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	// SyncEvent re-derives the mirror row for one event from ledger state.
	SyncEvent(ctx context.Context, ledgerID string) (*Event, error)
	// SyncEvents re-derives mirror rows for every event found on the ledger.
	SyncEvents(ctx context.Context) (int, error)
}
