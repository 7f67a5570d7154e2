package domain

import (
	"context"
	"time"
)

// Identity is a resolved user identity: a wallet address, an email, or both.
// Wallet-connect and social-login flows are external; only their result is
// carried here.
type Identity struct {
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// IsZero reports whether neither an address nor an email is present.
func (i Identity) IsZero() bool {
	return i.Address == "" && i.Email == ""
}

// Key returns the string used in the registered/attended sets: the wallet
// address when present, otherwise the email.
func (i Identity) Key() string {
	if i.Address != "" {
		return i.Address
	}
	return i.Email
}

// Registration is the mirror row joining an identity to an event.
// swagger:model Registration
type Registration struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"` // ledger object id of the event
	Address     string    `json:"address,omitempty"`
	Email       string    `json:"email,omitempty"`
	Approved    bool      `json:"approved"`
	CheckedIn   bool      `json:"checked_in"`
	POAPClaimed bool      `json:"poap_claimed"`
	TxDigest    string    `json:"tx_digest,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRegistration creates a Registration. ID is set by the repository on create.
func NewRegistration(eventID string, identity Identity, txDigest string, createdAt, updatedAt time.Time) *Registration {
	return &Registration{
		EventID:   eventID,
		Address:   identity.Address,
		Email:     identity.Email,
		TxDigest:  txDigest,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RegistrationRepository defines storage operations for registration mirror
// rows. Create returns ErrConflict when the (event, identity) pair already
// exists; the table carries a unique constraint so concurrent requests cannot
// both insert.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByEventAndIdentity(ctx context.Context, eventID, identityKey string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByIdentity(ctx context.Context, identityKey string) ([]*Registration, error)
	MarkCheckedIn(ctx context.Context, eventID, identityKey string) error
	MarkPOAPClaimed(ctx context.Context, eventID, identityKey string) error
}

// RegistrationService drives the register, check-in, and POAP-claim workflow.
// Every operation validates locally first, submits the ledger transaction, and
// only applies local and mirror state after ledger confirmation. Mirror writes
// are best effort and never roll back a confirmed ledger action.
type RegistrationService interface {
	Register(ctx context.Context, eventID string, identity Identity) (*Registration, error)
	// MarkAttendance promotes a registered identity into the attended set.
	// Only the event creator may call it; marking twice is a no-op.
	MarkAttendance(ctx context.Context, eventID, identityKey, callerAddress string) error
	// ClaimPOAP mints the attendance badge for an identity that checked in.
	ClaimPOAP(ctx context.Context, eventID, identityKey string) (*TransactionResult, error)
	GetRegistration(ctx context.Context, eventID, identityKey string) (*Registration, error)
}
