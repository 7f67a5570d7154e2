package domain

import (
	"context"
	"time"
)

// Profile is a platform user. WalletAddress is the primary identity for
// wallet-connected users; email-only users have a profile keyed by email until
// they link a wallet. The on-chain profile object is mirrored best effort.
// swagger:model Profile
type Profile struct {
	ID              string    `json:"id"`
	WalletAddress   string    `json:"wallet_address,omitempty"`
	Email           string    `json:"email,omitempty"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	TwitterHandle   string    `json:"twitter_handle,omitempty"`
	TelegramHandle  string    `json:"telegram_handle,omitempty"`
	LedgerProfileID string    `json:"ledger_profile_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewProfile returns a new Profile. ID is typically set by the repository on create.
func NewProfile(walletAddress, email, name string, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		WalletAddress: walletAddress,
		Email:         email,
		Name:          name,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// TokenIssuer issues session tokens (JWT) for a resolved identity.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// CodeHasher hashes and verifies one-time login codes.
type CodeHasher interface {
	Hash(code string) (string, error)
	Compare(hash, code string) error
}

// ProfileRepository defines the interface for profile storage.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByWalletAddress(ctx context.Context, address string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
}

// LoginCode is a pending one-time email login code. Only the hash is stored.
type LoginCode struct {
	ID        string
	Email     string
	CodeHash  string
	ExpiresAt time.Time
}

// LoginCodeRepository stores hashed one-time login codes.
type LoginCodeRepository interface {
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	ListActiveByEmail(ctx context.Context, email string) ([]*LoginCode, error)
	Delete(ctx context.Context, id string) error
}

// ProfileService manages profiles and their best-effort on-chain mirror.
type ProfileService interface {
	UpsertProfile(ctx context.Context, profile *Profile) (*Profile, error)
	GetProfile(ctx context.Context, walletAddress string) (*Profile, error)
	UpdateProfile(ctx context.Context, walletAddress string, name, avatarURL, twitter, telegram *string) (*Profile, error)
}

// AuthService resolves identities into session tokens.
type AuthService interface {
	// WalletLogin ensures a profile exists for the address and issues a token.
	WalletLogin(ctx context.Context, address string) (string, error)
	// RequestLoginCode generates a one-time code and emails it.
	RequestLoginCode(ctx context.Context, email string) error
	// EmailLogin consumes a valid code and issues a token.
	EmailLogin(ctx context.Context, email, code string) (string, error)
}
