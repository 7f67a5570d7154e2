package postgres

import (
	"context"
	"database/sql"
	"errors"

	"web3events/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

// NewProfileRepository returns a domain.ProfileRepository implemented with Postgres.
func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

const profileColumns = `
	id, wallet_address, email, name, avatar_url, twitter_handle,
	telegram_handle, ledger_profile_id, created_at, updated_at
`

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (wallet_address, email, name, avatar_url, twitter_handle, telegram_handle, ledger_profile_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		nullable(p.WalletAddress), nullable(p.Email), p.Name, nullable(p.AvatarURL),
		nullable(p.TwitterHandle), nullable(p.TelegramHandle), nullable(p.LedgerProfileID),
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *profileRepository) GetByWalletAddress(ctx context.Context, address string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE wallet_address = $1`
	return r.getOne(ctx, query, address)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *profileRepository) getOne(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	p := &domain.Profile{}
	var addrNull, emailNull, avatarNull, twitterNull, telegramNull, ledgerNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &addrNull, &emailNull, &p.Name, &avatarNull, &twitterNull,
		&telegramNull, &ledgerNull, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.WalletAddress = addrNull.String
	p.Email = emailNull.String
	p.AvatarURL = avatarNull.String
	p.TwitterHandle = twitterNull.String
	p.TelegramHandle = telegramNull.String
	p.LedgerProfileID = ledgerNull.String
	return p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET wallet_address = $1, email = $2, name = $3, avatar_url = $4,
			twitter_handle = $5, telegram_handle = $6, ledger_profile_id = $7,
			updated_at = NOW()
		WHERE id = $8
	`
	result, err := r.DB.ExecContext(ctx, query,
		nullable(p.WalletAddress), nullable(p.Email), p.Name, nullable(p.AvatarURL),
		nullable(p.TwitterHandle), nullable(p.TelegramHandle), nullable(p.LedgerProfileID),
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullable maps the empty string to SQL NULL so partial identities don't
// collide on unique columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
