package postgres

import (
	"context"
	"database/sql"
	"errors"

	"web3events/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns a domain.RegistrationRepository backed by
// the registrations mirror table. The table carries a unique constraint on
// (event_id, identity_key) so concurrent registrations for the same identity
// cannot both insert.
func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{DB: db}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, identity_key, address, email, approved, tx_digest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	identityKey := domain.Identity{Address: reg.Address, Email: reg.Email}.Key()
	err := r.DB.QueryRowContext(ctx, query,
		reg.EventID, identityKey, reg.Address, reg.Email, reg.Approved, reg.TxDigest,
		reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *registrationRepository) GetByEventAndIdentity(ctx context.Context, eventID, identityKey string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, address, email, approved, checked_in, poap_claimed, tx_digest, created_at, updated_at
		FROM registrations
		WHERE event_id = $1 AND identity_key = $2
	`
	reg := &domain.Registration{}
	var addrNull, emailNull, digestNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, eventID, identityKey).Scan(
		&reg.ID, &reg.EventID, &addrNull, &emailNull, &reg.Approved,
		&reg.CheckedIn, &reg.POAPClaimed, &digestNull, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	reg.Address = addrNull.String
	reg.Email = emailNull.String
	reg.TxDigest = digestNull.String
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, address, email, approved, checked_in, poap_claimed, tx_digest, created_at, updated_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID)
}

func (r *registrationRepository) ListByIdentity(ctx context.Context, identityKey string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, address, email, approved, checked_in, poap_claimed, tx_digest, created_at, updated_at
		FROM registrations
		WHERE identity_key = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, identityKey)
}

func (r *registrationRepository) list(ctx context.Context, query string, arg any) ([]*domain.Registration, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		var addrNull, emailNull, digestNull sql.NullString
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &addrNull, &emailNull, &reg.Approved,
			&reg.CheckedIn, &reg.POAPClaimed, &digestNull, &reg.CreatedAt, &reg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reg.Address = addrNull.String
		reg.Email = emailNull.String
		reg.TxDigest = digestNull.String
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) MarkCheckedIn(ctx context.Context, eventID, identityKey string) error {
	query := `
		UPDATE registrations
		SET checked_in = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND identity_key = $2
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, identityKey)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) MarkPOAPClaimed(ctx context.Context, eventID, identityKey string) error {
	query := `
		UPDATE registrations
		SET poap_claimed = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND identity_key = $2
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, identityKey)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
