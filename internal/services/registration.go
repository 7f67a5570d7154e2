package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"web3events/internal/domain"
	"web3events/internal/state"
)

// Ledger entry points for the registration workflow.
const (
	fnRegister       = "register_for_event"
	fnMarkAttendance = "mark_attendance"
	fnClaimPOAP      = "claim_poap"
)

type registrationService struct {
	store     *state.Store
	gateway   domain.LedgerGateway
	regRepo   domain.RegistrationRepository
	emailSvc  domain.EmailService
	refresher Refresher
	logger    *slog.Logger
}

// NewRegistrationService wires the registration workflow: local validation,
// ledger submission, optimistic store update, best-effort mirror write.
func NewRegistrationService(
	store *state.Store,
	gateway domain.LedgerGateway,
	regRepo domain.RegistrationRepository,
	emailSvc domain.EmailService,
	refresher Refresher,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		store:     store,
		gateway:   gateway,
		regRepo:   regRepo,
		emailSvc:  emailSvc,
		refresher: refresher,
		logger:    logger,
	}
}

// Register validates locally, submits the payment transaction, and applies
// state only after ledger confirmation. Validation failures make no network
// call at all. The mirror write and confirmation email run after the ledger
// action and never roll it back.
func (s *registrationService) Register(ctx context.Context, eventID string, identity domain.Identity) (*domain.Registration, error) {
	if identity.IsZero() {
		return nil, domain.ErrIdentityRequired
	}
	ev, ok := s.store.Get(eventID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if ev.IsRegistered(identity.Key()) {
		return nil, domain.ErrAlreadyRegistered
	}
	if ev.AtCapacity() {
		return nil, domain.ErrEventFull
	}

	// Free events still carry an explicit zero-value payment so the contract
	// call shape is uniform.
	payment := uint64(0)
	if !ev.IsFree {
		payment = ev.Price
	}
	result, err := s.gateway.ExecuteTransaction(ctx, &domain.TransactionRequest{
		Sender:   identity.Address,
		Function: fnRegister,
		Args:     []any{eventID, identity.Key()},
		Payment:  &payment,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerRejected, err)
	}
	if !result.Succeeded() {
		return nil, fmt.Errorf("%w: %s", domain.ErrLedgerRejected, result.Error)
	}

	s.store.AddRegistered(eventID, identity.Key())

	now := time.Now()
	reg := domain.NewRegistration(eventID, identity, result.Digest, now, now)
	if err := s.regRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another request mirrored this registration first; the ledger
			// already holds the truth, so treat it as mirrored.
			existing, getErr := s.regRepo.GetByEventAndIdentity(ctx, eventID, identity.Key())
			if getErr == nil {
				reg = existing
			}
		} else {
			s.logger.Warn("registration mirror write failed", "event_id", eventID, "identity", identity.Key(), "err", err)
		}
	}

	if identity.Email != "" {
		data := &domain.RegistrationEmailData{
			Email:      identity.Email,
			EventTitle: ev.Title,
			EventDate:  ev.StartsAt.Format(time.RFC1123),
			Location:   ev.Location,
		}
		if err := s.emailSvc.SendRegistrationConfirmation(ctx, data); err != nil {
			s.logger.Warn("confirmation email failed", "event_id", eventID, "email", identity.Email, "err", err)
		}
	}

	s.refresher.ScheduleRefresh()
	return reg, nil
}

// MarkAttendance promotes identity into the attended set. Creator-only, and
// only for identities already registered, keeping attendance a subset of
// registrations. Marking twice is a no-op with no second ledger call.
func (s *registrationService) MarkAttendance(ctx context.Context, eventID, identityKey, callerAddress string) error {
	ev, ok := s.store.Get(eventID)
	if !ok {
		return domain.ErrNotFound
	}
	if callerAddress == "" || callerAddress != ev.CreatorAddress {
		return domain.ErrForbidden
	}
	if !ev.IsRegistered(identityKey) {
		return domain.ErrNotRegistered
	}
	if ev.HasAttended(identityKey) {
		return nil
	}

	result, err := s.gateway.ExecuteTransaction(ctx, &domain.TransactionRequest{
		Sender:   callerAddress,
		Function: fnMarkAttendance,
		Args:     []any{eventID, identityKey},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLedgerRejected, err)
	}
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s", domain.ErrLedgerRejected, result.Error)
	}

	s.store.AddAttended(eventID, identityKey)

	if err := s.regRepo.MarkCheckedIn(ctx, eventID, identityKey); err != nil {
		s.logger.Warn("check-in mirror write failed", "event_id", eventID, "identity", identityKey, "err", err)
	}

	s.refresher.ScheduleRefresh()
	return nil
}

// ClaimPOAP mints the attendance badge. Gated on confirmed attendance; the
// one-badge-per-identity rule is enforced by the contract itself.
func (s *registrationService) ClaimPOAP(ctx context.Context, eventID, identityKey string) (*domain.TransactionResult, error) {
	ev, ok := s.store.Get(eventID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !ev.HasAttended(identityKey) {
		return nil, domain.ErrNotAttended
	}

	result, err := s.gateway.ExecuteTransaction(ctx, &domain.TransactionRequest{
		Sender:   identityKey,
		Function: fnClaimPOAP,
		Args:     []any{eventID},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerRejected, err)
	}
	if !result.Succeeded() {
		return nil, fmt.Errorf("%w: %s", domain.ErrLedgerRejected, result.Error)
	}

	if err := s.regRepo.MarkPOAPClaimed(ctx, eventID, identityKey); err != nil {
		s.logger.Warn("poap-claim mirror write failed", "event_id", eventID, "identity", identityKey, "err", err)
	}
	return result, nil
}

func (s *registrationService) GetRegistration(ctx context.Context, eventID, identityKey string) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByEventAndIdentity(ctx, eventID, identityKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}
