package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"web3events/internal/domain"
	"web3events/internal/state"
)

type blastService struct {
	store    *state.Store
	regRepo  domain.RegistrationRepository
	emailSvc domain.EmailService
	logger   *slog.Logger
}

// NewBlastService creates a BlastService fanning creator messages out to an
// event's registrants.
func NewBlastService(store *state.Store, regRepo domain.RegistrationRepository, emailSvc domain.EmailService, logger *slog.Logger) domain.BlastService {
	return &blastService{store: store, regRepo: regRepo, emailSvc: emailSvc, logger: logger}
}

func (s *blastService) SendEventBlast(ctx context.Context, eventID, callerAddress, subject, message string) (int, []string, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return 0, nil, fmt.Errorf("%w: subject and message are required", domain.ErrInvalidInput)
	}
	ev, ok := s.store.Get(eventID)
	if !ok {
		return 0, nil, domain.ErrNotFound
	}
	if callerAddress == "" || callerAddress != ev.CreatorAddress {
		return 0, nil, domain.ErrForbidden
	}

	regs, err := s.regRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return 0, nil, fmt.Errorf("list registrations: %w", err)
	}

	sent := 0
	failed := []string{}
	for _, reg := range regs {
		if reg.Email == "" {
			continue
		}
		data := &domain.BlastEmailData{
			Email:      reg.Email,
			EventTitle: ev.Title,
			Subject:    subject,
			Message:    message,
		}
		if err := s.emailSvc.SendBlast(ctx, data); err != nil {
			s.logger.Warn("blast email failed", "event_id", eventID, "email", reg.Email, "err", err)
			failed = append(failed, reg.Email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
