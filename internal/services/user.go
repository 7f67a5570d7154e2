package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"web3events/internal/domain"
)

const fnUpsertProfile = "upsert_profile"

type profileService struct {
	profileRepo domain.ProfileRepository
	gateway     domain.LedgerGateway
	logger      *slog.Logger
}

// NewProfileService creates a ProfileService. Profiles are persisted locally
// and mirrored to the ledger as a profile object best effort: a failed mirror
// never fails the local operation.
func NewProfileService(profileRepo domain.ProfileRepository, gateway domain.LedgerGateway, logger *slog.Logger) domain.ProfileService {
	return &profileService{profileRepo: profileRepo, gateway: gateway, logger: logger}
}

func (s *profileService) UpsertProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if profile.WalletAddress == "" && profile.Email == "" {
		return nil, fmt.Errorf("%w: wallet address or email required", domain.ErrInvalidInput)
	}

	var existing *domain.Profile
	var err error
	if profile.WalletAddress != "" {
		existing, err = s.profileRepo.GetByWalletAddress(ctx, profile.WalletAddress)
	} else {
		existing, err = s.profileRepo.GetByEmail(ctx, profile.Email)
	}
	switch {
	case err == nil:
		existing.Name = firstNonEmpty(profile.Name, existing.Name)
		existing.AvatarURL = firstNonEmpty(profile.AvatarURL, existing.AvatarURL)
		existing.TwitterHandle = firstNonEmpty(profile.TwitterHandle, existing.TwitterHandle)
		existing.TelegramHandle = firstNonEmpty(profile.TelegramHandle, existing.TelegramHandle)
		if existing.Email == "" {
			existing.Email = profile.Email
		}
		if err := s.profileRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		profile = existing
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now()
		profile.CreatedAt = now
		profile.UpdatedAt = now
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("get profile: %w", err)
	}

	s.mirrorToLedger(ctx, profile)
	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, walletAddress string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByWalletAddress(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, walletAddress string, name, avatarURL, twitter, telegram *string) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByWalletAddress(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		profile.Name = *name
	}
	if avatarURL != nil {
		profile.AvatarURL = *avatarURL
	}
	if twitter != nil {
		profile.TwitterHandle = *twitter
	}
	if telegram != nil {
		profile.TelegramHandle = *telegram
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.mirrorToLedger(ctx, profile)
	return profile, nil
}

// mirrorToLedger pushes the profile to the on-chain profile object. Failures
// are logged only.
func (s *profileService) mirrorToLedger(ctx context.Context, profile *domain.Profile) {
	if profile.WalletAddress == "" {
		return
	}
	result, err := s.gateway.ExecuteTransaction(ctx, &domain.TransactionRequest{
		Sender:   profile.WalletAddress,
		Function: fnUpsertProfile,
		Args:     []any{profile.Name, profile.AvatarURL, profile.TwitterHandle, profile.TelegramHandle},
	})
	if err != nil {
		s.logger.Warn("profile ledger mirror failed", "address", profile.WalletAddress, "err", err)
		return
	}
	if !result.Succeeded() {
		s.logger.Warn("profile ledger mirror rejected", "address", profile.WalletAddress, "status", result.Status)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
