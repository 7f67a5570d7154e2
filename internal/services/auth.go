package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"web3events/internal/domain"
)

const (
	loginCodeDigits = 6
	loginCodeTTL    = 10 * time.Minute
)

var (
	emailRegexp   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	addressRegexp = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)
)

type authService struct {
	profileRepo   domain.ProfileRepository
	loginCodeRepo domain.LoginCodeRepository
	hasher        domain.CodeHasher
	issuer        domain.TokenIssuer
	emailSvc      domain.EmailService
	tokenExpiry   time.Duration
}

// NewAuthService creates an AuthService. Wallet signature verification happens
// in the wallet provider before the address reaches this service; here the
// address is only validated for shape and exchanged for a session token.
func NewAuthService(
	profileRepo domain.ProfileRepository,
	loginCodeRepo domain.LoginCodeRepository,
	hasher domain.CodeHasher,
	issuer domain.TokenIssuer,
	emailSvc domain.EmailService,
	tokenExpiry time.Duration,
) domain.AuthService {
	return &authService{
		profileRepo:   profileRepo,
		loginCodeRepo: loginCodeRepo,
		hasher:        hasher,
		issuer:        issuer,
		emailSvc:      emailSvc,
		tokenExpiry:   tokenExpiry,
	}
}

func (s *authService) WalletLogin(ctx context.Context, address string) (string, error) {
	address = strings.TrimSpace(address)
	if !addressRegexp.MatchString(address) {
		return "", fmt.Errorf("%w: invalid wallet address", domain.ErrInvalidInput)
	}

	identity := domain.Identity{Address: address}
	profile, err := s.profileRepo.GetByWalletAddress(ctx, address)
	switch {
	case err == nil:
		identity.Email = profile.Email
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now()
		if err := s.profileRepo.Create(ctx, domain.NewProfile(address, "", "", now, now)); err != nil && !errors.Is(err, domain.ErrConflict) {
			return "", fmt.Errorf("create profile: %w", err)
		}
	default:
		return "", fmt.Errorf("get profile: %w", err)
	}

	token, err := s.issuer.Issue(identity, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *authService) RequestLoginCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	code, err := generateLoginCode()
	if err != nil {
		return fmt.Errorf("generate login code: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return fmt.Errorf("hash login code: %w", err)
	}
	if err := s.loginCodeRepo.Create(ctx, email, hash, time.Now().Add(loginCodeTTL)); err != nil {
		return fmt.Errorf("store login code: %w", err)
	}

	return s.emailSvc.SendLoginCode(ctx, &domain.LoginCodeEmailData{
		Email:            email,
		Code:             code,
		ExpiresInMinutes: int(loginCodeTTL.Minutes()),
	})
}

func (s *authService) EmailLogin(ctx context.Context, email, code string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", fmt.Errorf("%w: email and code are required", domain.ErrInvalidInput)
	}

	pending, err := s.loginCodeRepo.ListActiveByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("load login codes: %w", err)
	}
	var matched *domain.LoginCode
	for _, c := range pending {
		if s.hasher.Compare(c.CodeHash, code) == nil {
			matched = c
			break
		}
	}
	if matched == nil {
		return "", fmt.Errorf("%w: invalid or expired code", domain.ErrForbidden)
	}
	if err := s.loginCodeRepo.Delete(ctx, matched.ID); err != nil {
		return "", fmt.Errorf("consume login code: %w", err)
	}

	identity := domain.Identity{Email: email}
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		identity.Address = profile.WalletAddress
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now()
		if err := s.profileRepo.Create(ctx, domain.NewProfile("", email, "", now, now)); err != nil && !errors.Is(err, domain.ErrConflict) {
			return "", fmt.Errorf("create profile: %w", err)
		}
	default:
		return "", fmt.Errorf("get profile: %w", err)
	}

	token, err := s.issuer.Issue(identity, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func generateLoginCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < loginCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", loginCodeDigits, n), nil
}
