package services

import (
	"context"
	"fmt"

	"apploto/domain/entities"
	"apploto/domain/interfaces"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// authService implements login and token revocation
type authService struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenBlockRepository
	hasher    interfaces.PasswordHasher
	issuer    interfaces.TokenIssuer
	clock     clockwork.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo interfaces.UserRepository,
	tokenRepo interfaces.TokenBlockRepository,
	hasher interfaces.PasswordHasher,
	issuer interfaces.TokenIssuer,
	clock clockwork.Clock,
) interfaces.AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		hasher:    hasher,
		issuer:    issuer,
		clock:     clock,
	}
}

// Login authenticates a USER or ADMIN
func (s *authService) Login(ctx context.Context, email, password string) (*interfaces.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.CanLogin() {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(user)
}

// AdminLogin authenticates an ADMIN only
func (s *authService) AdminLogin(ctx context.Context, email, password string) (*interfaces.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || s.hasher.Compare(user.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsAdmin() {
		log.WithField("user_id", user.ID).Warn("Non-admin attempted admin login")
		return nil, ErrForbidden
	}

	return s.issuePair(user)
}

func (s *authService) issuePair(user *entities.User) (*interfaces.TokenPair, error) {
	access, _, err := s.issuer.Issue(user.ID, user.Role, entities.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, _, err := s.issuer.Issue(user.ID, user.Role, entities.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User logged in")

	return &interfaces.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         user.Role,
	}, nil
}

// Refresh issues a new access token from a valid refresh token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.verify(ctx, refreshToken, entities.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.CanLogin() {
		return "", ErrInvalidToken
	}

	access, _, err := s.issuer.Issue(user.ID, user.Role, entities.TokenTypeAccess)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return access, nil
}

// Authenticate parses an access token and rejects revoked ones
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*interfaces.TokenClaims, error) {
	return s.verify(ctx, accessToken, entities.TokenTypeAccess)
}

func (s *authService) verify(ctx context.Context, token string, tokenType entities.TokenType) (*interfaces.TokenClaims, error) {
	claims, err := s.issuer.Parse(token, tokenType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke adds a token to the block list. Revoking twice is a no-op.
func (s *authService) Revoke(ctx context.Context, token string, tokenType entities.TokenType) error {
	claims, err := s.issuer.Parse(token, tokenType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil
	}

	block := &entities.TokenBlock{
		JTI:       claims.JTI,
		TokenType: tokenType,
		UserID:    claims.UserID,
		RevokedAt: s.clock.Now().UTC(),
		ExpiresAt: claims.ExpiresAt,
	}
	if err := s.tokenRepo.Create(ctx, block); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":    claims.UserID,
		"token_type": tokenType,
	}).Info("Token revoked")
	return nil
}

// Logout revokes both tokens of a session. The refresh token is optional.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.Revoke(ctx, accessToken, entities.TokenTypeAccess); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	return s.Revoke(ctx, refreshToken, entities.TokenTypeRefresh)
}

// PurgeExpiredTokens removes block list rows that can no longer matter
func (s *authService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.PurgeExpired(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	return n, nil
}
