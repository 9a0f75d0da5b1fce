package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"apploto/domain/entities"
	"apploto/domain/interfaces"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token has expired")
	ErrWrongTokenType   = errors.New("wrong token type")
	ErrMalformedToken   = errors.New("malformed token")
)

// lotteryClaims is the signed payload of access and refresh tokens
type lotteryClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
	Type string `json:"typ"`
}

// JWTProvider signs and parses HS256 tokens
type JWTProvider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clockwork.Clock
}

// NewJWTProvider creates a token issuer with the given secret and lifetimes
func NewJWTProvider(secret string, accessTTL, refreshTTL time.Duration, clock clockwork.Clock) *JWTProvider {
	return &JWTProvider{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

var _ interfaces.TokenIssuer = (*JWTProvider)(nil)

// Issue creates a signed token for the user
func (p *JWTProvider) Issue(userID int64, role entities.Role, tokenType entities.TokenType) (string, *interfaces.TokenClaims, error) {
	ttl := p.accessTTL
	if tokenType == entities.TokenTypeRefresh {
		ttl = p.refreshTTL
	}

	now := p.clock.Now()
	claims := &lotteryClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: string(role),
		Type: string(tokenType),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &interfaces.TokenClaims{
		JTI:       claims.ID,
		UserID:    userID,
		Role:      role,
		Type:      tokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse validates a token and checks it is of the expected type
func (p *JWTProvider) Parse(tokenString string, tokenType entities.TokenType) (*interfaces.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &lotteryClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	claims, ok := token.Claims.(*lotteryClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformedToken
	}
	if entities.TokenType(claims.Type) != tokenType {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrWrongTokenType, tokenType, claims.Type)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrMalformedToken)
	}
	role, err := entities.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	return &interfaces.TokenClaims{
		JTI:       claims.ID,
		UserID:    userID,
		Role:      role,
		Type:      tokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
