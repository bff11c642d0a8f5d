package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kendall-kelly/otica-api/config"
	"github.com/kendall-kelly/otica-api/models"
)

// Token audiences keep access and refresh tokens from being swapped
const (
	AccessAudience  = "otica-web"
	RefreshAudience = "otica-refresh"
)

// AccessClaims are the custom claims carried by access tokens
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate satisfies validator.CustomClaims
func (c *AccessClaims) Validate(ctx context.Context) error {
	if c.Role != models.RoleAdmin && c.Role != models.RoleCustomer {
		return errors.New("unknown role claim")
	}
	return nil
}

// Identity is the authenticated caller extracted from a verified access token
type Identity struct {
	UserID  string
	Email   string
	Role    string
	TokenID string
}

// IssuedToken is a signed token together with its jti and expiry
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

type accessTokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs tokens with golang-jwt and verifies them with the auth0 validator
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration

	accessValidator  *validator.Validator
	refreshValidator *validator.Validator
}

// NewTokenService builds a token service from the JWT settings in cfg
func NewTokenService(cfg *config.Config) (*TokenService, error) {
	s := &TokenService{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		issuer:        cfg.JWTIssuer,
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}

	var err error
	s.accessValidator, err = validator.New(
		func(context.Context) (interface{}, error) { return s.accessSecret, nil },
		validator.HS256,
		s.issuer,
		[]string{AccessAudience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &AccessClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up access token validator: %w", err)
	}

	s.refreshValidator, err = validator.New(
		func(context.Context) (interface{}, error) { return s.refreshSecret, nil },
		validator.HS256,
		s.issuer,
		[]string{RefreshAudience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up refresh token validator: %w", err)
	}

	return s, nil
}

// AccessTTL is the lifetime of access tokens and their cookie
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL is the lifetime of refresh tokens and their cookie
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccessToken signs an access token for user
func (s *TokenService) IssueAccessToken(user *models.User) (IssuedToken, error) {
	now := time.Now()
	issued := IssuedToken{ID: uuid.NewString(), ExpiresAt: now.Add(s.accessTTL)}

	claims := accessTokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{AccessAudience},
			ID:        issued.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	issued.Token = token
	return issued, nil
}

// IssueRefreshToken signs a refresh token for userID. The jti is the RefreshSession id.
func (s *TokenService) IssueRefreshToken(userID string) (IssuedToken, error) {
	now := time.Now()
	issued := IssuedToken{ID: uuid.NewString(), ExpiresAt: now.Add(s.refreshTTL)}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{RefreshAudience},
		ID:        issued.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	issued.Token = token
	return issued, nil
}

// ValidateAccessToken has the signature jwtmiddleware expects
func (s *TokenService) ValidateAccessToken(ctx context.Context, token string) (interface{}, error) {
	return s.accessValidator.ValidateToken(ctx, token)
}

// VerifyAccessToken checks signature, issuer, audience and expiry and returns the caller identity
func (s *TokenService) VerifyAccessToken(ctx context.Context, token string) (*Identity, error) {
	raw, err := s.accessValidator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return IdentityFromClaims(raw)
}

// IdentityFromClaims converts validated access token claims into an Identity
func IdentityFromClaims(raw interface{}) (*Identity, error) {
	validated, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	custom, ok := validated.CustomClaims.(*AccessClaims)
	if !ok {
		return nil, errors.New("access token has no custom claims")
	}
	return &Identity{
		UserID:  validated.RegisteredClaims.Subject,
		Email:   custom.Email,
		Role:    custom.Role,
		TokenID: validated.RegisteredClaims.ID,
	}, nil
}

// VerifyRefreshToken returns the user id and jti of a valid refresh token
func (s *TokenService) VerifyRefreshToken(ctx context.Context, token string) (userID, tokenID string, err error) {
	raw, err := s.refreshValidator.ValidateToken(ctx, token)
	if err != nil {
		return "", "", err
	}
	validated, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return "", "", errors.New("unexpected claims type")
	}
	if validated.RegisteredClaims.Subject == "" || validated.RegisteredClaims.ID == "" {
		return "", "", errors.New("refresh token is missing sub or jti")
	}
	return validated.RegisteredClaims.Subject, validated.RegisteredClaims.ID, nil
}
