package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/otica-api/metrics"
	"github.com/kendall-kelly/otica-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Session is the result of a successful sign-in, registration or rotation
type Session struct {
	User         *models.User
	AccessToken  IssuedToken
	RefreshToken IssuedToken
}

// RegisterInput holds the fields accepted by Register
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// AuthService owns credentials and refresh sessions
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
}

// NewAuthService creates an auth service on db
func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{db: db, tokens: tokens}
}

// Tokens returns the token service used to sign and verify sessions
func (s *AuthService) Tokens() *TokenService {
	return s.tokens
}

// NormalizeEmail lowercases and trims an email before lookup or storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	session, err := s.login(ctx, email, password)
	switch {
	case err == nil:
		metrics.LoginAttempts.WithLabelValues("success").Inc()
	case errors.Is(err, ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
	default:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
	}
	return session, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			compareDummyHash(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, s.db, &user)
}

// Register creates a CUSTOMER user with an empty customer profile and signs them in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := NormalizeEmail(input.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		Password: hash,
		Name:     strings.TrimSpace(input.Name),
		Role:     models.RoleCustomer,
	}

	var session *Session
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		customer := models.Customer{UserID: user.ID, Phone: input.Phone, Address: input.Address}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}
		user.Customer = &customer

		session, err = s.startSession(ctx, tx, &user)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return session, nil
}

// RotationGrace is how long a rotated refresh token is still accepted. Within it the
// token gets a new session next to its live successor.
var RotationGrace = 30 * time.Second

// Refresh exchanges a refresh token for a new pair. The old session is revoked and
// points at its replacement. Presenting a token rotated out more than RotationGrace
// ago revokes every session of the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}

	userID, tokenID, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("Refresh token rejected")
		return nil, ErrInvalidRefresh
	}

	var session *Session
	reused := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.RefreshSession
		if err := tx.Where("id = ? AND user_id = ?", tokenID, userID).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		now := time.Now()
		sibling := false
		if current.RevokedAt != nil {
			if current.ReplacedByID == nil {
				// revoked by logout or password change, not rotated
				return ErrInvalidRefresh
			}
			if now.Sub(*current.RevokedAt) > RotationGrace {
				log.Warn().Str("user_id", userID).Str("session_id", tokenID).Msg("Refresh token reuse detected, revoking all sessions")
				// commit the revocation, the caller still gets an error
				reused = true
				return revokeAllSessions(tx, userID, now)
			}

			var successor models.RefreshSession
			if err := tx.First(&successor, "id = ?", *current.ReplacedByID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidRefresh
				}
				return err
			}
			if !successor.IsLive(now) {
				return ErrInvalidRefresh
			}
			sibling = true
		} else if !current.IsLive(now) {
			return ErrInvalidRefresh
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		session, err = s.startSession(ctx, tx, &user)
		if err != nil {
			return err
		}

		if sibling {
			// the successor stays live, current keeps pointing at it
			return nil
		}

		newID := session.RefreshToken.ID
		return tx.Model(&current).Updates(map[string]interface{}{
			"revoked_at":     now,
			"replaced_by_id": newID,
		}).Error
	})

	if err == nil && reused {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		if _, ok := AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return session, nil
}

// Me loads the user with customer (and prescriptions) and admin profiles
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	return loadUserProfile(s.db.WithContext(ctx), userID)
}

func loadUserProfile(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.
		Preload("Customer").
		Preload("Customer.Prescriptions").
		Preload("Admin").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// ChangePassword replaces the password, revokes every session and returns a fresh pair
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*Session, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !CheckPassword(user.Password, currentPassword) {
		return nil, &AppError{Kind: KindValidation, Code: CodeInvalidCredentials, Message: "Current password is incorrect"}
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	var session *Session
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", hash).Error; err != nil {
			return err
		}
		if err := revokeAllSessions(tx, user.ID, time.Now()); err != nil {
			return err
		}
		session, err = s.startSession(ctx, tx, &user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to change password: %w", err)
	}
	return session, nil
}

// Logout revokes the session behind refreshToken. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	userID, tokenID, err := s.tokens.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.RefreshSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", tokenID, userID).
		Update("revoked_at", time.Now()).Error
}

// startSession issues an access and refresh token and persists the refresh session on db
func (s *AuthService) startSession(ctx context.Context, db *gorm.DB, user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	record := models.RefreshSession{ID: refresh.ID, UserID: user.ID, ExpiresAt: refresh.ExpiresAt}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to persist refresh session: %w", err)
	}

	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func revokeAllSessions(tx *gorm.DB, userID string, now time.Time) error {
	return tx.Model(&models.RefreshSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}
