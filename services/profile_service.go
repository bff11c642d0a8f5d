package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/otica-api/models"
	"gorm.io/gorm"
)

// ProfileInput holds a profile update. Nil fields are left unchanged.
type ProfileInput struct {
	Name      string
	Phone     *string
	Address   *string
	CEP       *string
	City      *string
	State     *string
	BirthDate *time.Time
}

// ProfileService updates the signed-in user's own profile
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a profile service on db
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Update changes the user's name and, for customers, upserts the customer profile.
// Admins only get the name change so a user never holds both profiles.
func (s *ProfileService) Update(ctx context.Context, userID string, input ProfileInput) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("name", strings.TrimSpace(input.Name)).Error; err != nil {
			return err
		}
		if user.Role != models.RoleCustomer {
			return nil
		}

		var customer models.Customer
		err := tx.Where("user_id = ?", user.ID).First(&customer).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		customer.UserID = user.ID
		applyProfile(&customer, input)
		return tx.Save(&customer).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return loadUserProfile(db, userID)
}

func applyProfile(c *models.Customer, input ProfileInput) {
	if input.Phone != nil {
		c.Phone = *input.Phone
	}
	if input.Address != nil {
		c.Address = *input.Address
	}
	if input.CEP != nil {
		c.CEP = *input.CEP
	}
	if input.City != nil {
		c.City = *input.City
	}
	if input.State != nil {
		c.State = *input.State
	}
	if input.BirthDate != nil {
		c.BirthDate = input.BirthDate
	}
}
