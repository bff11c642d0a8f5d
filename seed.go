package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/otica-api/models"
	"github.com/kendall-kelly/otica-api/services"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedLens struct {
	name        string
	description string
	price       int64
}

var defaultLensTypes = []seedLens{
	{"Lente Monofocal", "Lente para correção de miopia, hipermetropia ou astigmatismo", 150},
	{"Lente Bifocal", "Lente com duas distâncias focais - longe e perto", 250},
	{"Lente Multifocal/Progressiva", "Lente progressiva para todas as distâncias", 350},
	{"Lente Transitions", "Lente fotocromática que escurece na luz solar", 200},
	{"Lente Antirreflexo", "Lente com tratamento antirreflexo para melhor visão", 100},
	{"Lente Blue Light", "Lente com filtro para luz azul de dispositivos eletrônicos", 120},
}

// seedDatabase inserts the default catalog, the admin@otica.com admin and the
// cliente@teste.com customer. Existing rows are left untouched so it can run repeatedly.
// cache may be nil; otherwise the cached catalog listing is dropped.
func seedDatabase(ctx context.Context, db *gorm.DB, cache services.CacheInterface) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db = db.WithContext(ctx)

	for _, l := range defaultLensTypes {
		lens := models.LensType{
			Name:        l.name,
			Description: l.description,
			BasePrice:   decimal.NewFromInt(l.price),
			IsActive:    true,
		}
		var existing models.LensType
		if err := db.Where("name = ?", l.name).Attrs(lens).FirstOrCreate(&existing).Error; err != nil {
			return fmt.Errorf("failed to seed lens type %q: %w", l.name, err)
		}
	}
	log.Info().Int("count", len(defaultLensTypes)).Msg("Lens types seeded")

	if err := services.NewCatalogService(db, cache, 0).Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate cached lens types")
	}

	if _, err := createAdmin(ctx, db, "Administrador", "admin@otica.com", "admin123"); err != nil && !errors.Is(err, services.ErrEmailExists) {
		return err
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "cliente@teste.com").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		hash, err := services.HashPassword("cliente123")
		if err != nil {
			return err
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			user := models.User{Email: "cliente@teste.com", Name: "Cliente Teste", Password: hash, Role: models.RoleCustomer}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&models.Customer{
				UserID:  user.ID,
				Phone:   "(11) 99999-9999",
				Address: "Rua Teste, 123",
				CEP:     "01234-567",
				City:    "São Paulo",
				State:   "SP",
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to seed test customer: %w", err)
		}
	}

	log.Info().Msg("Seed completed")
	return nil
}

// createAdmin creates an ADMIN user with its admin profile
func createAdmin(ctx context.Context, db *gorm.DB, name, email, password string) (*models.User, error) {
	email = services.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || len(password) < 6 || len(name) < 2 {
		return nil, services.NewValidationError("Invalid admin data", "name (min 2), email and password (min 6) are required")
	}

	db = db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, services.ErrEmailExists
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{Email: email, Name: name, Password: hash, Role: models.RoleAdmin}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		admin := models.Admin{UserID: user.ID}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		user.Admin = &admin
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return &user, nil
}
