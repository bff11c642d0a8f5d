package testutil

import (
	"testing"

	"github.com/kendall-kelly/otica-api/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateLensType inserts a lens type with a fixed id
func CreateLensType(t *testing.T, db *gorm.DB, id, name string, price int64, active bool) models.LensType {
	t.Helper()

	lens := models.LensType{
		ID:          id,
		Name:        name,
		Description: name + " lens",
		BasePrice:   decimal.NewFromInt(price),
		IsActive:    active,
	}
	if err := db.Create(&lens).Error; err != nil {
		t.Fatalf("failed to create lens type: %v", err)
	}
	return lens
}

// SeedCatalog inserts the lens types most tests price against
func SeedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	CreateLensType(t, db, "mono-1", "Lente Monofocal", 150, true)
	CreateLensType(t, db, "bi-2", "Lente Bifocal", 250, true)
	CreateLensType(t, db, "multi-3", "Lente Multifocal/Progressiva", 350, true)
	CreateLensType(t, db, "old-9", "Lente Descontinuada", 90, false)
}

// CreateCustomerUser inserts a CUSTOMER user with a customer profile
func CreateCustomerUser(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()

	user := models.User{
		Email:    email,
		Password: hash(t, password),
		Name:     "Cliente Teste",
		Role:     models.RoleCustomer,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create customer user: %v", err)
	}

	customer := models.Customer{
		UserID:  user.ID,
		Phone:   "(11) 99999-9999",
		Address: "Rua Teste, 123",
		CEP:     "01234-567",
		City:    "São Paulo",
		State:   "SP",
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	user.Customer = &customer
	return user
}

// CreateAdminUser inserts an ADMIN user with an admin profile
func CreateAdminUser(t *testing.T, db *gorm.DB, email, password string) models.User {
	t.Helper()

	user := models.User{
		Email:    email,
		Password: hash(t, password),
		Name:     "Administrador",
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create admin user: %v", err)
	}

	admin := models.Admin{UserID: user.ID}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	user.Admin = &admin
	return user
}

// CreateOrder inserts a PENDING order with one item per lens and an ORDER_PLACED tracking row
func CreateOrder(t *testing.T, db *gorm.DB, customerID string, lenses ...models.LensType) models.Order {
	t.Helper()

	total := decimal.Zero
	var items []models.OrderItem
	for _, lens := range lenses {
		total = total.Add(lens.BasePrice)
		items = append(items, models.OrderItem{LensTypeID: lens.ID, Quantity: 1, Price: lens.BasePrice})
	}

	order := models.Order{
		CustomerID:  customerID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
		Items:       items,
		Tracking: []models.Tracking{{
			Status:      models.TrackingOrderPlaced,
			Description: models.StatusDescription(models.OrderStatusPending),
		}},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return order
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(h)
}
