package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kendall-kelly/otica-api/metrics"
	"github.com/kendall-kelly/otica-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Listing defaults
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// OrderListFilter narrows an order listing
type OrderListFilter struct {
	Status     string
	CustomerID string
	Page       int
	Limit      int
}

// Pagination describes one page of a listing
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// OrderList is a page of orders
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// CreateOrderInput holds the fields accepted by Create
type CreateOrderInput struct {
	CustomerID  string
	LensTypeIDs []string
	Notes       string
}

// OrderService reads and changes orders on behalf of an authenticated user
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates an order service on db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// List returns a page of orders. Admins see every order; customers only their own.
func (s *OrderService) List(ctx context.Context, userID string, filter OrderListFilter) (*OrderList, error) {
	actor, err := loadActor(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	result := &OrderList{Orders: []models.Order{}, Pagination: Pagination{Page: filter.Page, Limit: filter.Limit}}

	if filter.Status != "" && !models.IsValidOrderStatus(filter.Status) {
		return nil, &AppError{Kind: KindValidation, Code: CodeInvalidStatus, Message: "Invalid order status", Details: []string{"status must be one of " + strings.Join(models.OrderStatuses, ", ")}}
	}

	if !actor.IsAdmin() {
		if actor.Customer == nil {
			return result, nil
		}
		filter.CustomerID = actor.Customer.ID
	}

	filtered := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != "" {
			db = db.Where("customer_id = ?", filter.CustomerID)
		}
		return db
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).Scopes(filtered).Count(&result.Pagination.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	result.Pagination.Pages = int(math.Ceil(float64(result.Pagination.Total) / float64(filter.Limit)))

	err = preloadOrderGraph(db.Scopes(filtered)).
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&result.Orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return result, nil
}

// Get returns the full order graph if the caller owns the order or is an admin
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}

	order, err := loadOrderGraph(db, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && (actor.Customer == nil || actor.Customer.ID != order.CustomerID) {
		return nil, NewForbiddenError("You do not have access to this order")
	}
	return order, nil
}

// Create places an order for an existing customer. Admins may order for anyone,
// customers only for themselves.
func (s *OrderService) Create(ctx context.Context, userID string, input CreateOrderInput) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && (actor.Customer == nil || actor.Customer.ID != input.CustomerID) {
		return nil, NewForbiddenError("Customers can only create orders for themselves")
	}

	var customer models.Customer
	if err := db.First(&customer, "id = ?", input.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(CodeCustomerNotFound, "Customer not found")
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	lenses, err := resolveLenses(db, input.LensTypeIDs)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		order, err = createOrderRecords(tx, newOrder{
			CustomerID:          customer.ID,
			Lenses:              lenses,
			Notes:               strings.TrimSpace(input.Notes),
			TrackingDescription: models.StatusDescription(models.OrderStatusPending),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	loaded, err := loadOrderGraph(db, order.ID)
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues("api").Inc()
	publishBestEffort(ctx, OrderEvent{
		Type:        EventOrderCreated,
		OrderID:     loaded.ID,
		CustomerID:  loaded.CustomerID,
		Status:      loaded.Status,
		TotalAmount: loaded.TotalAmount.StringFixed(2),
		Source:      "api",
	})
	return loaded, nil
}

// UpdateStatus moves an order to status and appends one tracking row. Only admins may do this.
func (s *OrderService) UpdateStatus(ctx context.Context, userID, orderID, status string) (*models.Order, error) {
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}

	if !models.IsValidOrderStatus(status) {
		return nil, &AppError{Kind: KindValidation, Code: CodeInvalidStatus, Message: "Invalid order status", Details: []string{"status must be one of " + strings.Join(models.OrderStatuses, ", ")}}
	}

	var previous string
	err = db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		previous = order.Status

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return err
		}

		return tx.Create(&models.Tracking{
			OrderID:     order.ID,
			Status:      models.TrackingStatusFor(status),
			Description: models.StatusDescription(status),
		}).Error
	})
	if err != nil {
		if _, ok := AsAppError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	loaded, err := loadOrderGraph(db, orderID)
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(status).Inc()
	publishBestEffort(ctx, OrderEvent{
		Type:           EventOrderStatusChanged,
		OrderID:        loaded.ID,
		CustomerID:     loaded.CustomerID,
		Status:         status,
		PreviousStatus: previous,
		TotalAmount:    loaded.TotalAmount.StringFixed(2),
	})
	return loaded, nil
}

type newOrder struct {
	CustomerID          string
	Lenses              []models.LensType
	Notes               string
	TrackingDescription string
	Attachments         []models.OrderAttachment
}

// createOrderRecords writes the order, its items, the ORDER_PLACED tracking row and
// attachments on tx. The total is the sum of the captured lens prices.
func createOrderRecords(tx *gorm.DB, in newOrder) (*models.Order, error) {
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Lenses))
	for _, lens := range in.Lenses {
		total = total.Add(lens.BasePrice)
		items = append(items, models.OrderItem{LensTypeID: lens.ID, Quantity: 1, Price: lens.BasePrice})
	}

	order := models.Order{
		CustomerID:  in.CustomerID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
		Notes:       in.Notes,
	}
	if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		return nil, err
	}

	tracking := models.Tracking{
		OrderID:     order.ID,
		Status:      models.TrackingOrderPlaced,
		Description: in.TrackingDescription,
	}
	if err := tx.Create(&tracking).Error; err != nil {
		return nil, err
	}

	if len(in.Attachments) > 0 {
		for i := range in.Attachments {
			in.Attachments[i].OrderID = order.ID
		}
		if err := tx.Create(&in.Attachments).Error; err != nil {
			return nil, err
		}
	}

	return &order, nil
}

// resolveLenses loads the active lens types for ids or fails listing the missing ones
func resolveLenses(db *gorm.DB, ids []string) ([]models.LensType, error) {
	lenses, missing, err := FindActiveByIDs(db, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &AppError{
			Kind:    KindValidation,
			Code:    CodeLensTypeNotFound,
			Message: "One or more lens types were not found",
			Details: []string{"lens types not found: " + strings.Join(missing, ", ")},
		}
	}
	if len(lenses) == 0 {
		return nil, NewValidationError("Invalid request", "select at least one lens type")
	}
	return lenses, nil
}

func preloadOrderGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Customer.User").
		Preload("Items").
		Preload("Items.LensType").
		Preload("Tracking", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Attachments")
}

func loadOrderGraph(db *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	if err := preloadOrderGraph(db).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// loadActor loads the caller with both profiles so role checks use the database, not the token
func loadActor(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	if err := db.Preload("Customer").Preload("Admin").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &AppError{Kind: KindUnauthenticated, Code: CodeUnauthorized, Message: "User not found"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
