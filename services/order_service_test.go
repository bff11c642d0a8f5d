package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/otica-api/models"
	"github.com/kendall-kelly/otica-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db       *gorm.DB
	svc      *OrderService
	admin    models.User
	customer models.User
	other    models.User
	mono     models.LensType
	multi    models.LensType
}

func setupOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db, _ := setupTest(t)
	f := &orderFixture{
		db:       db,
		svc:      NewOrderService(db),
		admin:    testutil.CreateAdminUser(t, db, "admin@otica.com", "admin123"),
		customer: testutil.CreateCustomerUser(t, db, "cliente@teste.com", "cliente123"),
		other:    testutil.CreateCustomerUser(t, db, "outro@teste.com", "outro123"),
		mono:     testutil.CreateLensType(t, db, "mono-1", "Lente Monofocal", 150, true),
		multi:    testutil.CreateLensType(t, db, "multi-3", "Lente Multifocal", 350, true),
	}
	return f
}

func TestCreateOrderForSelf(t *testing.T) {
	f := setupOrderFixture(t)
	events := NewMockEventPublisher()
	events.SetAsMockForTesting()

	order, err := f.svc.Create(context.Background(), f.customer.ID, CreateOrderInput{
		CustomerID:  f.customer.Customer.ID,
		LensTypeIDs: []string{"mono-1", "multi-3"},
		Notes:       "urgente",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(500)))
	require.Len(t, order.Items, 2)
	require.Len(t, order.Tracking, 1)
	assert.Equal(t, models.TrackingOrderPlaced, order.Tracking[0].Status)
	require.NotNil(t, order.Customer)
	require.NotNil(t, order.Customer.User)
	assert.Equal(t, f.customer.Email, order.Customer.User.Email)

	require.Len(t, events.Events(), 1)
	assert.Equal(t, EventOrderCreated, events.Events()[0].Type)
	assert.Equal(t, "500.00", events.Events()[0].TotalAmount)
}

func TestCreateOrderPermissions(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customer.ID, CreateOrderInput{CustomerID: f.other.Customer.ID, LensTypeIDs: []string{"mono-1"}})
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindForbidden, appErr.Kind)

	order, err := f.svc.Create(ctx, f.admin.ID, CreateOrderInput{CustomerID: f.other.Customer.ID, LensTypeIDs: []string{"mono-1"}})
	require.NoError(t, err)
	assert.Equal(t, f.other.Customer.ID, order.CustomerID)

	_, err = f.svc.Create(ctx, f.admin.ID, CreateOrderInput{CustomerID: "missing", LensTypeIDs: []string{"mono-1"}})
	appErr, ok = AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeCustomerNotFound, appErr.Code)
}

func TestCreateOrderUnknownLens(t *testing.T) {
	f := setupOrderFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin.ID, CreateOrderInput{CustomerID: f.customer.Customer.ID, LensTypeIDs: []string{"mono-1", "ghost"}})
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details[0], "ghost")

	var orders int64
	f.db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestListOrdersScopesCustomers(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.mono)
	testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.multi)
	testutil.CreateOrder(t, f.db, f.other.Customer.ID, f.mono)

	own, err := f.svc.List(ctx, f.customer.ID, OrderListFilter{CustomerID: f.other.Customer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Pagination.Total, "customer filter is replaced by the caller's own id")
	for _, o := range own.Orders {
		assert.Equal(t, f.customer.Customer.ID, o.CustomerID)
	}

	all, err := f.svc.List(ctx, f.admin.ID, OrderListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)

	filtered, err := f.svc.List(ctx, f.admin.ID, OrderListFilter{CustomerID: f.other.Customer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), filtered.Pagination.Total)
}

func TestListOrdersPagination(t *testing.T) {
	f := setupOrderFixture(t)
	for i := 0; i < 3; i++ {
		testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.mono)
	}

	page, err := f.svc.List(context.Background(), f.admin.ID, OrderListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 3, Pages: 2}, page.Pagination)
	assert.Len(t, page.Orders, 1)

	capped, err := f.svc.List(context.Background(), f.admin.ID, OrderListFilter{Page: 0, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, capped.Pagination.Page)
	assert.Equal(t, MaxPageSize, capped.Pagination.Limit)

	_, err = f.svc.List(context.Background(), f.admin.ID, OrderListFilter{Status: "SHIPPED"})
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidStatus, appErr.Code)
}

func TestGetOrderAccess(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.mono)

	got, err := f.svc.Get(ctx, f.customer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.Get(ctx, f.admin.ID, order.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, f.other.ID, order.ID)
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindForbidden, appErr.Kind)

	_, err = f.svc.Get(ctx, f.admin.ID, "missing")
	assert.Equal(t, ErrOrderNotFound, err)
}

func TestUpdateStatusAppendsTracking(t *testing.T) {
	f := setupOrderFixture(t)
	events := NewMockEventPublisher()
	events.SetAsMockForTesting()
	order := testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.mono)

	var before []models.Tracking
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Find(&before).Error)
	require.Len(t, before, 1)

	updated, err := f.svc.UpdateStatus(context.Background(), f.admin.ID, order.ID, models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)

	var after []models.Tracking
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&after).Error)
	require.Len(t, after, 2)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[0].Status, after[0].Status)
	assert.Equal(t, before[0].Description, after[0].Description)
	assert.Equal(t, models.TrackingConfirmed, after[1].Status)
	assert.Equal(t, "Pedido confirmado", after[1].Description)

	require.Len(t, events.Events(), 1)
	assert.Equal(t, EventOrderStatusChanged, events.Events()[0].Type)
	assert.Equal(t, models.OrderStatusPending, events.Events()[0].PreviousStatus)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	f := setupOrderFixture(t)
	order := testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.mono)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.admin.ID, order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	updated, err := f.svc.UpdateStatus(ctx, f.admin.ID, order.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)
	assert.Len(t, updated.Tracking, 3)
	assert.Equal(t, models.TrackingOrderPlaced, updated.Tracking[2].Status)
}

func TestUpdateStatusErrors(t *testing.T) {
	f := setupOrderFixture(t)
	order := testutil.CreateOrder(t, f.db, f.customer.Customer.ID, f.mono)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.customer.ID, order.ID, models.OrderStatusConfirmed)
	assert.Equal(t, ErrAdminRequired, err)

	_, err = f.svc.UpdateStatus(ctx, f.admin.ID, order.ID, "SHIPPED")
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, appErr.Kind)

	_, err = f.svc.UpdateStatus(ctx, f.admin.ID, "missing", models.OrderStatusConfirmed)
	assert.Equal(t, ErrOrderNotFound, err)

	var tracking int64
	f.db.Model(&models.Tracking{}).Where("order_id = ?", order.ID).Count(&tracking)
	assert.Equal(t, int64(1), tracking)
}
