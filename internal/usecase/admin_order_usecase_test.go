package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"
	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// AdminTxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type AdminTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *AdminTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type AdminTxReposMock struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	stocks      repo.StockRepository
	allocations repo.AllocationRepository
	auditLogs   repo.AuditLogRepository

	// AdminOrderUsecase では使わないが TxRepos interface を満たすために保持
	products   repo.ProductRepository
	categories repo.CategoryRepository
	warehouses repo.WarehouseRepository
	users      repo.UserRepository
}

func (r *AdminTxReposMock) Orders() repo.OrderRepository           { return r.orders }
func (r *AdminTxReposMock) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *AdminTxReposMock) Stocks() repo.StockRepository           { return r.stocks }
func (r *AdminTxReposMock) Allocations() repo.AllocationRepository { return r.allocations }
func (r *AdminTxReposMock) AuditLogs() repo.AuditLogRepository     { return r.auditLogs }
func (r *AdminTxReposMock) Products() repo.ProductRepository       { return r.products }
func (r *AdminTxReposMock) Categories() repo.CategoryRepository    { return r.categories }
func (r *AdminTxReposMock) Warehouses() repo.WarehouseRepository   { return r.warehouses }
func (r *AdminTxReposMock) Users() repo.UserRepository             { return r.users }

// =====================
// Repository mocks (Admin向け：衝突回避)
// =====================

type AdminOrderRepoMock struct{ mock.Mock }

func (m *AdminOrderRepoMock) GetOrCreateDraft(ctx context.Context, userID int64, contact model.Contact) (model.Order, bool, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) FindDraftByUserID(ctx context.Context, userID int64) (model.Order, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *AdminOrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *AdminOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *AdminOrderRepoMock) UpdateContact(ctx context.Context, orderID int64, contact model.Contact, note string) error {
	panic("not used in AdminOrderUsecase tests")
}

type AdminOrderItemRepoMock struct{ mock.Mock }

func (m *AdminOrderItemRepoMock) AddOrIncrement(ctx context.Context, orderID int64, productID int64, qty int64, price decimal.Decimal) (model.OrderItem, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *AdminOrderItemRepoMock) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderItemRepoMock) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderItemRepoMock) DeleteByID(ctx context.Context, itemID int64) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminOrderItemRepoMock) IsInDraftOf(ctx context.Context, itemID int64, userID int64) (bool, error) {
	panic("not used in AdminOrderUsecase tests")
}

type AdminStockRepoMock struct{ mock.Mock }

func (m *AdminStockRepoMock) GetOrCreate(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) Find(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) FindByIDForUpdate(ctx context.Context, stockID int64) (model.Stock, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) ListByProduct(ctx context.Context, productID int64) ([]model.Stock, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) ListByProductForUpdate(ctx context.Context, productID int64) ([]model.Stock, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) SetQuantity(ctx context.Context, stockID int64, quantity int64) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) Reserve(ctx context.Context, stockID int64, qty int64) (bool, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) Release(ctx context.Context, stockID int64, qty int64) error {
	args := m.Called(ctx, stockID, qty)
	return args.Error(0)
}

func (m *AdminStockRepoMock) Consume(ctx context.Context, stockID int64, qty int64) error {
	args := m.Called(ctx, stockID, qty)
	return args.Error(0)
}

func (m *AdminStockRepoMock) TotalAvailable(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) ListByProducts(ctx context.Context, productIDs []int64) ([]model.Stock, error) {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminStockRepoMock) CreateMovement(ctx context.Context, mv model.StockMovement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *AdminStockRepoMock) ListMovements(ctx context.Context, productID int64, limit int) ([]model.StockMovement, error) {
	panic("not used in AdminOrderUsecase tests")
}

type AdminAllocationRepoMock struct{ mock.Mock }

func (m *AdminAllocationRepoMock) CreateBulk(ctx context.Context, allocs []model.OrderAllocation) error {
	panic("not used in AdminOrderUsecase tests")
}

func (m *AdminAllocationRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderAllocation, error) {
	args := m.Called(ctx, orderID)
	allocs, _ := args.Get(0).([]model.OrderAllocation)
	return allocs, args.Error(1)
}

type AdminAuditRepoMock struct{ mock.Mock }

func (m *AdminAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AdminAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in AdminOrderUsecase tests")
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func auditMatches(actor int64, orderID int64, before, after string) func(model.AuditLog) bool {
	return func(a model.AuditLog) bool {
		// CreatedAt は now なので見ない
		return a.ActorUserID != nil && *a.ActorUserID == actor &&
			a.Action == model.AuditActionUpdateOrderStatus &&
			a.ResourceType == model.AuditResourceOrder &&
			a.ResourceID == orderID &&
			a.BeforeJSON == before &&
			a.AfterJSON == after
	}
}

// =====================
// List tests
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	tx := new(AdminTxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	out, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(out.Items))
	assertErrContains(t, err, "invalid page")
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	tx := new(AdminTxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	out, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 0})
	assert.Equal(t, 0, len(out.Items))
	assertErrContains(t, err, "invalid limit")
}

func TestAdminOrderUsecase_List_InvalidStatus(t *testing.T) {
	tx := new(AdminTxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "PENDING"})
	assertErrContains(t, err, "invalid status")
	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestAdminOrderUsecase_List_Success_CallsItemsPerOrder(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)

	tx.Repos = &AdminTxReposMock{
		orders:     ordersRepo,
		orderItems: itemsRepo,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	// 大文字でも受け付けて正規化する
	want := repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "paid"}

	orders := []model.Order{
		{ID: 10, Status: model.OrderStatusPaid},
		{ID: 11, Status: model.OrderStatusPaid},
	}

	ordersRepo.On("ListAdmin", mock.Anything, want).Return(orders, int64(2), nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ID: 1, OrderID: 10, ProductID: 100, Price: decimal.RequireFromString("2.50"), Quantity: 2},
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	out, err := uc.List(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 20, Status: "PAID"})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Items))
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, "5.00", out.Items[0].TotalCost)
	assert.Equal(t, "0.00", out.Items[1].TotalCost)

	tx.AssertExpectations(t)
	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
}

// =====================
// UpdateStatus tests
// =====================

func TestAdminOrderUsecase_UpdateStatus_UnauthorizedActor(t *testing.T) {
	tx := new(AdminTxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(context.Background(), 0, 1, usecase.AdminUpdateOrderStatusInput{Status: "paid"})
	assertErrContains(t, err, "unauthorized")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidOrderID(t *testing.T) {
	tx := new(AdminTxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(context.Background(), 1, 0, usecase.AdminUpdateOrderStatusInput{Status: "paid"})
	assertErrContains(t, err, "invalid id")
}

func TestAdminOrderUsecase_UpdateStatus_InvalidStatus(t *testing.T) {
	tx := new(AdminTxManagerMock)
	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(context.Background(), 1, 1, usecase.AdminUpdateOrderStatusInput{Status: "XXX"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminOrderUsecase_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)

	tx.Repos = &AdminTxReposMock{orders: ordersRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(99)
	ordersRepo.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(ctx, 1, orderID, usecase.AdminUpdateOrderStatusInput{Status: "paid"})
	assertErrContains(t, err, "not found")

	ordersRepo.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_SameStatus_NoOp(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)
	audit := new(AdminAuditRepoMock)
	pub := &recordingPublisher{}

	tx.Repos = &AdminTxReposMock{orders: ordersRepo, orderItems: itemsRepo, auditLogs: audit}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(1)
	ordersRepo.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{
		ID:     orderID,
		Status: model.OrderStatusPaid,
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderItem{}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, pub)

	out, err := uc.UpdateStatus(ctx, 1, orderID, usecase.AdminUpdateOrderStatusInput{Status: "paid"})
	assert.NoError(t, err)
	assert.Equal(t, "paid", out.Status)

	ordersRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, pub.types())
}

func TestAdminOrderUsecase_UpdateStatus_CannotChangeShipped(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)

	tx.Repos = &AdminTxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByIDForUpdate", mock.Anything, int64(1)).Return(model.Order{
		ID:     1,
		Status: model.OrderStatusShipped,
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(ctx, 1, 1, usecase.AdminUpdateOrderStatusInput{Status: "canceled"})
	assertErrContains(t, err, "cannot change order from shipped to canceled")
}

// cancel: confirmed -> canceled のとき引当を戻す + audit
func TestAdminOrderUsecase_UpdateStatus_Cancel_ReleasesAllocations_And_Audits(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)
	stockRepo := new(AdminStockRepoMock)
	allocRepo := new(AdminAllocationRepoMock)
	audit := new(AdminAuditRepoMock)
	pub := &recordingPublisher{}

	tx.Repos = &AdminTxReposMock{
		orders:      ordersRepo,
		orderItems:  itemsRepo,
		stocks:      stockRepo,
		allocations: allocRepo,
		auditLogs:   audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	adminID := int64(999)
	orderID := int64(50)

	ordersRepo.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{
		ID:     orderID,
		UserID: 7,
		Status: model.OrderStatusConfirmed,
	}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderItem{
		{ID: 1, OrderID: orderID, ProductID: 100, Price: decimal.RequireFromString("1.00"), Quantity: 3},
	}, nil)

	allocRepo.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderAllocation{
		{OrderID: orderID, StockID: 5, WarehouseID: 1, ProductID: 100, Quantity: 2},
		{OrderID: orderID, StockID: 6, WarehouseID: 2, ProductID: 100, Quantity: 1},
	}, nil)
	stockRepo.On("Release", mock.Anything, int64(5), int64(2)).Return(nil)
	stockRepo.On("Release", mock.Anything, int64(6), int64(1)).Return(nil)
	stockRepo.On("CreateMovement", mock.Anything, mock.MatchedBy(func(m model.StockMovement) bool {
		return m.Kind == model.StockMovementRelease && m.Delta < 0 && m.OrderID != nil && *m.OrderID == orderID
	})).Return(nil).Twice()

	ordersRepo.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusConfirmed, model.OrderStatusCanceled).Return(nil)

	audit.On("Create", mock.Anything, mock.MatchedBy(
		auditMatches(adminID, orderID, `{"status":"confirmed"}`, `{"status":"canceled"}`),
	)).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, pub)

	out, err := uc.UpdateStatus(ctx, adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "CANCELED"})
	assert.NoError(t, err)
	assert.Equal(t, "canceled", out.Status)
	assert.Equal(t, []model.EventType{model.EventOrderCanceled}, pub.types())

	ordersRepo.AssertExpectations(t)
	itemsRepo.AssertExpectations(t)
	stockRepo.AssertExpectations(t)
	allocRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// new -> canceled は引当が無いので在庫に触らない
func TestAdminOrderUsecase_UpdateStatus_CancelDraft_NoStock(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)
	stockRepo := new(AdminStockRepoMock)
	allocRepo := new(AdminAllocationRepoMock)
	audit := new(AdminAuditRepoMock)

	tx.Repos = &AdminTxReposMock{
		orders:      ordersRepo,
		orderItems:  itemsRepo,
		stocks:      stockRepo,
		allocations: allocRepo,
		auditLogs:   audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByIDForUpdate", mock.Anything, int64(3)).Return(model.Order{ID: 3, Status: model.OrderStatusNew}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{}, nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusNew, model.OrderStatusCanceled).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(ctx, 1, 3, usecase.AdminUpdateOrderStatusInput{Status: "canceled"})
	assert.NoError(t, err)

	allocRepo.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
	stockRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

// shipped: paid -> shipped は実在庫を減らす + audit
func TestAdminOrderUsecase_UpdateStatus_Shipped_Consumes(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)
	stockRepo := new(AdminStockRepoMock)
	allocRepo := new(AdminAllocationRepoMock)
	audit := new(AdminAuditRepoMock)

	tx.Repos = &AdminTxReposMock{
		orders:      ordersRepo,
		orderItems:  itemsRepo,
		stocks:      stockRepo,
		allocations: allocRepo,
		auditLogs:   audit,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	adminID := int64(1)
	orderID := int64(60)

	ordersRepo.On("FindByIDForUpdate", mock.Anything, orderID).Return(model.Order{ID: orderID, Status: model.OrderStatusPaid}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderItem{
		{ID: 2, OrderID: orderID, ProductID: 100, Price: decimal.RequireFromString("1.00"), Quantity: 4},
	}, nil)
	allocRepo.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderAllocation{
		{OrderID: orderID, StockID: 5, WarehouseID: 1, ProductID: 100, Quantity: 4},
	}, nil)
	stockRepo.On("Consume", mock.Anything, int64(5), int64(4)).Return(nil)
	stockRepo.On("CreateMovement", mock.Anything, mock.MatchedBy(func(m model.StockMovement) bool {
		return m.Kind == model.StockMovementConsume && m.Delta == -4
	})).Return(nil)
	ordersRepo.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusPaid, model.OrderStatusShipped).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(
		auditMatches(adminID, orderID, `{"status":"paid"}`, `{"status":"shipped"}`),
	)).Return(nil)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	out, err := uc.UpdateStatus(ctx, adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: "shipped"})
	assert.NoError(t, err)
	assert.Equal(t, "4.00", out.TotalCost)

	stockRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// 同時更新でstatusが変わっていたら409
func TestAdminOrderUsecase_UpdateStatus_ConcurrentChange(t *testing.T) {
	ctx := context.Background()

	tx := new(AdminTxManagerMock)
	ordersRepo := new(AdminOrderRepoMock)
	itemsRepo := new(AdminOrderItemRepoMock)

	tx.Repos = &AdminTxReposMock{orders: ordersRepo, orderItems: itemsRepo}
	tx.On("WithinTx", mock.Anything).Return(nil)

	ordersRepo.On("FindByIDForUpdate", mock.Anything, int64(8)).Return(model.Order{ID: 8, Status: model.OrderStatusConfirmed}, nil)
	itemsRepo.On("ListByOrderID", mock.Anything, int64(8)).Return([]model.OrderItem{}, nil)
	ordersRepo.On("UpdateStatus", mock.Anything, int64(8), model.OrderStatusConfirmed, model.OrderStatusPaid).Return(repo.ErrConflict)

	uc := usecase.NewAdminOrderUsecase(tx, nil)

	_, err := uc.UpdateStatus(ctx, 1, 8, usecase.AdminUpdateOrderStatusInput{Status: "paid"})
	assertErrContains(t, err, "409")
}
