package usecase_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// =====================
// インメモリのTxRepos（在庫・注文の一連の流れを確認する用）
// =====================

type memState struct {
	seq        int64
	products   map[int64]model.Product
	categories map[int64]model.Category
	warehouses map[int64]model.Warehouse
	stocks     map[int64]model.Stock
	movements  []model.StockMovement
	orders     map[int64]model.Order
	items      map[int64]model.OrderItem
	allocs     []model.OrderAllocation
	users      map[int64]model.User
	audits     []model.AuditLog
}

func (s *memState) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *memState) clone() *memState {
	c := *s
	c.products = cloneMap(s.products)
	c.categories = cloneMap(s.categories)
	c.warehouses = cloneMap(s.warehouses)
	c.stocks = cloneMap(s.stocks)
	c.orders = cloneMap(s.orders)
	c.items = cloneMap(s.items)
	c.users = cloneMap(s.users)
	c.movements = append([]model.StockMovement(nil), s.movements...)
	c.allocs = append([]model.OrderAllocation(nil), s.allocs...)
	c.audits = append([]model.AuditLog(nil), s.audits...)
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// エラーならTx開始前の状態に戻す
type memDB struct {
	mu sync.Mutex
	st *memState
}

func newMemDB() *memDB {
	return &memDB{st: &memState{
		products:   map[int64]model.Product{},
		categories: map[int64]model.Category{},
		warehouses: map[int64]model.Warehouse{},
		stocks:     map[int64]model.Stock{},
		orders:     map[int64]model.Order{},
		items:      map[int64]model.OrderItem{},
		users:      map[int64]model.User{},
	}}
}

func (db *memDB) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.st.clone()
	if err := fn(memRepos{st: db.st}); err != nil {
		db.st = snapshot
		return err
	}
	return nil
}

var _ repo.TransactionManager = (*memDB)(nil)

type memRepos struct{ st *memState }

func (r memRepos) Products() repo.ProductRepository       { return memProducts(r) }
func (r memRepos) Categories() repo.CategoryRepository    { return memCategories(r) }
func (r memRepos) Warehouses() repo.WarehouseRepository   { return memWarehouses(r) }
func (r memRepos) Stocks() repo.StockRepository           { return memStocks(r) }
func (r memRepos) Orders() repo.OrderRepository           { return memOrders(r) }
func (r memRepos) OrderItems() repo.OrderItemRepository   { return memOrderItems(r) }
func (r memRepos) Allocations() repo.AllocationRepository { return memAllocations(r) }
func (r memRepos) Users() repo.UserRepository             { return memUsers(r) }
func (r memRepos) AuditLogs() repo.AuditLogRepository     { return memAuditLogs(r) }

// =====================
// seed helper
// =====================

func (db *memDB) addUser(u model.User) model.User {
	if u.ID == 0 {
		u.ID = db.st.nextID()
	}
	db.st.users[u.ID] = u
	return u
}

func (db *memDB) addWarehouse(name string, priority int, active bool) model.Warehouse {
	w := model.Warehouse{ID: db.st.nextID(), Name: name, Priority: priority, IsActive: active}
	db.st.warehouses[w.ID] = w
	return w
}

func (db *memDB) addProduct(sku, price string, active bool) model.Product {
	p := model.Product{
		ID:       db.st.nextID(),
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		IsActive: active,
	}
	p.Translations = []model.ProductTranslation{{ID: db.st.nextID(), ProductID: p.ID, Locale: "en", Name: sku}}
	db.st.products[p.ID] = p
	return p
}

func (db *memDB) addStock(warehouseID, productID, quantity int64) model.Stock {
	st := model.Stock{ID: db.st.nextID(), WarehouseID: warehouseID, ProductID: productID, Quantity: quantity}
	db.st.stocks[st.ID] = st
	return st
}

func (db *memDB) stock(id int64) model.Stock {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.st.stocks[id]
}

func (db *memDB) order(id int64) model.Order {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.st.orders[id]
}

func (db *memDB) movementsOf(kind model.StockMovementKind) []model.StockMovement {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]model.StockMovement, 0)
	for _, m := range db.st.movements {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (db *memDB) auditsOf(action model.AuditAction) []model.AuditLog {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]model.AuditLog, 0)
	for _, a := range db.st.audits {
		if a.Action == action {
			out = append(out, a)
		}
	}
	return out
}

func (db *memDB) allocationsOf(orderID int64) []model.OrderAllocation {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]model.OrderAllocation, 0)
	for _, a := range db.st.allocs {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out
}

// =====================
// Products
// =====================

type memProducts memRepos

func (r memProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	inCategory := map[int64]bool{}
	for _, id := range q.CategoryIDs {
		inCategory[id] = true
	}
	needle := strings.ToLower(q.Q)

	hits := make([]model.Product, 0)
	for _, id := range sortedKeys(r.st.products) {
		p := r.st.products[id]
		if !p.Orderable() {
			continue
		}
		if len(q.CategoryIDs) > 0 && !inCategory[p.CategoryID] {
			continue
		}
		if needle != "" && !productMatches(p, needle) {
			continue
		}
		hits = append(hits, p)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if q.FeaturedFirst && hits[i].IsFeatured != hits[j].IsFeatured {
			return hits[i].IsFeatured
		}
		return hits[i].ID > hits[j].ID
	})

	total := int64(len(hits))
	start := (q.Page - 1) * q.Limit
	if start > len(hits) {
		start = len(hits)
	}
	end := start + q.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end], total, nil
}

func productMatches(p model.Product, needle string) bool {
	if strings.Contains(strings.ToLower(p.SKU), needle) {
		return true
	}
	for _, t := range p.Translations {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			return true
		}
	}
	return false
}

func (r memProducts) ListAll(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0)
	for _, id := range sortedKeys(r.st.products) {
		if p := r.st.products[id]; !p.DeletedAt.Valid {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := r.st.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	for _, p := range r.st.products {
		if p.SKU == sku && !p.DeletedAt.Valid {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r memProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	for _, other := range r.st.products {
		if other.SKU == p.SKU {
			return model.Product{}, repo.ErrConflict
		}
	}
	p.ID = r.st.nextID()
	ts := make([]model.ProductTranslation, 0, len(p.Translations))
	for _, t := range p.Translations {
		t.ID = r.st.nextID()
		t.ProductID = p.ID
		ts = append(ts, t)
	}
	p.Translations = ts
	r.st.products[p.ID] = p
	return p, nil
}

func (r memProducts) Update(ctx context.Context, p model.Product) error {
	cur, ok := r.st.products[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.CategoryID = p.CategoryID
	cur.Price = p.Price
	cur.ComparePrice = p.ComparePrice
	cur.IsActive = p.IsActive
	cur.IsFeatured = p.IsFeatured
	r.st.products[p.ID] = cur
	return nil
}

func (r memProducts) SoftDelete(ctx context.Context, id int64) error {
	p, ok := r.st.products[id]
	if !ok || p.DeletedAt.Valid {
		return repo.ErrNotFound
	}
	p.DeletedAt = gorm.DeletedAt{Valid: true}
	r.st.products[id] = p
	return nil
}

func (r memProducts) UpsertTranslation(ctx context.Context, t model.ProductTranslation) error {
	p, ok := r.st.products[t.ProductID]
	if !ok {
		return repo.ErrNotFound
	}
	ts := make([]model.ProductTranslation, 0, len(p.Translations)+1)
	replaced := false
	for _, cur := range p.Translations {
		if cur.Locale == t.Locale {
			t.ID = cur.ID
			t.Slug = cur.Slug
			ts = append(ts, t)
			replaced = true
			continue
		}
		ts = append(ts, cur)
	}
	if !replaced {
		t.ID = r.st.nextID()
		ts = append(ts, t)
	}
	p.Translations = ts
	r.st.products[p.ID] = p
	return nil
}

func (r memProducts) SlugTaken(ctx context.Context, locale, slug string, exceptTranslationID int64) (bool, error) {
	for _, p := range r.st.products {
		for _, t := range p.Translations {
			if t.Locale == locale && t.Slug == slug && t.ID != exceptTranslationID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r memProducts) SetTranslationSlug(ctx context.Context, translationID int64, slug string) error {
	for id, p := range r.st.products {
		ts := append([]model.ProductTranslation(nil), p.Translations...)
		for i := range ts {
			if ts[i].ID == translationID {
				ts[i].Slug = slug
				p.Translations = ts
				r.st.products[id] = p
				return nil
			}
		}
	}
	return repo.ErrNotFound
}

// =====================
// Categories
// =====================

type memCategories memRepos

func (r memCategories) ListAll(ctx context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(r.st.categories))
	for _, id := range sortedKeys(r.st.categories) {
		out = append(out, r.st.categories[id])
	}
	return out, nil
}

func (r memCategories) FindByID(ctx context.Context, id int64) (model.Category, error) {
	c, ok := r.st.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (r memCategories) FindByName(ctx context.Context, name string) (model.Category, error) {
	for _, id := range sortedKeys(r.st.categories) {
		c := r.st.categories[id]
		for _, t := range c.Translations {
			if strings.EqualFold(t.Name, name) {
				return c, nil
			}
		}
	}
	return model.Category{}, repo.ErrNotFound
}

func (r memCategories) Create(ctx context.Context, c model.Category) (model.Category, error) {
	c.ID = r.st.nextID()
	ts := make([]model.CategoryTranslation, 0, len(c.Translations))
	for _, t := range c.Translations {
		t.ID = r.st.nextID()
		t.CategoryID = c.ID
		ts = append(ts, t)
	}
	c.Translations = ts
	r.st.categories[c.ID] = c
	return c, nil
}

func (r memCategories) LockName(ctx context.Context, name string) error { return nil }

func (r memCategories) SlugTaken(ctx context.Context, locale, slug string, exceptTranslationID int64) (bool, error) {
	for _, c := range r.st.categories {
		for _, t := range c.Translations {
			if t.Locale == locale && t.Slug == slug && t.ID != exceptTranslationID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r memCategories) SetTranslationSlug(ctx context.Context, translationID int64, slug string) error {
	for id, c := range r.st.categories {
		ts := append([]model.CategoryTranslation(nil), c.Translations...)
		for i := range ts {
			if ts[i].ID == translationID {
				ts[i].Slug = slug
				c.Translations = ts
				r.st.categories[id] = c
				return nil
			}
		}
	}
	return repo.ErrNotFound
}

// =====================
// Warehouses
// =====================

type memWarehouses memRepos

func (r memWarehouses) GetOrCreateByName(ctx context.Context, name string) (model.Warehouse, error) {
	if w, err := r.FindByName(ctx, name); err == nil {
		return w, nil
	}
	w := model.Warehouse{ID: r.st.nextID(), Name: name, IsActive: true}
	r.st.warehouses[w.ID] = w
	return w, nil
}

func (r memWarehouses) FindByID(ctx context.Context, id int64) (model.Warehouse, error) {
	w, ok := r.st.warehouses[id]
	if !ok {
		return model.Warehouse{}, repo.ErrNotFound
	}
	return w, nil
}

func (r memWarehouses) FindByName(ctx context.Context, name string) (model.Warehouse, error) {
	for _, w := range r.st.warehouses {
		if w.Name == name {
			return w, nil
		}
	}
	return model.Warehouse{}, repo.ErrNotFound
}

func (r memWarehouses) ListActiveOrdered(ctx context.Context) ([]model.Warehouse, error) {
	out := make([]model.Warehouse, 0)
	for _, w := range r.st.warehouses {
		if w.IsActive {
			out = append(out, w)
		}
	}
	model.SortForFulfillment(out)
	return out, nil
}

func (r memWarehouses) ListAll(ctx context.Context) ([]model.Warehouse, error) {
	out := make([]model.Warehouse, 0, len(r.st.warehouses))
	for _, id := range sortedKeys(r.st.warehouses) {
		out = append(out, r.st.warehouses[id])
	}
	return out, nil
}

func (r memWarehouses) Update(ctx context.Context, w model.Warehouse) error {
	cur, ok := r.st.warehouses[w.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Address = w.Address
	cur.Priority = w.Priority
	cur.IsActive = w.IsActive
	r.st.warehouses[w.ID] = cur
	return nil
}

// =====================
// Stocks
// =====================

type memStocks memRepos

func (r memStocks) GetOrCreate(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	if st, err := r.Find(ctx, warehouseID, productID); err == nil {
		return st, nil
	}
	st := model.Stock{ID: r.st.nextID(), WarehouseID: warehouseID, ProductID: productID}
	r.st.stocks[st.ID] = st
	return st, nil
}

func (r memStocks) Find(ctx context.Context, warehouseID, productID int64) (model.Stock, error) {
	for _, st := range r.st.stocks {
		if st.WarehouseID == warehouseID && st.ProductID == productID {
			return st, nil
		}
	}
	return model.Stock{}, repo.ErrNotFound
}

func (r memStocks) FindByIDForUpdate(ctx context.Context, stockID int64) (model.Stock, error) {
	st, ok := r.st.stocks[stockID]
	if !ok {
		return model.Stock{}, repo.ErrNotFound
	}
	return st, nil
}

func (r memStocks) ListByProduct(ctx context.Context, productID int64) ([]model.Stock, error) {
	out := make([]model.Stock, 0)
	for _, id := range sortedKeys(r.st.stocks) {
		if st := r.st.stocks[id]; st.ProductID == productID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r memStocks) ListByProductForUpdate(ctx context.Context, productID int64) ([]model.Stock, error) {
	return r.ListByProduct(ctx, productID)
}

func (r memStocks) SetQuantity(ctx context.Context, stockID int64, quantity int64) error {
	st, ok := r.st.stocks[stockID]
	if !ok {
		return repo.ErrNotFound
	}
	st.Quantity = quantity
	r.st.stocks[stockID] = st
	return nil
}

func (r memStocks) Reserve(ctx context.Context, stockID int64, qty int64) (bool, error) {
	st, ok := r.st.stocks[stockID]
	if !ok {
		return false, repo.ErrNotFound
	}
	if st.Quantity-st.Reserved < qty {
		return false, nil
	}
	st.Reserved += qty
	r.st.stocks[stockID] = st
	return true, nil
}

func (r memStocks) Release(ctx context.Context, stockID int64, qty int64) error {
	st, ok := r.st.stocks[stockID]
	if !ok {
		return repo.ErrNotFound
	}
	st.Reserved = max(st.Reserved-qty, 0)
	r.st.stocks[stockID] = st
	return nil
}

func (r memStocks) Consume(ctx context.Context, stockID int64, qty int64) error {
	st, ok := r.st.stocks[stockID]
	if !ok {
		return repo.ErrNotFound
	}
	st.Quantity = max(st.Quantity-qty, 0)
	st.Reserved = max(st.Reserved-qty, 0)
	r.st.stocks[stockID] = st
	return nil
}

func (r memStocks) TotalAvailable(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	return r.sum(productIDs, model.Stock.Available), nil
}

func (r memStocks) ListByProducts(ctx context.Context, productIDs []int64) ([]model.Stock, error) {
	want := map[int64]bool{}
	for _, id := range productIDs {
		want[id] = true
	}
	out := make([]model.Stock, 0)
	for _, id := range sortedKeys(r.st.stocks) {
		if st := r.st.stocks[id]; want[st.ProductID] {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}

func (r memStocks) sum(productIDs []int64, f func(model.Stock) int64) map[int64]int64 {
	want := map[int64]bool{}
	for _, id := range productIDs {
		want[id] = true
	}
	out := map[int64]int64{}
	for _, st := range r.st.stocks {
		if want[st.ProductID] {
			out[st.ProductID] += f(st)
		}
	}
	return out
}

func (r memStocks) CreateMovement(ctx context.Context, m model.StockMovement) error {
	m.ID = r.st.nextID()
	r.st.movements = append(r.st.movements, m)
	return nil
}

func (r memStocks) ListMovements(ctx context.Context, productID int64, limit int) ([]model.StockMovement, error) {
	out := make([]model.StockMovement, 0)
	for i := len(r.st.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if m := r.st.movements[i]; m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

// =====================
// Orders
// =====================

type memOrders memRepos

func (r memOrders) withItems(o model.Order) model.Order {
	items, _ := memOrderItems(r).ListByOrderID(context.Background(), o.ID)
	o.Items = items
	return o
}

func (r memOrders) GetOrCreateDraft(ctx context.Context, userID int64, contact model.Contact) (model.Order, bool, error) {
	if o, err := r.FindDraftByUserID(ctx, userID); err == nil {
		return o, false, nil
	}
	o := model.Order{ID: r.st.nextID(), UserID: userID, Status: model.OrderStatusNew}
	o.ApplyContact(contact)
	r.st.orders[o.ID] = o
	return o, true, nil
}

func (r memOrders) FindDraftByUserID(ctx context.Context, userID int64) (model.Order, error) {
	for _, o := range r.st.orders {
		if o.UserID == userID && o.Status == model.OrderStatusNew {
			return r.withItems(o), nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.st.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return r.withItems(o), nil
}

func (r memOrders) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.st.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	return r.list(func(o model.Order) bool { return o.UserID == userID }, page, limit)
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	return r.list(func(o model.Order) bool {
		if f.Status != "" && string(o.Status) != f.Status {
			return false
		}
		if f.UserID != nil && o.UserID != *f.UserID {
			return false
		}
		return true
	}, f.Page, f.Limit)
}

func (r memOrders) list(match func(model.Order) bool, page, limit int) ([]model.Order, int64, error) {
	ids := sortedKeys(r.st.orders)
	hits := make([]model.Order, 0)
	for i := len(ids) - 1; i >= 0; i-- {
		if o := r.st.orders[ids[i]]; match(o) {
			hits = append(hits, r.withItems(o))
		}
	}
	total := int64(len(hits))
	start := min((page-1)*limit, len(hits))
	end := min(start+limit, len(hits))
	return hits[start:end], total, nil
}

func (r memOrders) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) error {
	o, ok := r.st.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Status != from {
		return repo.ErrConflict
	}
	o.Status = to
	r.st.orders[orderID] = o
	return nil
}

func (r memOrders) UpdateContact(ctx context.Context, orderID int64, contact model.Contact, note string) error {
	o, ok := r.st.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.ApplyContact(contact)
	o.Note = note
	r.st.orders[orderID] = o
	return nil
}

// =====================
// OrderItems
// =====================

type memOrderItems memRepos

func (r memOrderItems) AddOrIncrement(ctx context.Context, orderID int64, productID int64, qty int64, price decimal.Decimal) (model.OrderItem, error) {
	for id, it := range r.st.items {
		if it.OrderID == orderID && it.ProductID == productID {
			if it.Quantity+qty > model.MaxItemQuantity {
				return model.OrderItem{}, repo.ErrQuantityLimit
			}
			it.Quantity += qty
			r.st.items[id] = it
			return it, nil
		}
	}
	it := model.OrderItem{ID: r.st.nextID(), OrderID: orderID, ProductID: productID, Price: price, Quantity: qty}
	r.st.items[it.ID] = it
	return it, nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out := make([]model.OrderItem, 0)
	for _, id := range sortedKeys(r.st.items) {
		if it := r.st.items[id]; it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r memOrderItems) FindByID(ctx context.Context, itemID int64) (model.OrderItem, error) {
	it, ok := r.st.items[itemID]
	if !ok {
		return model.OrderItem{}, repo.ErrNotFound
	}
	return it, nil
}

func (r memOrderItems) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	it, ok := r.st.items[itemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	r.st.items[itemID] = it
	return nil
}

func (r memOrderItems) DeleteByID(ctx context.Context, itemID int64) error {
	if _, ok := r.st.items[itemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.st.items, itemID)
	return nil
}

func (r memOrderItems) IsInDraftOf(ctx context.Context, itemID int64, userID int64) (bool, error) {
	it, ok := r.st.items[itemID]
	if !ok {
		return false, nil
	}
	o := r.st.orders[it.OrderID]
	return o.UserID == userID && o.Status == model.OrderStatusNew, nil
}

// =====================
// Allocations / Users / AuditLogs
// =====================

type memAllocations memRepos

func (r memAllocations) CreateBulk(ctx context.Context, allocs []model.OrderAllocation) error {
	for _, a := range allocs {
		a.ID = r.st.nextID()
		r.st.allocs = append(r.st.allocs, a)
	}
	return nil
}

func (r memAllocations) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderAllocation, error) {
	out := make([]model.OrderAllocation, 0)
	for _, a := range r.st.allocs {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockID < out[j].StockID })
	return out, nil
}

type memUsers memRepos

func (r memUsers) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	u, ok := r.st.users[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) IncrementTokenVersion(ctx context.Context, userID int64) (int, error) {
	u, ok := r.st.users[userID]
	if !ok {
		return 0, repo.ErrNotFound
	}
	u.TokenVersion++
	r.st.users[userID] = u
	return u.TokenVersion, nil
}

type memAuditLogs memRepos

func (r memAuditLogs) Create(ctx context.Context, log model.AuditLog) error {
	log.ID = r.st.nextID()
	r.st.audits = append(r.st.audits, log)
	return nil
}

func (r memAuditLogs) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	out := make([]model.AuditLog, 0)
	for i := len(r.st.audits) - 1; i >= 0; i-- {
		a := r.st.audits[i]
		if f.Action != nil && a.Action != *f.Action {
			continue
		}
		if f.ResourceType != nil && a.ResourceType != *f.ResourceType {
			continue
		}
		out = append(out, a)
	}
	start := min(f.Offset, len(out))
	end := min(start+f.Limit, len(out))
	return out[start:end], nil
}

// =====================
// EventPublisher
// =====================

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev model.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
