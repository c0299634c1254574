package repository

import "context"

// TxRepos は同じtxを共有するrepository一式。WithinTxのfnの中でだけ使う
type TxRepos interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Warehouses() WarehouseRepository
	Stocks() StockRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Allocations() AllocationRepository
	Users() UserRepository
	AuditLogs() AuditLogRepository
}

// fnがnilを返せばcommit、errorならrollback。
// 実装はデッドロック時にfnを最初からやり直すことがあるので、fnの外に副作用を残さない
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
