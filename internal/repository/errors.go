package repository

import (
	"errors"

	"github.com/gmplanet/stock-market/internal/domain/model"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反
	ErrConflict = errors.New("conflict")
	// 引当できる在庫が足りない
	ErrInsufficientStock = model.ErrInsufficientStock
	// 加算すると明細の数量上限を超える
	ErrQuantityLimit = errors.New("quantity limit exceeded")
)
