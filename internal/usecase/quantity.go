package usecase

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gmplanet/stock-market/internal/config"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("invalid quantity")

type ParseMode string

const (
	// 読めない値は0、小数は切り捨て（補正したことは記録する）
	ParseLenient ParseMode = config.StockParseLenient
	// 読めない値・整数でない値はエラー
	ParseStrict ParseMode = config.StockParseStrict
)

// 補正の種類
const (
	CoercionNone        = ""
	CoercionUnparseable = "unparseable"
	CoercionFractional  = "fractional"
)

type ParsedQuantity struct {
	Value    int64
	Coercion string
}

func (q ParsedQuantity) Coerced() bool {
	return q.Coercion != CoercionNone
}

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

const (
	// 数値として読む文字列の上限
	maxQuantityLen = 64
	// 係数が1以上なら 10^19 で int64 を超える
	maxQuantityExp = 18
)

// 在庫数の文字列を整数にする。"10.0" -> 10。負の数はどちらのモードでもエラー。
func ParseQuantity(raw string, mode ParseMode) (ParsedQuantity, error) {
	s := strings.TrimSpace(raw)

	d, err := decimal.NewFromString(s)
	if err != nil || len(s) > maxQuantityLen {
		if mode == ParseStrict {
			return ParsedQuantity{}, fmt.Errorf("%w: %q is not a number", ErrInvalidQuantity, raw)
		}
		return ParsedQuantity{Value: 0, Coercion: CoercionUnparseable}, nil
	}

	if d.IsNegative() {
		return ParsedQuantity{}, fmt.Errorf("%w: must be >= 0", ErrInvalidQuantity)
	}
	if d.IsZero() {
		return ParsedQuantity{}, nil
	}

	// 指数が極端な値は桁の展開をせずに判定する
	exp := int64(d.Exponent())
	if exp > maxQuantityExp {
		return ParsedQuantity{}, fmt.Errorf("%w: too large", ErrInvalidQuantity)
	}
	if exp < 0 && -exp > int64(len(d.Coefficient().String())) {
		// 0 < d < 1
		if mode == ParseStrict {
			return ParsedQuantity{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidQuantity, raw)
		}
		return ParsedQuantity{Value: 0, Coercion: CoercionFractional}, nil
	}

	if d.GreaterThan(maxQuantity) {
		return ParsedQuantity{}, fmt.Errorf("%w: too large", ErrInvalidQuantity)
	}

	whole := d.Truncate(0)
	if !whole.Equal(d) {
		if mode == ParseStrict {
			return ParsedQuantity{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidQuantity, raw)
		}
		return ParsedQuantity{Value: whole.IntPart(), Coercion: CoercionFractional}, nil
	}

	return ParsedQuantity{Value: whole.IntPart()}, nil
}

func ParseModeOf(v string) ParseMode {
	if strings.EqualFold(strings.TrimSpace(v), string(ParseStrict)) {
		return ParseStrict
	}
	return ParseLenient
}
