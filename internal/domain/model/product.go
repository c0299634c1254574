package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品。SKUは一度決めたら変えない。
type Product struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU          string           `gorm:"type:varchar(100);not null;uniqueIndex" json:"sku"`
	CategoryID   int64            `gorm:"not null;index" json:"category_id"`
	Price        decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"price"`
	ComparePrice *decimal.Decimal `gorm:"type:numeric(10,2)" json:"compare_price,omitempty"`
	IsActive     bool             `gorm:"not null;index:idx_products_active_featured,priority:1" json:"is_active"`
	IsFeatured   bool             `gorm:"not null;index:idx_products_active_featured,priority:2" json:"is_featured"`

	Translations []ProductTranslation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"translations,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 商品の言語別フィールド
type ProductTranslation struct {
	ID               int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID        int64  `gorm:"not null;uniqueIndex:ux_product_translations_locale,priority:1" json:"product_id"`
	Locale           string `gorm:"type:varchar(8);not null;uniqueIndex:ux_product_translations_locale,priority:2" json:"locale"`
	Name             string `gorm:"type:varchar(255);not null" json:"name"`
	Slug             string `gorm:"type:varchar(255);not null;default:''" json:"slug"`
	Description      string `gorm:"type:text" json:"description"`
	ShortDescription string `gorm:"type:varchar(500)" json:"short_description"`
}

func (t ProductTranslation) LocaleCode() string   { return t.Locale }
func (t ProductTranslation) TranslationID() int64 { return t.ID }
func (t ProductTranslation) SlugName() string     { return t.Name }
func (t ProductTranslation) CurrentSlug() string  { return t.Slug }

// 注文時に使う現在価格
func (p Product) CurrentPrice() decimal.Decimal {
	return p.Price
}

// カートに入れられるか
func (p Product) Orderable() bool {
	return p.IsActive && !p.DeletedAt.Valid
}

// 定価からの割引率（%）。切り捨て。
func (p Product) DiscountPercentage() int {
	if p.ComparePrice == nil || !p.ComparePrice.GreaterThan(p.Price) {
		return 0
	}
	pct := p.ComparePrice.Sub(p.Price).Div(*p.ComparePrice).Mul(decimal.NewFromInt(100))
	return int(pct.IntPart())
}

func (p Product) TranslationSet() []ProductTranslation {
	return p.Translations
}

func (p Product) Localized(locale string) (ProductTranslation, bool) {
	return Translate(p.Translations, locale, DefaultLocale)
}

// 表示名。翻訳が無ければSKU。
func (p Product) DisplayName(locale string) string {
	if t, ok := p.Localized(locale); ok && t.Name != "" {
		return t.Name
	}
	return p.SKU
}
