package model

import "time"

// 商品カテゴリ（ツリー構造）
type Category struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ParentID *int64 `gorm:"index" json:"parent_id"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	Translations []CategoryTranslation `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"translations,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

type CategoryTranslation struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64  `gorm:"not null;uniqueIndex:ux_category_translations_locale,priority:1" json:"category_id"`
	Locale      string `gorm:"type:varchar(8);not null;uniqueIndex:ux_category_translations_locale,priority:2" json:"locale"`
	Name        string `gorm:"type:varchar(255);not null;index" json:"name"`
	Slug        string `gorm:"type:varchar(255);not null;default:''" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (t CategoryTranslation) LocaleCode() string   { return t.Locale }
func (t CategoryTranslation) TranslationID() int64 { return t.ID }
func (t CategoryTranslation) SlugName() string     { return t.Name }
func (t CategoryTranslation) CurrentSlug() string  { return t.Slug }

func (c Category) NodeID() int64        { return c.ID }
func (c Category) NodeParentID() *int64 { return c.ParentID }

func (c Category) TranslationSet() []CategoryTranslation {
	return c.Translations
}

func (c Category) Localized(locale string) (CategoryTranslation, bool) {
	return Translate(c.Translations, locale, DefaultLocale)
}

func (c Category) DisplayName(locale string) string {
	if t, ok := c.Localized(locale); ok {
		return t.Name
	}
	return ""
}
