package model

import "strings"

const DefaultLocale = "en"

// 対応言語
var SupportedLocales = []string{"en", "es", "ru"}

// 言語別のフィールドを持つ行
type Translation interface {
	LocaleCode() string
}

// 言語別フィールドの集合を持つエンティティ
type Localizable[T Translation] interface {
	TranslationSet() []T
}

// 指定言語 -> fallback言語 -> 先頭 の順で探す
func Translate[T Translation](set []T, locale string, fallback string) (T, bool) {
	var zero T
	if len(set) == 0 {
		return zero, false
	}

	locale = NormalizeLocale(locale)
	fallback = NormalizeLocale(fallback)

	for _, t := range set {
		if NormalizeLocale(t.LocaleCode()) == locale {
			return t, true
		}
	}
	for _, t := range set {
		if NormalizeLocale(t.LocaleCode()) == fallback {
			return t, true
		}
	}
	return set[0], true
}

// "en-US" -> "en"
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}

func IsSupportedLocale(locale string) bool {
	locale = NormalizeLocale(locale)
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

// slugを生成できる翻訳行
type SlugSource interface {
	Translation
	TranslationID() int64
	SlugName() string
	CurrentSlug() string
}
