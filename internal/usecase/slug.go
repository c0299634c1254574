package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gmplanet/stock-market/internal/domain/model"
	repo "github.com/gmplanet/stock-market/internal/repository"

	"github.com/gosimple/slug"
)

const maxSlugAttempts = 50

// 名前からslugを作る（キリル文字は翻字）
func Slugify(name, locale string) string {
	return slug.MakeLang(name, model.NormalizeLocale(locale))
}

// slugが空の翻訳行にslugを付ける。作成の後に呼ぶ。
// 同じlocaleで重複したら -2, -3 ... を付ける。
func ensureSlugs[T model.SlugSource](ctx context.Context, store repo.SlugStore, l model.Localizable[T]) error {
	for _, t := range l.TranslationSet() {
		if t.CurrentSlug() != "" || t.SlugName() == "" {
			continue
		}

		base := Slugify(t.SlugName(), t.LocaleCode())
		if base == "" {
			base = strconv.FormatInt(t.TranslationID(), 10)
		}

		s, err := uniqueSlug(ctx, store, t, base)
		if err != nil {
			return err
		}
		if err := store.SetTranslationSlug(ctx, t.TranslationID(), s); err != nil {
			return err
		}
	}
	return nil
}

func uniqueSlug[T model.SlugSource](ctx context.Context, store repo.SlugStore, t T, base string) (string, error) {
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := store.SlugTaken(ctx, t.LocaleCode(), candidate, t.TranslationID())
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	// ここまで埋まっていることはまず無い
	return fmt.Sprintf("%s-%d", base, t.TranslationID()), nil
}
