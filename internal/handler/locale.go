package handler

import (
	"github.com/gmplanet/stock-market/internal/domain/model"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

var localeMatcher = newLocaleMatcher(model.DefaultLocale, model.SupportedLocales)

// 先頭が既定言語
func newLocaleMatcher(def string, supported []string) language.Matcher {
	tags := []language.Tag{language.Make(def)}
	for _, l := range supported {
		if l != def {
			tags = append(tags, language.Make(l))
		}
	}
	return language.NewMatcher(tags)
}

// ?lang= を優先し、無ければAccept-Languageから選ぶ
func resolveLocale(c echo.Context) string {
	if v := c.QueryParam("lang"); v != "" && model.IsSupportedLocale(v) {
		return model.NormalizeLocale(v)
	}

	tags, _, err := language.ParseAcceptLanguage(c.Request().Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return model.DefaultLocale
	}
	tag, _, _ := localeMatcher.Match(tags...)
	base, _ := tag.Base()
	return model.NormalizeLocale(base.String())
}
