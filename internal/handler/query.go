package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/labstack/echo/v4"
)

// クエリを順に読み、最初に読めなかった名前を覚えておく
type queryReader struct {
	c   echo.Context
	bad string
}

func readQuery(c echo.Context) *queryReader {
	return &queryReader{c: c}
}

func (q *queryReader) fail(name string) {
	if q.bad == "" {
		q.bad = name
	}
}

func (q *queryReader) Int(name string, def int) int {
	v := q.c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.fail(name)
		return def
	}
	return n
}

// 空ならnil
func (q *queryReader) ID(name string) *int64 {
	v := q.c.QueryParam(name)
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &id
}

// RFC3339。空ならnil
func (q *queryReader) Time(name string) *time.Time {
	v := q.c.QueryParam(name)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		q.fail(name)
		return nil
	}
	return &t
}

func (q *queryReader) String(name string) string {
	return q.c.QueryParam(name)
}

// 400 "invalid <name>"
func (q *queryReader) Err() error {
	if q.bad == "" {
		return nil
	}
	return usecase.NewHTTPError(http.StatusBadRequest, "invalid "+q.bad)
}
