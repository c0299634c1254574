package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "github.com/gmplanet/stock-market/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
	// 500のときの元エラー。レスポンスには出さない
	Err error
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 500。元エラーはUnwrapで辿れる
func dbError(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Err: err}
}

// HTTPErrorでなければrepositoryのエラーから決める
func toHTTPError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrInsufficientStock):
		return NewHTTPError(http.StatusConflict, "insufficient stock")
	case errors.Is(err, repo.ErrConflict):
		return NewHTTPError(http.StatusConflict, "conflict")
	case errors.Is(err, repo.ErrQuantityLimit):
		return NewHTTPError(http.StatusBadRequest, "quantity limit exceeded")
	case errors.Is(err, ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return dbError(err)
}
