package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類（errors.Isで判定できる）
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

// APIのエラーコード
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeEmptyCart         = "EMPTY_CART"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

func NewHTTPError(status int, message string) error {
	he := &HTTPError{Status: status, Message: message}
	switch status {
	case http.StatusNotFound:
		he.Code, he.kind = CodeNotFound, ErrNotFound
	case http.StatusBadRequest:
		he.Code, he.kind = CodeValidation, ErrValidation
	case http.StatusUnauthorized:
		he.Code, he.kind = CodeUnauthorized, ErrUnauthorized
	case http.StatusConflict:
		he.Code, he.kind = CodeConflict, ErrConflict
	default:
		he.Code, he.kind = CodeInternal, ErrInternal
	}
	return he
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func NotFound(format string, args ...any) error {
	return &HTTPError{Status: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf(format, args...), kind: ErrNotFound}
}

func InsufficientStock(format string, args ...any) error {
	return &HTTPError{Status: http.StatusBadRequest, Code: CodeInsufficientStock, Message: fmt.Sprintf(format, args...), kind: ErrInsufficientStock}
}

func EmptyCart() error {
	return &HTTPError{Status: http.StatusBadRequest, Code: CodeEmptyCart, Message: "Cart is empty", kind: ErrEmptyCart}
}

func Validation(format string, args ...any) error {
	return &HTTPError{Status: http.StatusBadRequest, Code: CodeValidation, Message: fmt.Sprintf(format, args...), kind: ErrValidation}
}

// DBなどの想定外の失敗。元のエラーは残す
func Internal(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal error", kind: fmt.Errorf("%w: %w", ErrInternal, err)}
}
