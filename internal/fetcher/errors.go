package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
)

// Коды ошибок браузерного слоя
const (
	ErrCodeLaunch          = "BROWSER_LAUNCH"
	ErrCodeNavigation      = "NAVIGATION_FAILED"
	ErrCodeTimeout         = "TIMEOUT"
	ErrCodeElementNotFound = "ELEMENT_NOT_FOUND"
	ErrCodeActionFailed    = "ACTION_FAILED"
	ErrCodeCapture         = "CAPTURE_FAILED"
)

// ErrLoginUnverified — после отправки формы не появился success_xpath
var ErrLoginUnverified = errors.New("login could not be verified")

// BrowserError несёт код ошибки и исходную причину
type BrowserError struct {
	Code    string
	Message string
	Err     error
}

func (e *BrowserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BrowserError) Unwrap() error {
	return e.Err
}

func NewBrowserError(code, message string, err error) *BrowserError {
	return &BrowserError{Code: code, Message: message, Err: err}
}

// HasCode проверяет код BrowserError в цепочке ошибок
func HasCode(err error, code string) bool {
	var be *BrowserError
	return errors.As(err, &be) && be.Code == code
}

// categorizeError переводит ошибки rod и контекста в BrowserError
func categorizeError(err error, fallbackCode, msg string) *BrowserError {
	switch {
	case errors.Is(err, context.Canceled):
		return NewBrowserError(ErrCodeTimeout, "operation canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewBrowserError(ErrCodeTimeout, msg, err)
	default:
		return NewBrowserError(fallbackCode, msg, err)
	}
}

// locateError различает "элемент не найден" и прочие сбои при поиске элемента.
// rod ищет элемент до истечения контекста, поэтому дедлайн шага тоже означает отсутствие элемента.
func locateError(err error, msg string) *BrowserError {
	var notFound *rod.ElementNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, context.DeadlineExceeded) {
		return NewBrowserError(ErrCodeElementNotFound, msg, err)
	}
	return categorizeError(err, ErrCodeActionFailed, msg)
}
