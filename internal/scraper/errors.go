package scraper

import (
	"errors"
	"fmt"
)

var ErrMissingField = errors.New("required field not found in container")

// ExtractError указывает контейнер и поле, на котором остановилось извлечение
type ExtractError struct {
	Index    int
	Field    string
	Selector string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("container %d: %s (%s): %v", e.Index, e.Field, e.Selector, ErrMissingField)
}

func (e *ExtractError) Unwrap() error {
	return ErrMissingField
}
