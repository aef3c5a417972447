package service

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. HTTP-слой сопоставляет их с кодами ответа через errors.Is.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrPersistence      = errors.New("persistence error")
	ErrUpstream         = errors.New("upstream error")
)

var (
	ErrIncidentNotFound = fmt.Errorf("incident %w", ErrNotFound)
	ErrCommentNotFound  = fmt.Errorf("comment %w", ErrNotFound)
	ErrLocationNotFound = fmt.Errorf("location %w", ErrNotFound)
)

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
