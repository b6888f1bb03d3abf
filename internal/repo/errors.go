package repo

import (
	"errors"
	"fmt"
)

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД. Конкретные репозитории
	// возвращают NotFoundError, который разворачивается в эту ошибку.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись уже существует (конфликт уникальности).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — операция невозможна в текущем состоянии.
	ErrInvalidState = errors.New("invalid state")
)

// NotFoundError уточняет ErrNotFound ресурсом (chain, flow, schedule)
// и его идентификатором.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error реализует интерфейс error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Resource, e.ID)
}

// Unwrap возвращает ErrNotFound: errors.Is(err, ErrNotFound) работает.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// notFound строит NotFoundError для ресурса.
func notFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}
