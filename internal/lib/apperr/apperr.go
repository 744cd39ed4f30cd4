// Package apperr описывает таксономию доменных ошибок сервиса и их соответствие
// HTTP-статусам. Слои ниже оборачивают эти ошибки через fmt.Errorf("%s: %w", op, err),
// HTTP-слой распознаёт их через errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation некорректные входные данные (например, рейтинг вне [1,5]).
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized токен отсутствует, невалиден, истёк или субъект не найден.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden личность подтверждена, но не хватает уровня доступа или прав владельца.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrConflict нарушение уникальности (email занят, техника уже в избранном).
	ErrConflict = errors.New("conflict")
)

// Error доменная ошибка с сообщением для клиента.
// Kind одна из сентинельных ошибок пакета.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New создаёт доменную ошибку заданного вида с сообщением для клиента.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// HTTPStatus возвращает HTTP-статус для ошибки. Всё, что не относится
// к таксономии, считается внутренней ошибкой.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст, который можно отдать клиенту. Для внутренних
// ошибок детали не раскрываются.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		if errors.Is(err, ErrConflict) {
			return ErrConflict.Error()
		}
		return ErrValidation.Error()
	case http.StatusUnauthorized:
		return ErrUnauthorized.Error()
	case http.StatusForbidden:
		return ErrForbidden.Error()
	case http.StatusNotFound:
		return ErrNotFound.Error()
	default:
		return "internal server error"
	}
}
