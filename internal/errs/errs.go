// Package errs описывает ошибки, которые превращаются в HTTP-ответы.
//
// Обработчик возвращает *HTTPError для ожидаемых исходов (400/401/403/404/405),
// всё остальное на границе маршрутизатора становится 500.
package errs

import (
	"net/http"
	"strings"
)

// HTTPError - ошибка с кодом ответа и сообщением для клиента.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is: любой *HTTPError совпадает с любым другим, код не сравнивается.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

func newHTTPError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

func NewBadRequestError(message string) *HTTPError {
	return newHTTPError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message string) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message)
}

func NewForbiddenError(message string) *HTTPError {
	return newHTTPError(http.StatusForbidden, message)
}

func NewNotFoundError(message string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message)
}

func NewMethodNotAllowedError() *HTTPError {
	return newHTTPError(http.StatusMethodNotAllowed, "Method not allowed")
}

// NewInternalServerError отдаёт общее сообщение; причина пишется только в лог.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, "Internal server error")
}

// ValidationError превращает ошибку валидатора в 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: " + err.Error())
}

// MakeUpperCaseWithUnderscores: "Bad Request" -> "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
