// Package response содержит вспомогательные функции для формирования
// JSON‑ответов HTTP‑обработчиков: успешных ответов и ошибок в едином формате
// {error, code, details}.
package response

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/quickmarket/internal/apperr"
)

// ErrorResponse: тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error" example:"validation error"`
	Code    string `json:"code" example:"VALIDATION_ERROR"`
	Details any    `json:"details,omitempty"`
}

// Message: тело ответа, содержащее только сообщение.
type Message struct {
	Message string `json:"message" example:"Logout successful"`
}

type debugKey struct{}

// WithDebug помечает контекст запроса: в ответ с ошибкой добавляется текст исходной ошибки.
func WithDebug(ctx context.Context) context.Context {
	return context.WithValue(ctx, debugKey{}, true)
}

func debugEnabled(ctx context.Context) bool {
	v, _ := ctx.Value(debugKey{}).(bool)
	return v
}

// OK отправляет 200 с данными.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, data)
}

// Created отправляет 201 с данными.
func Created(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, data)
}

// Fail переводит ошибку в HTTP‑ответ. Ошибки apperr отдаются со своим статусом и кодом,
// остальные превращаются в 500 INTERNAL_ERROR.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.ErrInternal
	}

	body := ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
	if body.Details == nil && debugEnabled(r.Context()) && err != nil {
		body.Details = err.Error()
	}

	render.Status(r, e.Status)
	render.JSON(w, r, body)
}

// ValidationError формирует ошибку VALIDATION_ERROR со списком нарушений.
func ValidationError(errs validator.ValidationErrors) *apperr.Error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid uuid", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "lt", "lte":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return apperr.ErrValidation.WithDetails(msgs)
}

// Decode читает JSON из тела запроса и проверяет его валидатором.
// Пустое тело допускается, если validate не требует полей.
func Decode(r *http.Request, validate *validator.Validate, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.ErrInvalidBody.Wrap(err)
	}
	return Validate(validate, v)
}

// Validate проверяет структуру и переводит ошибки валидатора в VALIDATION_ERROR.
// При nil validate проверка пропускается.
func Validate(validate *validator.Validate, v any) error {
	if validate == nil {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ValidationError(verrs)
		}
		return apperr.ErrValidation.Wrap(err)
	}
	return nil
}
