// Package me возвращает текущего пользователя.
package me

import (
	"net/http"

	"github.com/magabrotheeeer/quickmarket/internal/http/middlewarectx"
	"github.com/magabrotheeeer/quickmarket/internal/http/response"
	"github.com/magabrotheeeer/quickmarket/internal/models"
)

// Response: тело ответа.
type Response struct {
	User *models.User `json:"user"`
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.RequireUser(w, r)
	if !ok {
		return
	}
	response.OK(w, r, Response{User: user})
}
