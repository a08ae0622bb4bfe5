// Package handlers provides the HTTP API handlers for the reactroom server.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reactroom/reactroom/internal/ownership"
	"github.com/reactroom/reactroom/internal/youtube"
)

// AuthHandler serves the authorization-code exchange and issues signed claims.
type AuthHandler struct {
	service *ownership.Service
	logger  *slog.Logger
}

// AuthCodeRequest is the body for POST /get_the_juice: the authorization code
// the user received in the frontend after signing in with Google.
type AuthCodeRequest struct {
	Code string `json:"code"`
}

// AuthTokenResponse carries the signed claim on success.
type AuthTokenResponse struct {
	Message string `json:"message"`
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(log *slog.Logger, service *ownership.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  log.With(slog.String("handler", "auth")),
	}
}

// Register mounts POST /get_the_juice on the Echo instance.
func (h *AuthHandler) Register(e *echo.Echo) {
	e.POST("/get_the_juice", h.Exchange)
}

// Exchange godoc
// @Summary Prove channel ownership
// @Description Exchange a Google authorization code for a signed channel claim
// @Tags auth
// @Param payload body AuthCodeRequest true "Authorization code"
// @Success 200 {object} AuthTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /get_the_juice [post].
func (h *AuthHandler) Exchange(c echo.Context) error {
	var req AuthCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgBadAuthCode})
	}

	token, err := h.service.Authorize(c.Request().Context(), req.Code)
	if err != nil {
		if errors.Is(err, youtube.ErrBadAuthCode) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: msgBadAuthCode})
		}
		h.logger.Error("authorize failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msgUnexpected})
	}

	return c.JSON(http.StatusOK, AuthTokenResponse{Message: token})
}
