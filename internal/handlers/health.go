package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves /health_check for liveness.
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(log *slog.Logger) *HealthHandler {
	return &HealthHandler{logger: log.With(slog.String("handler", "health"))}
}

// Register mounts GET /health_check on the Echo instance.
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health_check", h.Check)
}

// Check returns 200 "UP" unconditionally; no dependencies are probed.
func (h *HealthHandler) Check(c echo.Context) error {
	return c.String(http.StatusOK, "UP")
}
