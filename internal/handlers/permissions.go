package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reactroom/reactroom/internal/ownership"
	"github.com/reactroom/reactroom/internal/permissions"
)

// Permission records are public once set and change rarely; clients and
// proxies may cache reads for a day.
const cacheControlValue = "max-age=86400"

// PermissionsHandler serves the permission write and the public reads.
type PermissionsHandler struct {
	service *ownership.Service
	logger  *slog.Logger
}

// NewPermissionsHandler creates the permissions handler.
func NewPermissionsHandler(log *slog.Logger, service *ownership.Service) *PermissionsHandler {
	return &PermissionsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "permissions")),
	}
}

// Register mounts the permission routes on the Echo instance.
func (h *PermissionsHandler) Register(e *echo.Echo) {
	e.POST("/set_permissions", h.Set)
	e.GET("/permissions/full_list", h.List)
	e.GET("/permissions/:key", h.Get)
}

// Set godoc
// @Summary Set channel permissions
// @Description Verify the signed claim and upsert the channel's permission record
// @Tags permissions
// @Param payload body ownership.SetPermissionsRequest true "Permission fields and claim"
// @Success 200 {string} string "ok"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {string} string
// @Router /set_permissions [post].
func (h *PermissionsHandler) Set(c echo.Context) error {
	var req ownership.SetPermissionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.CanReactLive.Valid() || !req.CanUploadReaction.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "can_react_live and can_upload_reaction are required")
	}
	if req.LiveReactionDelayValue < 0 || req.UploadReactionDelayValue < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "delay values must not be negative")
	}

	if err := h.service.SetPermissions(c.Request().Context(), req); err != nil {
		// Claim failures deliberately share the generic error path.
		h.logger.Error("set permissions failed", slog.Any("error", err))
		return c.String(http.StatusInternalServerError, "failed to set permissions")
	}
	return c.String(http.StatusOK, "ok")
}

// List godoc
// @Summary List all permission records
// @Tags permissions
// @Success 200 {array} permissions.Record
// @Failure 500 {object} ErrorResponse
// @Router /permissions/full_list [get].
func (h *PermissionsHandler) List(c echo.Context) error {
	records, err := h.service.List(c.Request().Context())
	if err != nil {
		h.logger.Error("list permissions failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msgUnexpected})
	}
	return c.JSON(http.StatusOK, records)
}

// Get godoc
// @Summary Get one permission record
// @Description Look up by channel id, or by handle when the key starts with "@"
// @Tags permissions
// @Param key path string true "Channel id or @handle"
// @Success 200 {object} permissions.Record
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /permissions/{key} [get].
func (h *PermissionsHandler) Get(c echo.Context) error {
	key := c.Param("key")

	record, err := h.service.Get(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, permissions.ErrNotFound) {
			c.Response().Header().Set("Cache-Control", cacheControlValue)
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: msgPermissionMissing})
		}
		h.logger.Error("get permissions failed", slog.String("key", key), slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: msgUnexpected})
	}

	c.Response().Header().Set("Cache-Control", cacheControlValue)
	c.Response().Header().Set("Last-Modified", record.LastUpdatedAt.UTC().Format(http.TimeFormat))
	return c.JSON(http.StatusOK, record)
}
