package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mpihole/internal/models"
	"mpihole/internal/service"

	"github.com/gin-gonic/gin"
)

// Plain-text answers of the control endpoints.
const (
	textOK             = "OK"
	textMissingSeconds = "Missing seconds"
	textInvalidInt     = "Invalid int value"
	textNoServers      = "No pihole servers configured"
	textFailedPrefix   = "Failed on: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...any) {
	if h.log != nil && err != nil {
		fields := append([]any{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Enable blocking
// @Description  Turns blocking back on for every configured Pi-hole.
// @Tags         control
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Failure      502  {string}  string  "Failed on: <servers>"
// @Failure      503  {string}  string
// @Router       /enable [get]
func (h *Handler) enable(c *gin.Context) {
	e, err := h.services.Toggle.Enable(c.Request.Context())
	h.respondToggle(c, e, err)
}

// @Summary      Disable blocking
// @Description  Pauses blocking on every configured Pi-hole for secs seconds.
// @Tags         control
// @Produce      plain
// @Param        secs  path  int  true  "Seconds"  minimum(0)  maximum(2147483647)
// @Success      200  {string}  string  "OK"
// @Failure      400  {string}  string  "Missing seconds / Invalid int value"
// @Failure      502  {string}  string  "Failed on: <servers>"
// @Failure      503  {string}  string
// @Router       /disable/{secs} [get]
func (h *Handler) disable(c *gin.Context) {
	raw := c.Param("secs")
	if raw == "" {
		c.String(http.StatusBadRequest, textMissingSeconds)
		return
	}
	secs, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		c.String(http.StatusBadRequest, textInvalidInt)
		return
	}

	e, err := h.services.Toggle.Disable(c.Request.Context(), uint(secs))
	h.respondToggle(c, e, err)
}

func (h *Handler) respondToggle(c *gin.Context, e models.ToggleEvent, err error) {
	switch {
	case errors.Is(err, service.ErrNoServers):
		c.String(http.StatusServiceUnavailable, textNoServers)
	case errors.Is(err, service.ErrSecondsOutOfRange):
		c.String(http.StatusBadRequest, textInvalidInt)
	case err != nil:
		if h.log != nil {
			h.log.Errorw("toggle_failed", "err", err)
		}
		c.String(http.StatusInternalServerError, err.Error())
	case !e.Succeeded:
		c.String(http.StatusBadGateway, textFailedPrefix+e.FailedURLs())
	default:
		c.String(http.StatusOK, textOK)
	}
}

// @Summary      Server status
// @Description  Last known blocking status of every configured Pi-hole.
// @Tags         servers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, servers"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/servers/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.Monitoring.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load status", "servers_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(st), "servers": st})
}

// @Summary      Refresh server status
// @Description  Polls every Pi-hole now instead of waiting for the next poll.
// @Tags         servers
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, servers"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/servers/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshStatus(c *gin.Context) {
	st, err := h.services.Monitoring.Refresh(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to refresh status", "servers_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(st), "servers": st})
}
