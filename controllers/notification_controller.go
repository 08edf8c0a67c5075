// controllers/notification_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_clearance_tool/app"

	"github.com/gin-gonic/gin"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

// GET /api/notifications?unread=true&limit=50 — 只看自己角色的
func (nc *NotificationController) List(c *gin.Context) {
	roleV, _ := c.Get("role")
	role, _ := roleV.(string)
	unread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	ns, err := nc.Repo.ListNotifications(c.Request.Context(), role, unread, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"notifications": ns})
}

// POST /api/notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid notification id"})
		return
	}
	roleV, _ := c.Get("role")
	role, _ := roleV.(string)

	if err := nc.Repo.MarkNotificationRead(c.Request.Context(), uint(id), role); err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/notifications/read-all
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	roleV, _ := c.Get("role")
	role, _ := roleV.(string)

	if err := nc.Repo.MarkAllNotificationsRead(c.Request.Context(), role); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
