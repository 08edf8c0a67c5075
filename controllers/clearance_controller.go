// controllers/clearance_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"Gin_postgres_redis_clearance_tool/app"
	"Gin_postgres_redis_clearance_tool/clearance"
	"Gin_postgres_redis_clearance_tool/db"
	"Gin_postgres_redis_clearance_tool/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClearanceController struct{ *Srv }

func NewClearanceController(s *Srv) *ClearanceController { return &ClearanceController{Srv: s} }

// 每种错误都告诉调用方是哪条规则拦下了请求
func clearanceHTTPError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, clearance.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	case errors.Is(err, clearance.ErrNoDamageRecorded):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	case errors.Is(err, clearance.ErrConcurrentModification):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, clearance.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, app.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "issued item not found"})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// GET /api/clearance/:recipientType/:recipientId
// 权威答案：总是重算，不信缓存
func (cc *ClearanceController) GetClearanceStatus(c *gin.Context) {
	rtype := c.Param("recipientType")
	rid := c.Param("recipientId")
	if rtype != models.RecipientStudent && rtype != models.RecipientStaff {
		c.JSON(http.StatusBadRequest, app.H{"error": "recipientType must be student or staff"})
		return
	}
	status, err := cc.Repo.GetClearanceStatus(c.Request.Context(), rtype, rid)
	if err != nil {
		clearanceHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"recipientType": rtype,
		"recipientId":   rid,
		"status":        status,
	})
}

// GET /api/clearance/queue — 按调用者角色过滤的工作队列
func (cc *ClearanceController) ListActionable(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	items, err := cc.Repo.ListActionableItems(c.Request.Context(), actor.Role)
	if err != nil {
		clearanceHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

type transitionReq struct {
	Action     string `json:"action" binding:"required"` // resolve/escalate/clear/waive/reject/rollback
	Resolution string `json:"resolution"`                // Repaired/Replaced，resolve 和 clear 必填
	Notes      string `json:"notes"`
	Version    *int   `json:"version"` // 发起时看到的版本号，检测并发冲突
}

// POST /api/clearance/items/:id/transition
func (cc *ClearanceController) Transition(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid item id"})
		return
	}
	var in transitionReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	item, err := cc.Repo.TransitionClearance(c.Request.Context(), db.TransitionInput{
		ItemID:          uint(id),
		Actor:           actor,
		Action:          clearance.Action(in.Action),
		Resolution:      clearance.Resolution(in.Resolution),
		Notes:           in.Notes,
		ExpectedVersion: in.Version,
	})
	if err != nil {
		clearanceHTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// GET /api/clearance/items/:id/audit — 完整协商历史
func (cc *ClearanceController) ListAudit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid item id"})
		return
	}
	rows, err := cc.Repo.ListClearanceAudit(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"audit": rows})
}
