// controllers/issue_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_clearance_tool/app"
	"Gin_postgres_redis_clearance_tool/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type IssueController struct{ *Srv }

func NewIssueController(s *Srv) *IssueController { return &IssueController{Srv: s} }

// POST /api/issues 发放设备
func (ic *IssueController) IssueEquipment(c *gin.Context) {
	var in struct {
		RecipientType  string     `json:"recipientType" binding:"required"`
		RecipientID    string     `json:"recipientId" binding:"required"`
		RecipientName  string     `json:"recipientName"`
		RecipientEmail string     `json:"recipientEmail"`
		RecipientPhone string     `json:"recipientPhone"`
		EquipmentID    uint       `json:"equipmentId" binding:"required"`
		Quantity       int        `json:"quantity" binding:"required,min=1"`
		Serials        []string   `json:"serials"`
		ExpectedReturn *time.Time `json:"expectedReturn"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	v, _ := c.Get("username")
	issuedBy, _ := v.(string)

	item, err := ic.Repo.IssueEquipment(c.Request.Context(), db.IssueInput{
		RecipientType:  in.RecipientType,
		RecipientID:    in.RecipientID,
		RecipientName:  in.RecipientName,
		RecipientEmail: in.RecipientEmail,
		RecipientPhone: in.RecipientPhone,
		EquipmentID:    in.EquipmentID,
		Quantity:       in.Quantity,
		Serials:        in.Serials,
		ExpectedReturn: in.ExpectedReturn,
		IssuedBy:       issuedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInsufficientStock), errors.Is(err, db.ErrEquipmentInactive):
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": "equipment not found"})
		default:
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, item)
}

// POST /api/issues/:id/return 归还（可部分归还）
func (ic *IssueController) ReturnEquipment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid issue id"})
		return
	}
	var in struct {
		// serial -> Good/Damaged/Lost；非序列号发放用 "all"
		Conditions map[string]string `json:"conditions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	v, _ := c.Get("username")
	returnedBy, _ := v.(string)

	item, err := ic.Repo.ReturnEquipment(c.Request.Context(), db.ReturnInput{
		ItemID:     uint(id),
		Conditions: in.Conditions,
		ReturnedBy: returnedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyReturned), errors.Is(err, db.ErrConditionAlreadyRecorded):
			c.JSON(http.StatusConflict, app.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": "issued item not found"})
		default:
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// GET /api/issues?recipientType=&recipientId=&status=&equipmentId=&overdue=&page=&size=
func (ic *IssueController) ListIssues(c *gin.Context) {
	q := db.IssuedItemsQuery{
		RecipientType: c.Query("recipientType"),
		RecipientID:   c.Query("recipientId"),
		Status:        c.Query("status"),
	}
	if v := c.Query("equipmentId"); v != "" {
		id, _ := strconv.ParseUint(v, 10, 64)
		q.EquipmentID = uint(id)
	}
	q.Overdue, _ = strconv.ParseBool(c.DefaultQuery("overdue", "false"))
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ic.Repo.ListIssuedItems(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/issues/:id
func (ic *IssueController) GetIssue(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid issue id"})
		return
	}
	item, err := ic.Repo.FindIssuedItemByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "issued item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}
