// controllers/equipment_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_clearance_tool/app"
	"Gin_postgres_redis_clearance_tool/db"
	"Gin_postgres_redis_clearance_tool/models"

	"github.com/gin-gonic/gin"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// 管理员录入设备
func (ec *EquipmentController) CreateEquipment(c *gin.Context) {
	var in struct {
		Name         string     `json:"name" binding:"required"`
		Category     string     `json:"category" binding:"required"`
		CategoryCode string     `json:"categoryCode" binding:"required"`
		SerialNumber string     `json:"serialNumber" binding:"required"`
		Quantity     int        `json:"quantity" binding:"required,min=1"`
		DateReceived *time.Time `json:"dateReceived"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	received := time.Now().UTC()
	if in.DateReceived != nil {
		received = *in.DateReceived
	}
	eq := &models.Equipment{
		Name:         in.Name,
		Category:     in.Category,
		CategoryCode: in.CategoryCode,
		SerialNumber: in.SerialNumber,
		Quantity:     in.Quantity,
		Condition:    "Good",
		IsActive:     true,
		DateReceived: received,
	}
	if err := ec.Repo.CreateEquipment(c.Request.Context(), eq); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, eq)
}

// GET /api/equipment?q=&category=&active=&page=&size=
func (ec *EquipmentController) ListEquipment(c *gin.Context) {
	q := db.EquipmentQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
	}
	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			q.Active = &b
		}
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ec.Repo.ListEquipment(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ec *EquipmentController) GetEquipment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipment id"})
		return
	}
	eq, err := ec.Repo.FindEquipmentByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "equipment not found"})
		return
	}
	c.JSON(http.StatusOK, eq)
}

// PUT /api/equipment/:id — 数量类字段不在这里改，只能走发放/归还/清退流程
func (ec *EquipmentController) UpdateEquipment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipment id"})
		return
	}
	var in struct {
		Name         *string `json:"name"`
		Category     *string `json:"category"`
		CategoryCode *string `json:"categoryCode"`
		Condition    *string `json:"condition"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.CategoryCode != nil {
		fields["category_code"] = *in.CategoryCode
	}
	if in.Condition != nil {
		fields["condition"] = *in.Condition
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}
	if err := ec.Repo.UpdateEquipment(c.Request.Context(), uint(id), fields); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/equipment/:id/active
func (ec *EquipmentController) SetActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid equipment id"})
		return
	}
	var in struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := ec.Repo.SetEquipmentActive(c.Request.Context(), uint(id), *in.Active); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
