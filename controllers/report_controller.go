// controllers/report_controller.go
package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_clearance_tool/app"

	"github.com/gin-gonic/gin"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /admin/clearance-report — 每个领用人一行，状态现算
func (rc *ReportController) ClearanceReport(c *gin.Context) {
	rows, err := rc.Repo.ClearanceReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"rows": rows})
}

// GET /admin/clearance-report/export — CSV 下载
func (rc *ReportController) ExportClearanceReport(c *gin.Context) {
	rows, err := rc.Repo.ClearanceReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("clearance_report_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename="+filename)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Recipient Type", "Recipient ID", "Recipient Name", "Status", "Items", "Outstanding", "Unresolved"})
	for _, r := range rows {
		_ = w.Write([]string{
			r.RecipientType,
			r.RecipientID,
			r.RecipientName,
			string(r.Status),
			strconv.Itoa(r.ItemCount),
			strconv.Itoa(r.Outstanding),
			strconv.Itoa(r.Unresolved),
		})
	}
	w.Flush()
}
