package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/report"
	"dayflow-backend/internal/services"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

func (h *DashboardHandler) Employee(c *gin.Context) {
	view, err := h.Dashboard.Employee(c.Request.Context(), middleware.CurrentEmployee(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", view)
}

func (h *DashboardHandler) Admin(c *gin.Context) {
	view, err := h.Dashboard.Admin(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", view)
}

// Reports answers JSON by default and an xlsx workbook with format=xlsx.
func (h *DashboardHandler) Reports(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "xlsx" {
		respondError(c, apperr.Validation("Invalid report format"))
		return
	}
	loc := h.Dashboard.Location()
	start, err := dayParam(c, "startDate", loc)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := dayParam(c, "endDate", loc)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.Dashboard.Report(c.Request.Context(), services.ReportQuery{
		Type:         c.Query("type"),
		Start:        start,
		End:          end,
		EmployeeCode: c.Query("employeeId"),
		Department:   c.Query("department"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if format == "json" {
		ok(c, "", result)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, result.Tables()...); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-report.xlsx"`, result.Type))
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}
