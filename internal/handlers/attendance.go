package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/utils"
)

type AttendanceHandler struct {
	Attendance *services.AttendanceService
}

type geoRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type markLeaveRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Remarks string `json:"remarks"`
}

func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{Attendance: attendance}
}

// bindGeo reads the optional coordinates. An empty body means no location.
func bindGeo(c *gin.Context) (*models.GeoPoint, error) {
	var req geoRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return nil, err
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, nil
	}
	return &models.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude}, nil
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	geo, err := bindGeo(c)
	if err != nil {
		respondError(c, err)
		return
	}
	record, err := h.Attendance.CheckIn(c.Request.Context(), middleware.CurrentEmployee(c), geo)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Checked in successfully", gin.H{"attendance": record})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	geo, err := bindGeo(c)
	if err != nil {
		respondError(c, err)
		return
	}
	record, err := h.Attendance.CheckOut(c.Request.Context(), middleware.CurrentEmployee(c), geo)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Checked out successfully", gin.H{"attendance": record})
}

func (h *AttendanceHandler) query(c *gin.Context, defaultLimit int) (services.AttendanceQuery, error) {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), defaultLimit)
	q := services.AttendanceQuery{
		EmployeeCode: c.Query("employeeId"),
		Page:         page,
		Limit:        limit,
	}
	loc := h.Attendance.Location()
	var err error
	if q.From, err = dayParam(c, "startDate", loc); err != nil {
		return q, err
	}
	if q.To, err = dayParam(c, "endDate", loc); err != nil {
		return q, err
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			return q, apperr.Validation("Invalid attendance status")
		}
		q.Status = status
	}
	return q, nil
}

func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	q, err := h.query(c, 31)
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.Attendance.MyAttendance(c.Request.Context(), middleware.CurrentEmployee(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *AttendanceHandler) MyToday(c *gin.Context) {
	record, err := h.Attendance.MyToday(c.Request.Context(), middleware.CurrentEmployee(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", gin.H{"attendance": record})
}

func (h *AttendanceHandler) All(c *gin.Context) {
	q, err := h.query(c, 50)
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.Attendance.All(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *AttendanceHandler) Today(c *gin.Context) {
	summary, err := h.Attendance.Today(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", summary)
}

func (h *AttendanceHandler) MarkLeave(c *gin.Context) {
	var req markLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	ref, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(c, apperr.NotFound("User not found"))
		return
	}
	day, err := utils.ParseDate(req.Date, h.Attendance.Location())
	if err != nil {
		respondError(c, apperr.Validation("Invalid date"))
		return
	}
	record, err := h.Attendance.MarkLeave(c.Request.Context(), ref, day, req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Leave marked successfully", gin.H{"attendance": record})
}

func dayParam(c *gin.Context, key string, loc *time.Location) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	day, err := utils.ParseDate(raw, loc)
	if err != nil {
		return nil, apperr.Validation("Invalid " + key)
	}
	return &day, nil
}
