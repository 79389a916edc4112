package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/utils"
)

const msgLeaveNotFound = "Leave request not found"

type LeaveHandler struct {
	Leaves *services.LeaveService
}

type createLeaveRequest struct {
	LeaveType string `json:"leaveType" binding:"required,oneof=paid sick unpaid casual"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=10"`
}

type updateLeaveStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=Pending Approved Rejected"`
	Remarks string `json:"remarks"`
}

func NewLeaveHandler(leaves *services.LeaveService) *LeaveHandler {
	return &LeaveHandler{Leaves: leaves}
}

func (h *LeaveHandler) Create(c *gin.Context) {
	var req createLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	loc := h.Leaves.Location()
	start, err := utils.ParseDate(req.StartDate, loc)
	if err != nil {
		respondError(c, apperr.Validation("Invalid start date"))
		return
	}
	end, err := utils.ParseDate(req.EndDate, loc)
	if err != nil {
		respondError(c, apperr.Validation("Invalid end date"))
		return
	}

	leave, err := h.Leaves.Create(c.Request.Context(), middleware.CurrentEmployee(c), services.LeaveInput{
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Leave request submitted successfully", gin.H{"leave": leave})
}

func leaveStatusQuery(c *gin.Context) (models.LeaveStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return "", nil
	}
	status := models.LeaveStatus(raw)
	if !status.Valid() {
		return "", apperr.Validation("Invalid leave status")
	}
	return status, nil
}

func (h *LeaveHandler) MyLeaves(c *gin.Context) {
	status, err := leaveStatusQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), 10)
	list, err := h.Leaves.MyLeaves(c.Request.Context(), middleware.CurrentEmployee(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *LeaveHandler) All(c *gin.Context) {
	status, err := leaveStatusQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), 20)
	list, err := h.Leaves.All(c.Request.Context(), services.LeaveQuery{
		Status:       status,
		EmployeeCode: c.Query("employeeId"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	id, err := paramID(c, msgLeaveNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	leave, err := h.Leaves.UpdateStatus(c.Request.Context(), id, middleware.CurrentEmployee(c), models.LeaveStatus(req.Status), req.Remarks)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Leave request "+strings.ToLower(req.Status)+" successfully", gin.H{"leave": leave})
}

func (h *LeaveHandler) Delete(c *gin.Context) {
	id, err := paramID(c, msgLeaveNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Leaves.Delete(c.Request.Context(), id, middleware.CurrentEmployee(c)); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Leave request deleted successfully", nil)
}

func (h *LeaveHandler) Stats(c *gin.Context) {
	stats, err := h.Leaves.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", stats)
}
