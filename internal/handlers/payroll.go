package handlers

import (
	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/utils"
)

const msgPayrollNotFound = "Payroll not found"

type PayrollHandler struct {
	Payroll *services.PayrollService
}

type createPayrollRequest struct {
	EmployeeID string                   `json:"employeeId" binding:"required"`
	Month      string                   `json:"month" binding:"required"`
	BaseSalary float64                  `json:"baseSalary" binding:"required,gt=0"`
	Allowances float64                  `json:"allowances" binding:"gte=0"`
	Deductions float64                  `json:"deductions" binding:"gte=0"`
	Bonus      float64                  `json:"bonus" binding:"gte=0"`
	Breakdown  *models.PayrollBreakdown `json:"breakdown"`
	Remarks    string                   `json:"remarks"`
}

type updatePayrollRequest struct {
	BaseSalary *float64                 `json:"baseSalary" binding:"omitempty,gt=0"`
	Allowances *float64                 `json:"allowances" binding:"omitempty,gte=0"`
	Deductions *float64                 `json:"deductions" binding:"omitempty,gte=0"`
	Bonus      *float64                 `json:"bonus" binding:"omitempty,gte=0"`
	Breakdown  *models.PayrollBreakdown `json:"breakdown"`
	Remarks    *string                  `json:"remarks"`
}

type processPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

func NewPayrollHandler(payroll *services.PayrollService) *PayrollHandler {
	return &PayrollHandler{Payroll: payroll}
}

func (h *PayrollHandler) Create(c *gin.Context) {
	var req createPayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	in := services.PayrollInput{
		EmployeeCode: req.EmployeeID,
		Month:        req.Month,
		BaseSalary:   req.BaseSalary,
		Allowances:   req.Allowances,
		Deductions:   req.Deductions,
		Bonus:        req.Bonus,
		Remarks:      req.Remarks,
	}
	if req.Breakdown != nil {
		in.Breakdown = *req.Breakdown
	}
	payroll, err := h.Payroll.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Payroll created successfully", gin.H{"payroll": payroll})
}

func (h *PayrollHandler) Update(c *gin.Context) {
	id, err := paramID(c, msgPayrollNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var req updatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	payroll, err := h.Payroll.Update(c.Request.Context(), id, services.PayrollUpdate{
		BaseSalary: req.BaseSalary,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
		Bonus:      req.Bonus,
		Breakdown:  req.Breakdown,
		Remarks:    req.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Payroll updated successfully", gin.H{"payroll": payroll})
}

func (h *PayrollHandler) ProcessPayment(c *gin.Context) {
	id, err := paramID(c, msgPayrollNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var req processPaymentRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	payroll, err := h.Payroll.ProcessPayment(c.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Payment processed successfully", gin.H{"payroll": payroll})
}

func (h *PayrollHandler) MyPayroll(c *gin.Context) {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), 12)
	list, err := h.Payroll.MyPayroll(c.Request.Context(), middleware.CurrentEmployee(c), c.Query("month"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *PayrollHandler) All(c *gin.Context) {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), 20)
	q := services.PayrollQuery{
		Month:        c.Query("month"),
		EmployeeCode: c.Query("employeeId"),
		Page:         page,
		Limit:        limit,
	}
	if raw := c.Query("status"); raw != "" {
		q.Status = models.PayrollStatus(raw)
		if !q.Status.Valid() {
			respondError(c, apperr.Validation("Invalid payroll status"))
			return
		}
	}
	list, err := h.Payroll.All(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *PayrollHandler) Get(c *gin.Context) {
	id, err := paramID(c, msgPayrollNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	payroll, err := h.Payroll.Get(c.Request.Context(), id, middleware.CurrentEmployee(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", gin.H{"payroll": payroll})
}

func (h *PayrollHandler) Payslip(c *gin.Context) {
	id, err := paramID(c, msgPayrollNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	slip, err := h.Payroll.Payslip(c.Request.Context(), id, middleware.CurrentEmployee(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", gin.H{"payslip": slip})
}
