package handlers

import (
	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/utils"
)

const msgEmployeeNotFound = "Employee not found"

type EmployeeHandler struct {
	Employees *services.EmployeeService
}

type createEmployeeRequest struct {
	EmployeeID string   `json:"employeeId" binding:"required,min=3"`
	Name       string   `json:"name" binding:"required,min=2"`
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=6"`
	Department string   `json:"department" binding:"required"`
	Position   string   `json:"position" binding:"required"`
	Role       string   `json:"role" binding:"omitempty,oneof=employee hr manager"`
	Salary     *float64 `json:"salary" binding:"omitempty,gt=0"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
}

type updateEmployeeRequest struct {
	Name       *string  `json:"name" binding:"omitempty,min=2"`
	Department *string  `json:"department"`
	Position   *string  `json:"position"`
	Role       *string  `json:"role" binding:"omitempty,oneof=employee hr manager"`
	Salary     *float64 `json:"salary" binding:"omitempty,gte=0"`
	Phone      *string  `json:"phone"`
	Address    *string  `json:"address"`
	Status     *string  `json:"status" binding:"omitempty,oneof=active inactive on-leave"`
}

func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{Employees: employees}
}

func (h *EmployeeHandler) List(c *gin.Context) {
	page, limit := utils.ParsePage(c.Query("page"), c.Query("limit"), 10)
	q := services.EmployeeQuery{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Page:       page,
		Limit:      limit,
	}
	if raw := c.Query("status"); raw != "" {
		q.Status = models.EmployeeStatus(raw)
		if !q.Status.Valid() {
			respondError(c, apperr.Validation("Invalid status"))
			return
		}
	}
	list, err := h.Employees.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", list)
}

func (h *EmployeeHandler) Stats(c *gin.Context) {
	stats, err := h.Employees.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", stats)
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := paramID(c, msgEmployeeNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	employee, err := h.Employees.View(c.Request.Context(), middleware.CurrentEmployee(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "", gin.H{"employee": employee})
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	employee, err := h.Employees.Create(c.Request.Context(), services.CreateEmployeeInput{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Position:   req.Position,
		Role:       req.Role,
		Salary:     req.Salary,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "Employee created successfully", gin.H{"employee": employee})
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := paramID(c, msgEmployeeNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	employee, err := h.Employees.Update(c.Request.Context(), middleware.CurrentEmployee(c), id, services.EmployeeUpdate{
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Role:       req.Role,
		Salary:     req.Salary,
		Phone:      req.Phone,
		Address:    req.Address,
		Status:     req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Employee updated successfully", gin.H{"employee": employee})
}

// Delete deactivates; records are kept for the ledgers that reference them.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, err := paramID(c, msgEmployeeNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Employees.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Employee deactivated successfully", nil)
}
