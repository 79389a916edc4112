package handlers

import (
	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type signupRequest struct {
	EmployeeID string `json:"employeeId" binding:"required,min=3"`
	Name       string `json:"name" binding:"required,min=2"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"omitempty,oneof=employee hr"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=employee hr"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type updateProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Avatar  *string `json:"avatar"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	session, err := h.Auth.Register(c.Request.Context(), services.SignupInput{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, "User registered successfully", session)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	session, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Login successful", session)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	token, err := h.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Token refreshed successfully", gin.H{"accessToken": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), middleware.CurrentEmployee(c)); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Logout successful", nil)
}

func (h *AuthHandler) Profile(c *gin.Context) {
	ok(c, "", gin.H{"user": middleware.CurrentEmployee(c)})
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	user, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.CurrentEmployee(c), services.ProfileUpdate{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Avatar:  req.Avatar,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Profile updated successfully", gin.H{"user": user})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), middleware.CurrentEmployee(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	ok(c, "Password updated successfully", nil)
}
