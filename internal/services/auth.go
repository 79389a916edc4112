package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/utils"
)

const (
	msgDuplicateUser       = "User with this email or employee ID already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidRole         = "Invalid credentials for this role"
	msgAccountInactive     = "Account is not active"
	msgInvalidRefreshToken = "Invalid refresh token"
)

type AuthService struct {
	employees store.EmployeeRepository
	tokens    *utils.TokenIssuer
	clock     clock.Clock
}

func NewAuthService(employees store.EmployeeRepository, tokens *utils.TokenIssuer, clk clock.Clock) *AuthService {
	return &AuthService{employees: employees, tokens: tokens, clock: clk}
}

type SignupInput struct {
	EmployeeID string
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	Position   string
}

type Session struct {
	User         *models.Employee `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

func (s *AuthService) Register(ctx context.Context, in SignupInput) (*Session, error) {
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return nil, apperr.Validation("Invalid role")
	}
	employee := &models.Employee{
		EmployeeID: models.NormalizeEmployeeID(in.EmployeeID),
		Name:       strings.TrimSpace(in.Name),
		Email:      models.NormalizeEmail(in.Email),
		Role:       role,
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		JoinDate:   s.clock.Now(),
		Status:     models.EmployeeActive,
	}
	if err := ensureUniqueEmployee(ctx, s.employees, employee.Email, employee.EmployeeID, msgDuplicateUser); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	employee.PasswordHash = hash

	if err := s.employees.CreateEmployee(ctx, employee); err != nil {
		return nil, conflictOnDuplicate(err, msgDuplicateUser)
	}
	return s.startSession(ctx, employee)
}

func (s *AuthService) Login(ctx context.Context, email, password, role string) (*Session, error) {
	employee, err := s.employees.EmployeeByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(employee.PasswordHash, password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if role != "" && string(employee.Role) != strings.ToLower(strings.TrimSpace(role)) {
		return nil, apperr.Unauthorized(msgInvalidRole)
	}
	if employee.Status != models.EmployeeActive {
		return nil, apperr.Forbidden(msgAccountInactive)
	}
	return s.startSession(ctx, employee)
}

// startSession issues both tokens and stores the refresh token, replacing any earlier one.
func (s *AuthService) startSession(ctx context.Context, employee *models.Employee) (*Session, error) {
	access, err := s.tokens.GenerateAccessToken(employee.ID.String(), string(employee.Role), employee.EmployeeID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(employee.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.employees.SetRefreshToken(ctx, employee.ID, refresh); err != nil {
		return nil, err
	}
	employee.RefreshToken = refresh
	return &Session{User: employee, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh returns a new access token. The refresh token itself is left as is.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", apperr.Unauthorized(msgInvalidRefreshToken)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", apperr.Unauthorized(msgInvalidRefreshToken)
	}
	employee, err := s.employees.EmployeeByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.Unauthorized(msgInvalidRefreshToken)
	}
	if err != nil {
		return "", err
	}
	if employee.RefreshToken == "" || employee.RefreshToken != refreshToken {
		return "", apperr.Unauthorized(msgInvalidRefreshToken)
	}
	return s.tokens.GenerateAccessToken(employee.ID.String(), string(employee.Role), employee.EmployeeID)
}

func (s *AuthService) Logout(ctx context.Context, employee *models.Employee) error {
	return s.employees.SetRefreshToken(ctx, employee.ID, "")
}

// Authenticate resolves a bearer access token to the current, active employee record.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.Employee, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	employee, err := s.employees.EmployeeByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return nil, err
	}
	if employee.Status != models.EmployeeActive {
		return nil, apperr.Unauthorized(msgAccountInactive)
	}
	return employee, nil
}

type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Address *string
	Avatar  *string
}

func (s *AuthService) UpdateProfile(ctx context.Context, employee *models.Employee, in ProfileUpdate) (*models.Employee, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 2 {
			return nil, apperr.Validation("Name must be at least 2 characters")
		}
		employee.Name = name
	}
	if in.Phone != nil {
		employee.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		employee.Address = strings.TrimSpace(*in.Address)
	}
	if in.Avatar != nil {
		employee.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if err := s.employees.SaveEmployee(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

// ChangePassword also revokes the stored refresh token.
func (s *AuthService) ChangePassword(ctx context.Context, employee *models.Employee, current, next string) error {
	if !utils.CheckPassword(employee.PasswordHash, current) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	if len(next) < 6 {
		return apperr.Validation("Password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	employee.PasswordHash = hash
	if err := s.employees.SaveEmployee(ctx, employee); err != nil {
		return err
	}
	employee.RefreshToken = ""
	return s.employees.SetRefreshToken(ctx, employee.ID, "")
}
