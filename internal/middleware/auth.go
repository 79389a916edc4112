package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
)

const ContextEmployee = "employee"

// AuthRequired resolves the bearer token to the stored employee. The role used
// downstream is the one on record, not the one in the token.
func AuthRequired(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		employee, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			kind := apperr.KindOf(err)
			if kind == apperr.KindInternal {
				log.Printf("%s %s: authenticate: %v", c.Request.Method, c.Request.URL.Path, err)
				abort(c, http.StatusInternalServerError, "Something went wrong")
				return
			}
			abort(c, apperr.HTTPStatus(kind), apperr.Message(err))
			return
		}

		c.Set(ContextEmployee, employee)
		c.Next()
	}
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee := CurrentEmployee(c)
		if employee == nil {
			abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, role := range roles {
			if employee.Role == role {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

// CurrentEmployee is nil outside AuthRequired.
func CurrentEmployee(c *gin.Context) *models.Employee {
	value, ok := c.Get(ContextEmployee)
	if !ok {
		return nil
	}
	employee, _ := value.(*models.Employee)
	return employee
}

func abort(c *gin.Context, status int, message string) {
	outcome := "fail"
	if status >= http.StatusInternalServerError {
		outcome = "error"
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "status": outcome, "message": message})
}
