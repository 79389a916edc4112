package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
)

func ok(c *gin.Context, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

// respondError writes the failure envelope. Errors that are not operational are
// logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	message := apperr.Message(err)
	if kind == apperr.KindInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "Something went wrong"
	}
	outcome := "fail"
	if status >= http.StatusInternalServerError {
		outcome = "error"
	}
	c.JSON(status, gin.H{"success": false, "status": outcome, "message": message})
}

// bindError turns a binding failure into a validation error naming the offending fields.
func bindError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return apperr.Validation("Invalid input")
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fieldMessage(f))
	}
	return apperr.Validation(strings.Join(parts, "; "))
}

func fieldMessage(f validator.FieldError) string {
	name := f.Field()
	switch f.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, f.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, f.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, f.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", name)
	}
	return name + " is invalid"
}

// bindOptionalJSON binds a body that may be absent. An empty body leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err)
	}
	return nil
}

func paramID(c *gin.Context, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(message)
	}
	return id, nil
}
