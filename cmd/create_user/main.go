package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/db"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/store/gormstore"
)

// create_user bootstraps an account directly against the database, typically
// the first hr user on a fresh install.
func main() {
	if len(os.Args) < 5 {
		fmt.Println("usage: go run ./cmd/create_user <employeeId> <name> <email> <password> [role] [department]")
		os.Exit(2)
	}
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	database, err := db.Open(os.Getenv("DB_DRIVER"), dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	in := services.CreateEmployeeInput{
		EmployeeID: os.Args[1],
		Name:       os.Args[2],
		Email:      os.Args[3],
		Password:   os.Args[4],
		Role:       string(models.RoleHR),
		Department: "Administration",
		Position:   "Administrator",
	}
	if len(os.Args) > 5 {
		in.Role = os.Args[5]
	}
	if len(os.Args) > 6 {
		in.Department = os.Args[6]
	}

	employees := services.NewEmployeeService(gormstore.New(database), clock.System(time.Local))
	employee, err := employees.Create(context.Background(), in)
	if apperr.KindOf(err) == apperr.KindConflict {
		fmt.Printf("employee %s already exists\n", strings.ToUpper(in.EmployeeID))
		os.Exit(0)
	}
	if err != nil {
		if apperr.IsOperational(err) {
			log.Fatalf("invalid input: %s", apperr.Message(err))
		}
		log.Fatalf("failed to create employee: %v", err)
	}
	fmt.Printf("created %s %s id=%s\n", employee.Role, employee.EmployeeID, employee.ID)
}
