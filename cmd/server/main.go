package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/config"
	"dayflow-backend/internal/db"
	"dayflow-backend/internal/email"
	"dayflow-backend/internal/routes"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/store/gormstore"
	"dayflow-backend/internal/store/memstore"
	"dayflow-backend/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	clk := clock.System(time.Local)

	var st store.Store
	if cfg.DbDriver == db.DriverMemory {
		log.Printf("using in-memory store; data is lost on restart")
		st = memstore.New(clk)
	} else {
		database, err := db.Open(cfg.DbDriver, cfg.DbDsn)
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		st = gormstore.New(database)
	}

	var sender services.Sender
	if cfg.SmtpEnabled() {
		sender = email.NewMailer(email.Config{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUser,
			Password: cfg.SmtpPass,
			From:     cfg.SmtpFrom,
		})
	}

	tokens := utils.NewTokenIssuer(utils.TokenConfig{
		AccessSecret:  cfg.JwtSecret,
		RefreshSecret: cfg.JwtRefreshSecret,
		AccessMinutes: cfg.JwtAccessMinutes,
		RefreshHours:  cfg.JwtRefreshHours,
	}, clk)

	attendance := services.NewAttendanceService(st, st, clk)
	notifications := services.NewNotificationService(st, st, sender)
	leaves := services.NewLeaveService(st, attendance, notifications, clk, cfg.AnnualLeaveDays)
	payroll := services.NewPayrollService(st, st, clk, services.Company{Name: cfg.CompanyName, Address: cfg.CompanyAddress})
	employees := services.NewEmployeeService(st, clk)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	routes.Register(router, routes.Services{
		Auth:       services.NewAuthService(st, tokens, clk),
		Employees:  employees,
		Attendance: attendance,
		Leaves:     leaves,
		Payroll:    payroll,
		Dashboard:  services.NewDashboardService(st, attendance, leaves, payroll, employees, notifications, clk),
	}, cfg)

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
