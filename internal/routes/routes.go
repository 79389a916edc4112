package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/config"
	"dayflow-backend/internal/handlers"
	"dayflow-backend/internal/middleware"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/services"
)

type Services struct {
	Auth       *services.AuthService
	Employees  *services.EmployeeService
	Attendance *services.AttendanceService
	Leaves     *services.LeaveService
	Payroll    *services.PayrollService
	Dashboard  *services.DashboardService
}

func Register(router *gin.Engine, svc Services, cfg config.Config) {
	router.Use(corsMiddleware(cfg.AllowedOrigins()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "DayFlow HRMS API"})
	})

	authHandler := handlers.NewAuthHandler(svc.Auth)
	employeeHandler := handlers.NewEmployeeHandler(svc.Employees)
	attendanceHandler := handlers.NewAttendanceHandler(svc.Attendance)
	leaveHandler := handlers.NewLeaveHandler(svc.Leaves)
	payrollHandler := handlers.NewPayrollHandler(svc.Payroll)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	staff := middleware.RequireRole(models.RoleHR, models.RoleManager)
	hrOnly := middleware.RequireRole(models.RoleHR)

	api := router.Group(cfg.ApiPrefix)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(svc.Auth))

	me := protected.Group("/auth")
	{
		me.POST("/logout", authHandler.Logout)
		me.GET("/profile", authHandler.Profile)
		me.PUT("/profile", authHandler.UpdateProfile)
		me.PUT("/profile/password", authHandler.ChangePassword)
	}

	employees := protected.Group("/employees")
	{
		employees.GET("", staff, employeeHandler.List)
		employees.GET("/stats", staff, employeeHandler.Stats)
		employees.POST("", hrOnly, employeeHandler.Create)
		employees.GET("/:id", employeeHandler.Get)
		employees.PUT("/:id", staff, employeeHandler.Update)
		employees.DELETE("/:id", hrOnly, employeeHandler.Delete)
	}

	attendance := protected.Group("/attendance")
	{
		attendance.POST("/check-in", attendanceHandler.CheckIn)
		attendance.POST("/check-out", attendanceHandler.CheckOut)
		attendance.GET("/my-attendance", attendanceHandler.MyAttendance)
		attendance.GET("/my-today", attendanceHandler.MyToday)
		attendance.GET("/all", staff, attendanceHandler.All)
		attendance.GET("/today", staff, attendanceHandler.Today)
		attendance.POST("/mark-leave", staff, attendanceHandler.MarkLeave)
	}

	leaves := protected.Group("/leaves")
	{
		leaves.POST("", leaveHandler.Create)
		leaves.GET("/my-leaves", leaveHandler.MyLeaves)
		leaves.GET("/all", staff, leaveHandler.All)
		leaves.GET("/stats", staff, leaveHandler.Stats)
		leaves.PATCH("/:id/status", staff, leaveHandler.UpdateStatus)
		leaves.DELETE("/:id", leaveHandler.Delete)
	}

	payroll := protected.Group("/payroll")
	{
		payroll.GET("/my-payroll", payrollHandler.MyPayroll)
		payroll.GET("/all", hrOnly, payrollHandler.All)
		payroll.POST("", hrOnly, payrollHandler.Create)
		payroll.GET("/:id", payrollHandler.Get)
		payroll.PUT("/:id", hrOnly, payrollHandler.Update)
		payroll.GET("/:id/payslip", payrollHandler.Payslip)
		payroll.POST("/:id/process-payment", hrOnly, payrollHandler.ProcessPayment)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/employee", dashboardHandler.Employee)
		dashboard.GET("/admin", staff, dashboardHandler.Admin)
		dashboard.GET("/reports", staff, dashboardHandler.Reports)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"status":  "fail",
			"message": "Route not found - " + c.Request.URL.Path,
		})
	})
}

// corsMiddleware allows every origin when none are configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
