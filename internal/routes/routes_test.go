package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/config"
	"dayflow-backend/internal/report"
	"dayflow-backend/internal/services"
	"dayflow-backend/internal/store/memstore"
	"dayflow-backend/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json body=%s: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data body=%s: %v", rec.Body.String(), err)
		}
	}
	return env
}

func setupTestServer(t *testing.T) (*gin.Engine, *clock.Fixed) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewFixed(time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC))
	st := memstore.New(clk)
	tokens := utils.NewTokenIssuer(utils.TokenConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessMinutes: 60,
		RefreshHours:  24,
	}, clk)

	attendance := services.NewAttendanceService(st, st, clk)
	notifications := services.NewNotificationService(st, st, nil)
	leaves := services.NewLeaveService(st, attendance, notifications, clk, 20)
	payroll := services.NewPayrollService(st, st, clk, services.Company{Name: "DayFlow HRMS"})
	employees := services.NewEmployeeService(st, clk)

	r := gin.New()
	Register(r, Services{
		Auth:       services.NewAuthService(st, tokens, clk),
		Employees:  employees,
		Attendance: attendance,
		Leaves:     leaves,
		Payroll:    payroll,
		Dashboard:  services.NewDashboardService(st, attendance, leaves, payroll, employees, notifications, clk),
	}, config.Config{ApiPrefix: "/api"})
	return r, clk
}

type session struct {
	User struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employeeId"`
		Role       string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func signup(t *testing.T, r http.Handler, code, role string) session {
	t.Helper()
	body := map[string]string{
		"employeeId": code,
		"name":       "User " + code,
		"email":      code + "@dayflow.test",
		"password":   "secret123",
		"department": "Engineering",
	}
	if role != "" {
		body["role"] = role
	}
	resp := performRequest(r, http.MethodPost, "/api/auth/signup", body, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("signup %s failed status=%d body=%s", code, resp.Code, resp.Body.String())
	}
	var s session
	decode(t, resp, &s)
	if s.AccessToken == "" || s.RefreshToken == "" {
		t.Fatalf("expected tokens in signup response, got %+v", s)
	}
	return s
}

func login(t *testing.T, r http.Handler, email, password string) session {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s failed status=%d body=%s", email, resp.Code, resp.Body.String())
	}
	var s session
	decode(t, resp, &s)
	return s
}

type attendanceRecord struct {
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	Status     string  `json:"status"`
	Hours      float64 `json:"hours"`
}

func TestCheckInCheckOutFlow(t *testing.T) {
	r, clk := setupTestServer(t)

	signup(t, r, "EMP100", "")
	s := login(t, r, "emp100@dayflow.test", "secret123")
	if s.User.EmployeeID != "EMP100" || s.User.Role != "employee" {
		t.Fatalf("unexpected user %+v", s.User)
	}

	resp := performRequest(r, http.MethodPost, "/api/attendance/check-in", nil, s.AccessToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("check-in failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodPost, "/api/attendance/check-in", nil, s.AccessToken)
	env := decode(t, resp, nil)
	if resp.Code != http.StatusBadRequest || env.Success || env.Message != "Already checked in today" {
		t.Fatalf("expected duplicate check-in to fail, got status=%d body=%s", resp.Code, resp.Body.String())
	}

	clk.Set(time.Date(2026, 1, 12, 17, 30, 0, 0, time.UTC))
	resp = performRequest(r, http.MethodPost, "/api/attendance/check-out", nil, s.AccessToken)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected the morning access token to have expired, got status=%d", resp.Code)
	}
	s = login(t, r, "emp100@dayflow.test", "secret123")
	resp = performRequest(r, http.MethodPost, "/api/attendance/check-out", map[string]float64{"latitude": 12.9, "longitude": 77.6}, s.AccessToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("check-out failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		Attendance attendanceRecord `json:"attendance"`
	}
	decode(t, resp, &out)
	if out.Attendance.Hours != 8.5 || out.Attendance.Status != "Present" {
		t.Fatalf("expected 8.5 hours Present, got %+v", out.Attendance)
	}

	resp = performRequest(r, http.MethodGet, "/api/attendance/my-attendance", nil, s.AccessToken)
	var mine struct {
		Attendance []attendanceRecord `json:"attendance"`
		Stats      struct {
			Present int `json:"present"`
		} `json:"stats"`
		Pagination utils.Pagination `json:"pagination"`
	}
	decode(t, resp, &mine)
	if len(mine.Attendance) != 1 || mine.Stats.Present != 1 || mine.Pagination.Limit != 31 {
		t.Fatalf("unexpected my-attendance body=%s", resp.Body.String())
	}
}

func TestLeaveApprovalMarksAttendance(t *testing.T) {
	r, _ := setupTestServer(t)

	emp := signup(t, r, "EMP100", "")
	hr := signup(t, r, "HR001", "hr")

	resp := performRequest(r, http.MethodPost, "/api/employees", map[string]any{
		"employeeId": "MGR001",
		"name":       "Morgan Manager",
		"email":      "mgr001@dayflow.test",
		"password":   "secret123",
		"department": "Engineering",
		"position":   "Lead",
		"role":       "manager",
	}, hr.AccessToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create manager failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	manager := login(t, r, "mgr001@dayflow.test", "secret123")

	resp = performRequest(r, http.MethodPost, "/api/leaves", map[string]string{
		"leaveType": "sick",
		"startDate": "2026-02-01",
		"endDate":   "2026-02-02",
		"reason":    "Flu, need rest",
	}, emp.AccessToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create leave failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var created struct {
		Leave struct {
			ID   string  `json:"id"`
			Days float64 `json:"days"`
		} `json:"leave"`
	}
	decode(t, resp, &created)
	if created.Leave.Days != 2 {
		t.Fatalf("expected 2 days, got %v", created.Leave.Days)
	}

	resp = performRequest(r, http.MethodPatch, "/api/leaves/"+created.Leave.ID+"/status", map[string]string{"status": "Approved"}, emp.AccessToken)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected employee approval to be forbidden, got status=%d", resp.Code)
	}

	resp = performRequest(r, http.MethodPatch, "/api/leaves/"+created.Leave.ID+"/status", map[string]string{"status": "Approved", "remarks": "get well"}, manager.AccessToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("approve failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodPatch, "/api/leaves/"+created.Leave.ID+"/status", map[string]string{"status": "Rejected"}, manager.AccessToken)
	env := decode(t, resp, nil)
	if resp.Code != http.StatusBadRequest || env.Message != "Leave request has already been processed" {
		t.Fatalf("expected processed conflict, got status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodGet, "/api/attendance/all?employeeId=EMP100&startDate=2026-02-01&endDate=2026-02-02", nil, hr.AccessToken)
	var all struct {
		Attendance []attendanceRecord `json:"attendance"`
	}
	decode(t, resp, &all)
	if len(all.Attendance) != 2 {
		t.Fatalf("expected 2 attendance days, got body=%s", resp.Body.String())
	}
	for _, a := range all.Attendance {
		if a.Status != "Leave" {
			t.Fatalf("expected Leave, got %+v", a)
		}
	}

	resp = performRequest(r, http.MethodGet, "/api/leaves/my-leaves", nil, emp.AccessToken)
	var mine struct {
		Balance struct {
			Used      float64 `json:"used"`
			Remaining float64 `json:"remaining"`
		} `json:"balance"`
	}
	decode(t, resp, &mine)
	if mine.Balance.Used != 2 || mine.Balance.Remaining != 18 {
		t.Fatalf("unexpected balance body=%s", resp.Body.String())
	}
}

func TestPayrollEndpoints(t *testing.T) {
	r, _ := setupTestServer(t)
	emp := signup(t, r, "EMP100", "")
	other := signup(t, r, "EMP200", "")
	hr := signup(t, r, "HR001", "hr")

	body := map[string]any{"employeeId": "EMP100", "month": "January 2026", "baseSalary": 5000, "allowances": 500, "bonus": 500, "deductions": 200}
	resp := performRequest(r, http.MethodPost, "/api/payroll", body, emp.AccessToken)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected employee payroll create to be forbidden, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodPost, "/api/payroll", body, hr.AccessToken)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create payroll failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var created struct {
		Payroll struct {
			ID        string  `json:"id"`
			Tax       float64 `json:"tax"`
			NetSalary float64 `json:"netSalary"`
		} `json:"payroll"`
	}
	decode(t, resp, &created)
	if created.Payroll.Tax != 600 || created.Payroll.NetSalary != 5200 {
		t.Fatalf("unexpected payroll body=%s", resp.Body.String())
	}

	resp = performRequest(r, http.MethodPost, "/api/payroll", body, hr.AccessToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate month to fail, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodPost, "/api/payroll", map[string]any{"employeeId": "EMP100", "month": "February 2026", "baseSalary": 0}, hr.AccessToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected zero base salary to fail validation, got %d", resp.Code)
	}

	slipPath := "/api/payroll/" + created.Payroll.ID + "/payslip"
	if resp = performRequest(r, http.MethodGet, slipPath, nil, other.AccessToken); resp.Code != http.StatusForbidden {
		t.Fatalf("expected other employee payslip to be forbidden, got %d", resp.Code)
	}
	if resp = performRequest(r, http.MethodGet, slipPath, nil, emp.AccessToken); resp.Code != http.StatusOK {
		t.Fatalf("owner payslip failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	payPath := "/api/payroll/" + created.Payroll.ID + "/process-payment"
	if resp = performRequest(r, http.MethodPost, payPath, nil, hr.AccessToken); resp.Code != http.StatusOK {
		t.Fatalf("process payment failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPut, "/api/payroll/"+created.Payroll.ID, map[string]any{"bonus": 100}, hr.AccessToken)
	env := decode(t, resp, nil)
	if resp.Code != http.StatusBadRequest || env.Message != "Cannot update paid payroll" {
		t.Fatalf("expected paid payroll update to fail, got status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodGet, "/api/payroll/my-payroll", nil, emp.AccessToken)
	var mine struct {
		CurrentPayroll *struct {
			Status string `json:"status"`
		} `json:"currentPayroll"`
	}
	decode(t, resp, &mine)
	if mine.CurrentPayroll == nil || mine.CurrentPayroll.Status != "Paid" {
		t.Fatalf("unexpected my-payroll body=%s", resp.Body.String())
	}
}

func TestAuthAndEnvelope(t *testing.T) {
	r, _ := setupTestServer(t)

	resp := performRequest(r, http.MethodGet, "/api/health", nil, "")
	if env := decode(t, resp, nil); resp.Code != http.StatusOK || !env.Success {
		t.Fatalf("health failed status=%d", resp.Code)
	}

	resp = performRequest(r, http.MethodGet, "/api/auth/profile", nil, "")
	env := decode(t, resp, nil)
	if resp.Code != http.StatusUnauthorized || env.Success || env.Status != "fail" {
		t.Fatalf("expected 401 fail envelope, got status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodPost, "/api/auth/signup", map[string]string{"employeeId": "E1", "name": "X", "email": "bad", "password": "1"}, "")
	env = decode(t, resp, nil)
	if resp.Code != http.StatusBadRequest || env.Message == "" {
		t.Fatalf("expected validation failure, got status=%d body=%s", resp.Code, resp.Body.String())
	}

	s := signup(t, r, "EMP100", "")
	resp = performRequest(r, http.MethodPost, "/api/auth/signup", map[string]string{"employeeId": "EMP100", "name": "Again", "email": "again@dayflow.test", "password": "secret123"}, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected duplicate signup to fail, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodGet, "/api/attendance/all", nil, s.AccessToken)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected employee to be forbidden from all attendance, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodPost, "/api/auth/refresh-token", map[string]string{"refreshToken": s.RefreshToken}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/auth/logout", nil, s.AccessToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("logout failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/api/auth/refresh-token", map[string]string{"refreshToken": s.RefreshToken}, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected refresh after logout to fail, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodPut, "/api/auth/profile", map[string]string{"name": "Renamed User", "phone": "555-0100"}, s.AccessToken)
	var profile struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	decode(t, resp, &profile)
	if resp.Code != http.StatusOK || profile.User.Name != "Renamed User" {
		t.Fatalf("profile update failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodGet, "/api/nowhere", nil, "")
	env = decode(t, resp, nil)
	if resp.Code != http.StatusNotFound || env.Success {
		t.Fatalf("expected 404 envelope, got status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestReportsEndpoint(t *testing.T) {
	r, _ := setupTestServer(t)
	emp := signup(t, r, "EMP100", "")
	hr := signup(t, r, "HR001", "hr")
	performRequest(r, http.MethodPost, "/api/attendance/check-in", nil, emp.AccessToken)

	resp := performRequest(r, http.MethodGet, "/api/dashboard/reports?type=bogus", nil, hr.AccessToken)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid report type to fail, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/api/dashboard/reports?type=attendance", nil, emp.AccessToken)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected employee reports to be forbidden, got %d", resp.Code)
	}

	resp = performRequest(r, http.MethodGet, "/api/dashboard/reports?type=attendance&startDate=2026-01-01&endDate=2026-01-31", nil, hr.AccessToken)
	var rep struct {
		Type string             `json:"type"`
		Data []attendanceRecord `json:"data"`
	}
	decode(t, resp, &rep)
	if resp.Code != http.StatusOK || rep.Type != "attendance" || len(rep.Data) != 1 {
		t.Fatalf("unexpected report status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodGet, "/api/dashboard/reports?type=employee&format=xlsx", nil, hr.AccessToken)
	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != report.ContentType {
		t.Fatalf("expected xlsx, got status=%d type=%q", resp.Code, resp.Header().Get("Content-Type"))
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}

	resp = performRequest(r, http.MethodGet, "/api/dashboard/admin", nil, hr.AccessToken)
	var admin struct {
		Employees struct {
			Total int `json:"total"`
		} `json:"employees"`
	}
	decode(t, resp, &admin)
	if resp.Code != http.StatusOK || admin.Employees.Total != 2 {
		t.Fatalf("unexpected admin dashboard status=%d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodGet, "/api/dashboard/employee", nil, emp.AccessToken)
	if resp.Code != http.StatusOK {
		t.Fatalf("employee dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestManagerCannotPromoteThemselves(t *testing.T) {
	r, _ := setupTestServer(t)
	hr := signup(t, r, "HR001", "hr")
	colleague := signup(t, r, "EMP100", "")

	create := func(code, role string, salary float64) string {
		resp := performRequest(r, http.MethodPost, "/api/employees", map[string]any{
			"employeeId": code,
			"name":       "User " + code,
			"email":      code + "@dayflow.test",
			"password":   "secret123",
			"department": "Engineering",
			"position":   "Lead",
			"role":       role,
			"salary":     salary,
		}, hr.AccessToken)
		if resp.Code != http.StatusCreated {
			t.Fatalf("create %s failed status=%d body=%s", code, resp.Code, resp.Body.String())
		}
		var out struct {
			Employee struct {
				ID string `json:"id"`
			} `json:"employee"`
		}
		decode(t, resp, &out)
		return out.Employee.ID
	}
	managerID := create("MGR001", "manager", 7000)
	workerID := create("EMP200", "employee", 4000)
	manager := login(t, r, "mgr001@dayflow.test", "secret123")

	payroll := map[string]any{"employeeId": "EMP200", "month": "January 2026", "baseSalary": 4000}
	if resp := performRequest(r, http.MethodPost, "/api/payroll", payroll, manager.AccessToken); resp.Code != http.StatusForbidden {
		t.Fatalf("expected manager payroll create to be forbidden, got %d", resp.Code)
	}
	for _, body := range []map[string]any{{"role": "hr"}, {"salary": 9000}, {"status": "inactive"}} {
		if resp := performRequest(r, http.MethodPut, "/api/employees/"+managerID, body, manager.AccessToken); resp.Code != http.StatusForbidden {
			t.Fatalf("expected %v to be forbidden, got status=%d body=%s", body, resp.Code, resp.Body.String())
		}
	}
	if resp := performRequest(r, http.MethodPost, "/api/payroll", payroll, manager.AccessToken); resp.Code != http.StatusForbidden {
		t.Fatalf("manager gained payroll access, got %d", resp.Code)
	}
	if resp := performRequest(r, http.MethodPut, "/api/employees/"+workerID, map[string]any{"position": "Senior"}, manager.AccessToken); resp.Code != http.StatusOK {
		t.Fatalf("manager should still edit work details, got status=%d body=%s", resp.Code, resp.Body.String())
	}

	type viewed struct {
		Employee struct {
			Salary *float64 `json:"salary"`
		} `json:"employee"`
	}
	var seen viewed
	decode(t, performRequest(r, http.MethodGet, "/api/employees/"+workerID, nil, colleague.AccessToken), &seen)
	if seen.Employee.Salary != nil {
		t.Fatalf("colleague should not see salary, got %v", *seen.Employee.Salary)
	}
	seen = viewed{}
	decode(t, performRequest(r, http.MethodGet, "/api/employees/"+workerID, nil, manager.AccessToken), &seen)
	if seen.Employee.Salary == nil || *seen.Employee.Salary != 4000 {
		t.Fatalf("manager should see salary, got %+v", seen.Employee)
	}
}
