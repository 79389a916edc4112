package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"dayflow-backend/internal/apperr"
	"dayflow-backend/internal/clock"
	"dayflow-backend/internal/models"
	"dayflow-backend/internal/store"
	"dayflow-backend/internal/utils"
)

const (
	msgLeaveNotFound     = "Leave request not found"
	msgLeaveProcessed    = "Leave request has already been processed"
	msgDeleteOwnLeave    = "You can only delete your own leave requests"
	msgDeletePendingOnly = "Only pending leave requests can be deleted"

	defaultMyLeavesLimit  = 10
	defaultAllLeavesLimit = 20
)

// DaySetter writes one attendance day. AttendanceService is the production implementation.
type DaySetter interface {
	SetDayStatus(ctx context.Context, in DayStatusInput) (*models.Attendance, error)
}

type Notifier interface {
	Notify(ctx context.Context, employeeRef uuid.UUID, title, message string, kind models.NotificationType) error
}

type LeaveService struct {
	leaves    store.LeaveRepository
	days      DaySetter
	notifier  Notifier
	clock     clock.Clock
	allowance float64
}

// NewLeaveService uses allowance days per calendar year; zero or less falls back to the default.
func NewLeaveService(leaves store.LeaveRepository, days DaySetter, notifier Notifier, clk clock.Clock, allowance int) *LeaveService {
	if allowance <= 0 {
		allowance = models.AnnualLeaveAllowance
	}
	return &LeaveService{leaves: leaves, days: days, notifier: notifier, clock: clk, allowance: float64(allowance)}
}

func (s *LeaveService) Location() *time.Location {
	return s.clock.Now().Location()
}

type LeaveInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (s *LeaveService) Create(ctx context.Context, employee *models.Employee, in LeaveInput) (*models.Leave, error) {
	leaveType := models.LeaveType(strings.ToLower(strings.TrimSpace(in.LeaveType)))
	if !leaveType.Valid() {
		return nil, apperr.Validation("Invalid leave type")
	}
	reason := strings.TrimSpace(in.Reason)
	if len(reason) < models.MinReasonLength {
		return nil, apperr.Validation("Reason must be at least 10 characters")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperr.Validation("End date must be after start date")
	}

	days := models.CalculateLeaveDays(in.StartDate, in.EndDate)
	leave := &models.Leave{
		EmployeeRef:  employee.ID,
		EmployeeCode: employee.EmployeeID,
		EmployeeName: employee.Name,
		LeaveType:    leaveType,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Days:         days,
		Reason:       reason,
		Status:       models.LeavePending,
		AppliedDate:  s.clock.Now(),
	}
	if err := s.leaves.CreateLeave(ctx, leave); err != nil {
		return nil, err
	}

	// Only the requester hears about a new request; approvers find it in the pending list.
	message := fmt.Sprintf("Your leave request for %s day(s) has been submitted", formatDays(days))
	if err := s.notifier.Notify(ctx, employee.ID, "Leave Request Submitted", message, models.NotificationInfo); err != nil {
		log.Printf("leave %s: notify requester: %v", leave.ID, err)
	}
	return leave, nil
}

type LeaveBalance struct {
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

// Balance is recomputed from the ledger on every call: approved days starting
// this calendar year against the annual allowance.
func (s *LeaveService) Balance(ctx context.Context, employeeRef uuid.UUID) (LeaveBalance, error) {
	yearStart := clock.StartOfYear(s.clock.Now())
	approved, _, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{
		EmployeeRef: &employeeRef,
		Status:      models.LeaveApproved,
		StartFrom:   &yearStart,
	})
	if err != nil {
		return LeaveBalance{}, err
	}
	var used float64
	for _, l := range approved {
		used += l.Days
	}
	return LeaveBalance{Total: s.allowance, Used: used, Remaining: s.allowance - used}, nil
}

type LeaveStatusStat struct {
	Status    models.LeaveStatus `json:"status"`
	Count     int                `json:"count"`
	TotalDays float64            `json:"totalDays"`
}

type LeaveList struct {
	Leaves     []models.Leave    `json:"leaves"`
	Balance    *LeaveBalance     `json:"balance,omitempty"`
	Stats      []LeaveStatusStat `json:"stats,omitempty"`
	Pagination utils.Pagination  `json:"pagination"`
}

func (s *LeaveService) MyLeaves(ctx context.Context, employee *models.Employee, status models.LeaveStatus, pageNum, limit int) (*LeaveList, error) {
	p := page(pageNum, limit, defaultMyLeavesLimit)
	ref := employee.ID
	leaves, total, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{EmployeeRef: &ref, Status: status, Page: p})
	if err != nil {
		return nil, err
	}
	balance, err := s.Balance(ctx, employee.ID)
	if err != nil {
		return nil, err
	}
	return &LeaveList{Leaves: leaves, Balance: &balance, Pagination: pagination(total, p)}, nil
}

type LeaveQuery struct {
	Status       models.LeaveStatus
	EmployeeCode string
	Page         int
	Limit        int
}

// All pages every request; Stats groups the whole ledger by status.
func (s *LeaveService) All(ctx context.Context, q LeaveQuery) (*LeaveList, error) {
	p := page(q.Page, q.Limit, defaultAllLeavesLimit)
	leaves, total, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{
		Status:       q.Status,
		EmployeeCode: models.NormalizeEmployeeID(q.EmployeeCode),
		Page:         p,
	})
	if err != nil {
		return nil, err
	}
	everything, _, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{})
	if err != nil {
		return nil, err
	}
	byStatus := map[models.LeaveStatus]*LeaveStatusStat{}
	order := []models.LeaveStatus{models.LeavePending, models.LeaveApproved, models.LeaveRejected}
	for _, st := range order {
		byStatus[st] = &LeaveStatusStat{Status: st}
	}
	for _, l := range everything {
		if stat, ok := byStatus[l.Status]; ok {
			stat.Count++
			stat.TotalDays += l.Days
		}
	}
	stats := make([]LeaveStatusStat, 0, len(order))
	for _, st := range order {
		if byStatus[st].Count > 0 {
			stats = append(stats, *byStatus[st])
		}
	}
	return &LeaveList{Leaves: leaves, Stats: stats, Pagination: pagination(total, p)}, nil
}

// UpdateStatus decides a pending request. The decision is stored first; on
// approval every day of the range is then forced to Leave one day at a time.
// A failing day stops the sync and the days already written stay written.
func (s *LeaveService) UpdateStatus(ctx context.Context, id uuid.UUID, approver *models.Employee, status models.LeaveStatus, remarks string) (*models.Leave, error) {
	if !approver.Role.CanApprove() {
		return nil, apperr.Forbidden(msgNoPermission)
	}
	if status != models.LeaveApproved && status != models.LeaveRejected {
		return nil, apperr.Validation("Status must be Approved or Rejected")
	}
	leave, err := s.leaves.LeaveByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgLeaveNotFound)
	}
	if leave.Status != models.LeavePending {
		return nil, apperr.Conflict(msgLeaveProcessed)
	}

	now := s.clock.Now()
	approverID := approver.ID
	leave.Status = status
	leave.ApprovedBy = &approverID
	leave.ApprovedDate = &now
	if remarks = strings.TrimSpace(remarks); remarks != "" {
		leave.Remarks = remarks
	}
	if err := s.leaves.SaveLeave(ctx, leave); err != nil {
		return nil, err
	}

	if status == models.LeaveApproved {
		if err := s.syncAttendance(ctx, leave); err != nil {
			return nil, err
		}
	}

	title := "Leave Request " + string(status)
	message := "Your leave request has been " + strings.ToLower(string(status))
	kind := models.NotificationError
	if status == models.LeaveApproved {
		kind = models.NotificationSuccess
	}
	if err := s.notifier.Notify(ctx, leave.EmployeeRef, title, message, kind); err != nil {
		log.Printf("leave %s: notify employee: %v", leave.ID, err)
	}
	return leave, nil
}

func (s *LeaveService) syncAttendance(ctx context.Context, leave *models.Leave) error {
	loc := s.clock.Now().Location()
	dates := models.LeaveDates(leave.StartDate.In(loc), leave.EndDate.In(loc), loc)
	remarks := string(leave.LeaveType) + " leave"
	for i, day := range dates {
		_, err := s.days.SetDayStatus(ctx, DayStatusInput{
			EmployeeRef:  leave.EmployeeRef,
			EmployeeCode: leave.EmployeeCode,
			EmployeeName: leave.EmployeeName,
			Day:          day,
			Status:       models.AttendanceLeave,
			Remarks:      remarks,
		})
		if err != nil {
			log.Printf("leave %s approved but attendance sync stopped at %s: %d of %d days written: %v",
				leave.ID, day.Format(utils.DateLayout), i, len(dates), err)
			return fmt.Errorf("sync attendance for leave %s: %d of %d days written: %w", leave.ID, i, len(dates), err)
		}
	}
	return nil
}

func (s *LeaveService) Delete(ctx context.Context, id uuid.UUID, actor *models.Employee) error {
	leave, err := s.leaves.LeaveByID(ctx, id)
	if err != nil {
		return notFound(err, msgLeaveNotFound)
	}
	if leave.EmployeeRef != actor.ID {
		return apperr.Forbidden(msgDeleteOwnLeave)
	}
	if leave.Status != models.LeavePending {
		return apperr.Conflict(msgDeletePendingOnly)
	}
	return notFound(s.leaves.DeleteLeave(ctx, id), msgLeaveNotFound)
}

type LeaveTypeStat struct {
	LeaveType models.LeaveType `json:"leaveType"`
	Count     int              `json:"count"`
	TotalDays float64          `json:"totalDays"`
}

type MonthlyLeaveStat struct {
	Month     int     `json:"month"`
	Count     int     `json:"count"`
	TotalDays float64 `json:"totalDays"`
}

type LeaveStats struct {
	LeaveTypeStats []LeaveTypeStat    `json:"leaveTypeStats"`
	MonthlyStats   []MonthlyLeaveStat `json:"monthlyStats"`
}

// Stats groups approved leave by type over all time and by start month for the current year.
func (s *LeaveService) Stats(ctx context.Context) (*LeaveStats, error) {
	approved, _, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{Status: models.LeaveApproved})
	if err != nil {
		return nil, err
	}

	yearStart := clock.StartOfYear(s.clock.Now())
	byType := map[models.LeaveType]*LeaveTypeStat{}
	byMonth := map[int]*MonthlyLeaveStat{}
	for _, l := range approved {
		t, ok := byType[l.LeaveType]
		if !ok {
			t = &LeaveTypeStat{LeaveType: l.LeaveType}
			byType[l.LeaveType] = t
		}
		t.Count++
		t.TotalDays += l.Days

		if l.StartDate.Before(yearStart) {
			continue
		}
		month := int(l.StartDate.In(yearStart.Location()).Month())
		m, ok := byMonth[month]
		if !ok {
			m = &MonthlyLeaveStat{Month: month}
			byMonth[month] = m
		}
		m.Count++
		m.TotalDays += l.Days
	}

	stats := &LeaveStats{LeaveTypeStats: []LeaveTypeStat{}, MonthlyStats: []MonthlyLeaveStat{}}
	for _, t := range byType {
		stats.LeaveTypeStats = append(stats.LeaveTypeStats, *t)
	}
	sort.Slice(stats.LeaveTypeStats, func(i, j int) bool {
		return stats.LeaveTypeStats[i].LeaveType < stats.LeaveTypeStats[j].LeaveType
	})
	for _, m := range byMonth {
		stats.MonthlyStats = append(stats.MonthlyStats, *m)
	}
	sort.Slice(stats.MonthlyStats, func(i, j int) bool {
		return stats.MonthlyStats[i].Month < stats.MonthlyStats[j].Month
	})
	return stats, nil
}

func (s *LeaveService) PendingCount(ctx context.Context, employeeRef *uuid.UUID) (int64, error) {
	_, total, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{
		EmployeeRef: employeeRef,
		Status:      models.LeavePending,
		Page:        store.Page{Page: 1, Limit: 1},
	})
	return total, err
}

func (s *LeaveService) Recent(ctx context.Context, limit int) ([]models.Leave, error) {
	leaves, _, err := s.leaves.ListLeaves(ctx, store.LeaveFilter{Page: store.Page{Page: 1, Limit: limit}})
	return leaves, err
}

func formatDays(days float64) string {
	if days == float64(int(days)) {
		return fmt.Sprintf("%d", int(days))
	}
	return fmt.Sprintf("%.1f", days)
}
