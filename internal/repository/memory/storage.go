// Package memory keeps every repository in process memory. It backs the
// "memory" storage driver and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
)

type Storage struct {
	mu sync.RWMutex

	schedules    map[string]attendance.ScheduleEntry // userID|date
	punches      map[string][]attendance.ClockPunch  // userID|date
	stores       map[string]attendance.Store
	snapshots    map[string]attendance.MonthlyAttendanceSnapshot // userID|year-month
	employees    map[string]employee.Employee                    // userID
	routes       map[string]employee.ApprovalRoute               // userID|type
	applications map[string]application.Application
	events       map[string][]application.ApplicationEvent // applicationID
}

func NewStorage() *Storage {
	return &Storage{
		schedules:    make(map[string]attendance.ScheduleEntry),
		punches:      make(map[string][]attendance.ClockPunch),
		stores:       make(map[string]attendance.Store),
		snapshots:    make(map[string]attendance.MonthlyAttendanceSnapshot),
		employees:    make(map[string]employee.Employee),
		routes:       make(map[string]employee.ApprovalRoute),
		applications: make(map[string]application.Application),
		events:       make(map[string][]application.ApplicationEvent),
	}
}

// WithinTransaction runs fn directly. Writes are guarded by version checks.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dayKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

// PutSchedule stores or replaces the schedule of entry.UserID on entry.Date.
func (s *Storage) PutSchedule(entry attendance.ScheduleEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[dayKey(entry.UserID, entry.Date)] = entry
}

// AddPunch appends a punch in supplier order.
func (s *Storage) AddPunch(p attendance.ClockPunch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(p.UserID, p.Date)
	s.punches[key] = append(s.punches[key], p)
}

func (s *Storage) PutStore(store attendance.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[store.BranchCode] = store
}

func (s *Storage) PutEmployee(emp employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.UserID] = emp
}

func (s *Storage) PutRoute(route employee.ApprovalRoute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[route.UserID+"|"+route.ApplicationType] = route
}
