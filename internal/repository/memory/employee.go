package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
)

type employeeRepository struct{ *Storage }

func NewEmployeeRepository(s *Storage) employee.EmployeeRepository {
	return &employeeRepository{s}
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	emp, ok := r.employees[userID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []employee.Employee
	for _, emp := range r.employees {
		if emp.EmploymentStatus == employee.EmploymentStatusActive {
			active = append(active, emp)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].UserID < active[j].UserID })
	return active, nil
}

type approverRepository struct{ *Storage }

func NewApproverRepository(s *Storage) employee.ApproverRepository {
	return &approverRepository{s}
}

func (r *approverRepository) GetRoute(ctx context.Context, userID string, applicationType string) (employee.ApprovalRoute, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[userID+"|"+applicationType]
	return route, ok, nil
}
