package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, user_id, full_name, employment_type, employment_mode,
	employment_status, hire_date, resignation_date`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.UserID, &e.FullName, &e.EmploymentType, &e.EmploymentMode,
		&e.EmploymentStatus, &e.HireDate, &e.ResignationDate,
	)
	return e, err
}

// GetByUserID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE user_id = $1 AND deleted_at IS NULL`

	e, err := scanEmployee(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by user id %s: %w", userID, err)
	}
	return e, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = $1 AND deleted_at IS NULL
		ORDER BY user_id`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	return employees, nil
}

type approverRepositoryImpl struct {
	db *database.DB
}

func NewApproverRepository(db *database.DB) employee.ApproverRepository {
	return &approverRepositoryImpl{db: db}
}

// GetRoute implements employee.ApproverRepository.
func (r *approverRepositoryImpl) GetRoute(ctx context.Context, userID string, applicationType string) (employee.ApprovalRoute, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, application_type, checker_id, approver_1_id, approver_2_id, approver_3_id
		FROM approval_routes
		WHERE user_id = $1 AND application_type = $2`

	var route employee.ApprovalRoute
	err := q.QueryRow(ctx, query, userID, applicationType).Scan(
		&route.UserID, &route.ApplicationType,
		&route.CheckerID, &route.Approver1ID, &route.Approver2ID, &route.Approver3ID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ApprovalRoute{}, false, nil
		}
		return employee.ApprovalRoute{}, false, fmt.Errorf("failed to get approval route: %w", err)
	}
	return route, true, nil
}
