package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, company_id, employee_code, full_name, gender, work_state_code,
	pan, uan, esic_number, pf_enrolled, date_of_joining, is_active,
	created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeCode, &e.FullName, &e.Gender, &e.WorkStateCode,
		&e.PAN, &e.UAN, &e.ESICNumber, &e.PFEnrolled, &e.DateOfJoining, &e.IsActive,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2
	`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND is_active = true
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, companyID)
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

	return employees, nil
}

func (r *employeeRepository) GetSalaryComponents(ctx context.Context, employeeID string, companyID string) ([]employee.SalaryComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT sc.id, sc.employee_id, sc.code, sc.name, sc.kind, sc.monthly_amount,
			   sc.in_pf_wage, sc.is_active, sc.created_at, sc.updated_at
		FROM salary_components sc
		JOIN employees e ON sc.employee_id = e.id
		WHERE sc.employee_id = $1 AND e.company_id = $2 AND sc.is_active = true
		ORDER BY sc.kind, sc.code
	`

	rows, err := q.Query(ctx, query, employeeID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get salary components: %w", err)
	}
	defer rows.Close()

	var components []employee.SalaryComponent
	for rows.Next() {
		var c employee.SalaryComponent
		if err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.Code, &c.Name, &c.Kind, &c.MonthlyAmount,
			&c.InPFWage, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary component: %w", err)
		}
		components = append(components, c)
	}

	return components, nil
}
