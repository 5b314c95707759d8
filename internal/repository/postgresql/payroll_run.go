package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
)

type payrollRunRepository struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.RunRepository {
	return &payrollRunRepository{db: db}
}

// ========== RUNS ==========

func (r *payrollRunRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (company_id, period_month, period_year, status, total_count, processed_count, failed_count)
		VALUES ($1, $2, $3, $4, 0, 0, 0)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		run.CompanyID, run.PeriodMonth, run.PeriodYear, run.Status,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		// Partial unique index on (company_id, period_year, period_month)
		// WHERE status <> 'reverted'.
		if strings.Contains(err.Error(), "uq_payroll_runs_active_period") {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return run, nil
}

const runColumns = `
	id, company_id, period_month, period_year, status,
	total_count, processed_count, failed_count, errors,
	finalized_at, reverted_at, created_at, updated_at
`

func scanRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	var errorsBytes []byte
	err := row.Scan(
		&run.ID, &run.CompanyID, &run.PeriodMonth, &run.PeriodYear, &run.Status,
		&run.TotalCount, &run.ProcessedCount, &run.FailedCount, &errorsBytes,
		&run.FinalizedAt, &run.RevertedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollRun{}, err
	}
	if len(errorsBytes) > 0 {
		_ = json.Unmarshal(errorsBytes, &run.Errors)
	}
	return run, nil
}

func (r *payrollRunRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE id = $1 AND company_id = $2
	`

	run, err := scanRun(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRunRepository) GetRunByPeriod(ctx context.Context, month, year int, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + runColumns + `
		FROM payroll_runs
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3 AND status <> 'reverted'
	`

	run, err := scanRun(q.QueryRow(ctx, query, companyID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run by period: %w", err)
	}

	return run, nil
}

func (r *payrollRunRepository) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `FROM payroll_runs WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY period_year DESC, period_month DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, runColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, totalCount, nil
}

func (r *payrollRunRepository) UpdateRunResult(ctx context.Context, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	errorsJSON, _ := json.Marshal(run.Errors)

	query := `
		UPDATE payroll_runs
		SET status = $1, total_count = $2, processed_count = $3, failed_count = $4,
			errors = $5, updated_at = NOW()
		WHERE id = $6 AND company_id = $7
	`

	tag, err := q.Exec(ctx, query,
		run.Status, run.TotalCount, run.ProcessedCount, run.FailedCount,
		errorsJSON, run.ID, run.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll run result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

func (r *payrollRunRepository) FinalizeRun(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = 'finalized', finalized_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status = 'completed'
	`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to finalize payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFinalizable
	}

	return nil
}

func (r *payrollRunRepository) RevertRun(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = 'reverted', reverted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status <> 'reverted'
	`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to revert payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotRevertible
	}

	return nil
}

// ========== RECORDS ==========

const recordColumns = `
	id, run_id, employee_id, company_id, period_month, period_year,
	working_days, paid_days, lop_days,
	earnings, gross_before_lop, lop_deduction, gross,
	pf_wage, pf_employee, pf_employer_eps, pf_employer_diff,
	esi_applicable, esi_employee, esi_employer, esi_reason,
	pt_amount, pt_slab_id, pt_exempt, pt_reason,
	tds_amount, other_deductions, total_deductions, net,
	employee_name, employee_code, gender, work_state_code, uan, esic_number, pan,
	created_at
`

func (r *payrollRunRepository) CreateRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, _ := json.Marshal(record.Earnings)

	query := `
		INSERT INTO payroll_records (
			run_id, employee_id, company_id, period_month, period_year,
			working_days, paid_days, lop_days,
			earnings, gross_before_lop, lop_deduction, gross,
			pf_wage, pf_employee, pf_employer_eps, pf_employer_diff,
			esi_applicable, esi_employee, esi_employer, esi_reason,
			pt_amount, pt_slab_id, pt_exempt, pt_reason,
			tds_amount, other_deductions, total_deductions, net,
			employee_name, employee_code, gender, work_state_code, uan, esic_number, pan
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35
		)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		record.RunID, record.EmployeeID, record.CompanyID, record.PeriodMonth, record.PeriodYear,
		record.WorkingDays, record.PaidDays, record.LOPDays,
		earningsJSON, record.GrossBeforeLOP, record.LOPDeduction, record.Gross,
		record.PFWage, record.PFEmployee, record.PFEmployerEPS, record.PFEmployerDiff,
		record.ESIApplicable, record.ESIEmployee, record.ESIEmployer, record.ESIReason,
		record.PTAmount, record.PTSlabID, record.PTExempt, record.PTReason,
		record.TDSAmount, record.OtherDeductions, record.TotalDeductions, record.Net,
		record.EmployeeName, record.EmployeeCode, record.Gender, record.WorkStateCode,
		record.UAN, record.ESICNumber, record.PAN,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return record, nil
}

func scanRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var earningsBytes []byte
	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.EmployeeID, &rec.CompanyID, &rec.PeriodMonth, &rec.PeriodYear,
		&rec.WorkingDays, &rec.PaidDays, &rec.LOPDays,
		&earningsBytes, &rec.GrossBeforeLOP, &rec.LOPDeduction, &rec.Gross,
		&rec.PFWage, &rec.PFEmployee, &rec.PFEmployerEPS, &rec.PFEmployerDiff,
		&rec.ESIApplicable, &rec.ESIEmployee, &rec.ESIEmployer, &rec.ESIReason,
		&rec.PTAmount, &rec.PTSlabID, &rec.PTExempt, &rec.PTReason,
		&rec.TDSAmount, &rec.OtherDeductions, &rec.TotalDeductions, &rec.Net,
		&rec.EmployeeName, &rec.EmployeeCode, &rec.Gender, &rec.WorkStateCode,
		&rec.UAN, &rec.ESICNumber, &rec.PAN,
		&rec.CreatedAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	_ = json.Unmarshal(earningsBytes, &rec.Earnings)
	return rec, nil
}

func (r *payrollRunRepository) ListRecordsByRun(ctx context.Context, runID string, companyID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM payroll_records
		WHERE run_id = $1 AND company_id = $2
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *payrollRunRepository) ListRecordsByEmployeePeriods(ctx context.Context, employeeID string, companyID string, months []payroll.PeriodKey) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if len(months) == 0 {
		return nil, nil
	}

	// Records of reverted runs are history, not payroll.
	conditions := make([]string, 0, len(months))
	args := []interface{}{employeeID, companyID}
	argIdx := 3
	for _, m := range months {
		conditions = append(conditions, fmt.Sprintf("(pr.period_month = $%d AND pr.period_year = $%d)", argIdx, argIdx+1))
		args = append(args, m.Month, m.Year)
		argIdx += 2
	}

	query := fmt.Sprintf(`
		SELECT pr.id, pr.run_id, pr.employee_id, pr.company_id, pr.period_month, pr.period_year,
			   pr.working_days, pr.paid_days, pr.lop_days,
			   pr.earnings, pr.gross_before_lop, pr.lop_deduction, pr.gross,
			   pr.pf_wage, pr.pf_employee, pr.pf_employer_eps, pr.pf_employer_diff,
			   pr.esi_applicable, pr.esi_employee, pr.esi_employer, pr.esi_reason,
			   pr.pt_amount, pr.pt_slab_id, pr.pt_exempt, pr.pt_reason,
			   pr.tds_amount, pr.other_deductions, pr.total_deductions, pr.net,
			   pr.employee_name, pr.employee_code, pr.gender, pr.work_state_code, pr.uan, pr.esic_number, pr.pan,
			   pr.created_at
		FROM payroll_records pr
		JOIN payroll_runs r ON pr.run_id = r.id
		WHERE pr.employee_id = $1 AND pr.company_id = $2
		  AND r.status <> 'reverted'
		  AND (%s)
		ORDER BY pr.period_year, pr.period_month
	`, strings.Join(conditions, " OR "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records by periods: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ========== AGGREGATIONS ==========

func (r *payrollRunRepository) GetAttendanceSummary(ctx context.Context, companyID string, month, year int) ([]payroll.AttendanceSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT a.employee_id,
			   COUNT(*) FILTER (WHERE a.day_type = 'working') AS working_days,
			   COUNT(*) FILTER (WHERE a.day_type = 'working' AND a.is_paid) AS paid_days,
			   COUNT(*) FILTER (WHERE a.day_type = 'working' AND NOT a.is_paid) AS lop_days
		FROM attendance_days a
		JOIN employees e ON a.employee_id = e.id
		WHERE e.company_id = $1
		  AND EXTRACT(MONTH FROM a.day) = $2
		  AND EXTRACT(YEAR FROM a.day) = $3
		GROUP BY a.employee_id
	`

	rows, err := q.Query(ctx, query, companyID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance summary: %w", err)
	}
	defer rows.Close()

	var summaries []payroll.AttendanceSummary
	for rows.Next() {
		var s payroll.AttendanceSummary
		if err := rows.Scan(&s.EmployeeID, &s.WorkingDays, &s.PaidDays, &s.LOPDays); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

func (r *payrollRunRepository) GetRunSummary(ctx context.Context, companyID string, month, year int) (payroll.RunSummaryResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(pr.id),
			   COALESCE(SUM(pr.gross), 0),
			   COALESCE(SUM(pr.pf_employee), 0),
			   COALESCE(SUM(pr.esi_employee), 0),
			   COALESCE(SUM(pr.pt_amount), 0),
			   COALESCE(SUM(pr.tds_amount), 0),
			   COALESCE(SUM(pr.total_deductions), 0),
			   COALESCE(SUM(pr.net), 0)
		FROM payroll_records pr
		JOIN payroll_runs r ON pr.run_id = r.id
		WHERE pr.company_id = $1 AND pr.period_month = $2 AND pr.period_year = $3
		  AND r.status <> 'reverted'
	`

	summary := payroll.RunSummaryResponse{PeriodMonth: month, PeriodYear: year}
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&summary.EmployeeCount,
		&summary.TotalGross, &summary.TotalPF, &summary.TotalESI,
		&summary.TotalPT, &summary.TotalTDS,
		&summary.TotalDeductions, &summary.TotalNet,
	)
	if err != nil {
		return payroll.RunSummaryResponse{}, fmt.Errorf("failed to get run summary: %w", err)
	}

	return summary, nil
}

func (r *payrollRunRepository) WasESICovered(ctx context.Context, employeeID string, companyID string, period statutory.ContributionPeriod, beforeMonth, beforeYear int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// Months compare as year*12+month so a period spanning the year
	// boundary (Oct-Mar) stays a single range.
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM payroll_records pr
			JOIN payroll_runs r ON pr.run_id = r.id
			WHERE pr.employee_id = $1 AND pr.company_id = $2
			  AND pr.esi_applicable = true
			  AND r.status <> 'reverted'
			  AND pr.period_year * 12 + pr.period_month >= $3
			  AND pr.period_year * 12 + pr.period_month < $4
		)
	`

	start := period.StartYear*12 + period.StartMonth
	before := beforeYear*12 + beforeMonth

	var covered bool
	err := q.QueryRow(ctx, query, employeeID, companyID, start, before).Scan(&covered)
	if err != nil {
		return false, fmt.Errorf("failed to check ESI coverage: %w", err)
	}

	return covered, nil
}
