package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
)

type statutoryDeadlineRepository struct {
	db *database.DB
}

func NewStatutoryDeadlineRepository(db *database.DB) statutory.DeadlineRepository {
	return &statutoryDeadlineRepository{db: db}
}

const deadlineColumns = `
	id, company_id, scheme, period_month, period_year, due_date, status,
	filing_reference, filed_at, created_at, updated_at
`

func scanDeadline(row pgx.Row) (statutory.StatutoryDeadline, error) {
	var d statutory.StatutoryDeadline
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Scheme, &d.PeriodMonth, &d.PeriodYear, &d.DueDate, &d.Status,
		&d.FilingReference, &d.FiledAt, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *statutoryDeadlineRepository) UpsertDeadline(ctx context.Context, deadline statutory.StatutoryDeadline) (statutory.StatutoryDeadline, error) {
	q := GetQuerier(ctx, r.db)

	// Re-seeding a period never disturbs a deadline that was already
	// filed or swept overdue.
	query := `
		INSERT INTO statutory_deadlines (company_id, scheme, period_month, period_year, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, scheme, period_month, period_year) DO UPDATE SET
			due_date = EXCLUDED.due_date,
			updated_at = NOW()
		RETURNING ` + deadlineColumns + `
	`

	d, err := scanDeadline(q.QueryRow(ctx, query,
		deadline.CompanyID, deadline.Scheme, deadline.PeriodMonth, deadline.PeriodYear,
		deadline.DueDate, deadline.Status,
	))
	if err != nil {
		return statutory.StatutoryDeadline{}, fmt.Errorf("failed to upsert statutory deadline: %w", err)
	}

	return d, nil
}

func (r *statutoryDeadlineRepository) GetDeadlineByID(ctx context.Context, id string, companyID string) (statutory.StatutoryDeadline, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + deadlineColumns + `
		FROM statutory_deadlines
		WHERE id = $1 AND company_id = $2
	`

	d, err := scanDeadline(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return statutory.StatutoryDeadline{}, statutory.ErrDeadlineNotFound
		}
		return statutory.StatutoryDeadline{}, fmt.Errorf("failed to get statutory deadline: %w", err)
	}

	return d, nil
}

func (r *statutoryDeadlineRepository) ListDeadlines(ctx context.Context, companyID string, filter statutory.DeadlineFilter) ([]statutory.StatutoryDeadline, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + deadlineColumns + `
		FROM statutory_deadlines
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Scheme != nil {
		query += fmt.Sprintf(" AND scheme = $%d", argIdx)
		args = append(args, *filter.Scheme)
		argIdx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.PeriodYear != nil {
		query += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.PeriodMonth != nil {
		query += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}

	query += " ORDER BY due_date, scheme"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list statutory deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []statutory.StatutoryDeadline
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statutory deadline: %w", err)
		}
		deadlines = append(deadlines, d)
	}

	return deadlines, nil
}

func (r *statutoryDeadlineRepository) MarkFiled(ctx context.Context, id string, companyID string, reference string, filedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE statutory_deadlines
		SET status = 'FILED', filing_reference = $1, filed_at = $2, updated_at = NOW()
		WHERE id = $3 AND company_id = $4 AND status IN ('PENDING', 'OVERDUE')
	`

	tag, err := q.Exec(ctx, query, reference, filedAt, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to mark deadline filed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return statutory.ErrDeadlineAlreadyFiled
	}

	return nil
}

func (r *statutoryDeadlineRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE statutory_deadlines
		SET status = 'OVERDUE', updated_at = NOW()
		WHERE status = 'PENDING' AND due_date < $1
	`

	tag, err := q.Exec(ctx, query, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue deadlines: %w", err)
	}

	return tag.RowsAffected(), nil
}
