package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
)

type ptSlabRepository struct {
	db *database.DB
}

func NewPTSlabRepository(db *database.DB) statutory.SlabRepository {
	return &ptSlabRepository{db: db}
}

const slabColumns = `
	id, state_code, salary_from, salary_to, tax_amount, month, gender,
	is_active, created_at, updated_at
`

func scanSlab(row pgx.Row) (statutory.ProfessionalTaxSlab, error) {
	var s statutory.ProfessionalTaxSlab
	err := row.Scan(
		&s.ID, &s.StateCode, &s.SalaryFrom, &s.SalaryTo, &s.TaxAmount, &s.Month, &s.Gender,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *ptSlabRepository) CreateSlab(ctx context.Context, slab statutory.ProfessionalTaxSlab) (statutory.ProfessionalTaxSlab, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pt_slabs (state_code, salary_from, salary_to, tax_amount, month, gender, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + slabColumns + `
	`

	s, err := scanSlab(q.QueryRow(ctx, query,
		slab.StateCode, slab.SalaryFrom, slab.SalaryTo, slab.TaxAmount, slab.Month, slab.Gender,
	))
	if err != nil {
		return statutory.ProfessionalTaxSlab{}, fmt.Errorf("failed to create PT slab: %w", err)
	}

	return s, nil
}

func (r *ptSlabRepository) GetSlabByID(ctx context.Context, id string) (statutory.ProfessionalTaxSlab, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + slabColumns + `
		FROM pt_slabs
		WHERE id = $1
	`

	s, err := scanSlab(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return statutory.ProfessionalTaxSlab{}, statutory.ErrSlabNotFound
		}
		return statutory.ProfessionalTaxSlab{}, fmt.Errorf("failed to get PT slab: %w", err)
	}

	return s, nil
}

func (r *ptSlabRepository) ListSlabs(ctx context.Context, stateCode string, activeOnly bool) ([]statutory.ProfessionalTaxSlab, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + slabColumns + `
		FROM pt_slabs
		WHERE state_code = $1
	`
	if activeOnly {
		query += " AND is_active = true"
	}
	query += " ORDER BY salary_from, month NULLS FIRST"

	rows, err := q.Query(ctx, query, stateCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list PT slabs: %w", err)
	}
	defer rows.Close()

	var slabs []statutory.ProfessionalTaxSlab
	for rows.Next() {
		s, err := scanSlab(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan PT slab: %w", err)
		}
		slabs = append(slabs, s)
	}

	return slabs, nil
}

func (r *ptSlabRepository) ActiveSlabsByState(ctx context.Context, stateCode string) ([]statutory.ProfessionalTaxSlab, error) {
	return r.ListSlabs(ctx, stateCode, true)
}

func (r *ptSlabRepository) DeactivateSlab(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pt_slabs
		SET is_active = false, updated_at = NOW()
		WHERE id = $1 AND is_active = true
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate PT slab: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return statutory.ErrSlabNotFound
	}

	return nil
}
