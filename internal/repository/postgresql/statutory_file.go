package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
)

type statutoryFileRepository struct {
	db *database.DB
}

func NewStatutoryFileRepository(db *database.DB) statutory.FileRepository {
	return &statutoryFileRepository{db: db}
}

func (r *statutoryFileRepository) CreateFile(ctx context.Context, file statutory.StatutoryFile) (statutory.StatutoryFile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO statutory_files (company_id, run_id, file_type, record_count, skipped_count, total_amount, storage_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, generated_at
	`

	err := q.QueryRow(ctx, query,
		file.CompanyID, file.RunID, file.FileType, file.RecordCount, file.SkippedCount,
		file.TotalAmount, file.StoragePath,
	).Scan(&file.ID, &file.GeneratedAt)
	if err != nil {
		return statutory.StatutoryFile{}, fmt.Errorf("failed to create statutory file record: %w", err)
	}

	return file, nil
}

func (r *statutoryFileRepository) GetFileByID(ctx context.Context, id string, companyID string) (statutory.StatutoryFile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, run_id, file_type, record_count, skipped_count, total_amount, storage_path, generated_at
		FROM statutory_files
		WHERE id = $1 AND company_id = $2
	`

	var f statutory.StatutoryFile
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&f.ID, &f.CompanyID, &f.RunID, &f.FileType, &f.RecordCount, &f.SkippedCount,
		&f.TotalAmount, &f.StoragePath, &f.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statutory.StatutoryFile{}, statutory.ErrFileNotFound
		}
		return statutory.StatutoryFile{}, fmt.Errorf("failed to get statutory file: %w", err)
	}

	return f, nil
}

func (r *statutoryFileRepository) ListFilesByRun(ctx context.Context, runID string, companyID string) ([]statutory.StatutoryFile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, run_id, file_type, record_count, skipped_count, total_amount, storage_path, generated_at
		FROM statutory_files
		WHERE run_id = $1 AND company_id = $2
		ORDER BY generated_at DESC
	`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statutory files: %w", err)
	}
	defer rows.Close()

	var files []statutory.StatutoryFile
	for rows.Next() {
		var f statutory.StatutoryFile
		if err := rows.Scan(
			&f.ID, &f.CompanyID, &f.RunID, &f.FileType, &f.RecordCount, &f.SkippedCount,
			&f.TotalAmount, &f.StoragePath, &f.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan statutory file: %w", err)
		}
		files = append(files, f)
	}

	return files, nil
}
