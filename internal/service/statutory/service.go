package statutory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
	"github.com/arthapay/payroll-backend-go/internal/pkg/storage"
	"github.com/arthapay/payroll-backend-go/internal/repository/postgresql"
)

type StatutoryServiceImpl struct {
	db           *database.DB
	slabRepo     statutory.SlabRepository
	deadlineRepo statutory.DeadlineRepository
	fileRepo     statutory.FileRepository
	runRepo      payroll.RunRepository
	employeeRepo employee.EmployeeRepository
	fileStorage  storage.FileStorage
	tds          *TDSCalculator
}

func NewStatutoryService(
	db *database.DB,
	slabRepo statutory.SlabRepository,
	deadlineRepo statutory.DeadlineRepository,
	fileRepo statutory.FileRepository,
	runRepo payroll.RunRepository,
	employeeRepo employee.EmployeeRepository,
	fileStorage storage.FileStorage,
	tds *TDSCalculator,
) *StatutoryServiceImpl {
	return &StatutoryServiceImpl{
		db:           db,
		slabRepo:     slabRepo,
		deadlineRepo: deadlineRepo,
		fileRepo:     fileRepo,
		runRepo:      runRepo,
		employeeRepo: employeeRepo,
		fileStorage:  fileStorage,
		tds:          tds,
	}
}

var _ statutory.StatutoryService = (*StatutoryServiceImpl)(nil)

func companyFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("company_id claim is missing or invalid")
	}
	return companyID, nil
}

// runInTransaction wraps fn in a database transaction. Service tests run
// against in-memory fakes without a pool.
func (s *StatutoryServiceImpl) runInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// ========== SLABS ==========

func (s *StatutoryServiceImpl) CreateSlab(ctx context.Context, req statutory.CreateSlabRequest) (statutory.SlabResponse, error) {
	if err := req.Validate(); err != nil {
		return statutory.SlabResponse{}, err
	}

	slab := statutory.ProfessionalTaxSlab{
		StateCode:  strings.ToUpper(req.StateCode),
		SalaryFrom: req.SalaryFrom,
		SalaryTo:   req.SalaryTo,
		TaxAmount:  req.TaxAmount,
		Month:      req.Month,
		Gender:     req.Gender,
		IsActive:   true,
	}

	// Two active slabs that could both match the same salary at the same
	// specificity would make resolution depend on an arbitrary tie-break.
	existing, err := s.slabRepo.ActiveSlabsByState(ctx, slab.StateCode)
	if err != nil {
		return statutory.SlabResponse{}, err
	}
	for _, other := range existing {
		if slab.OverlapsAmbiguously(other) {
			return statutory.SlabResponse{}, statutory.ErrSlabOverlap
		}
	}

	created, err := s.slabRepo.CreateSlab(ctx, slab)
	if err != nil {
		return statutory.SlabResponse{}, err
	}
	return mapToSlabResponse(created), nil
}

func (s *StatutoryServiceImpl) ListSlabs(ctx context.Context, stateCode string, activeOnly bool) ([]statutory.SlabResponse, error) {
	slabs, err := s.slabRepo.ListSlabs(ctx, strings.ToUpper(stateCode), activeOnly)
	if err != nil {
		return nil, err
	}

	result := make([]statutory.SlabResponse, 0, len(slabs))
	for _, slab := range slabs {
		result = append(result, mapToSlabResponse(slab))
	}
	return result, nil
}

func (s *StatutoryServiceImpl) DeactivateSlab(ctx context.Context, id string) error {
	if _, err := s.slabRepo.GetSlabByID(ctx, id); err != nil {
		return err
	}
	return s.slabRepo.DeactivateSlab(ctx, id)
}

func mapToSlabResponse(slab statutory.ProfessionalTaxSlab) statutory.SlabResponse {
	return statutory.SlabResponse{
		ID:         slab.ID,
		StateCode:  slab.StateCode,
		SalaryFrom: slab.SalaryFrom,
		SalaryTo:   slab.SalaryTo,
		TaxAmount:  slab.TaxAmount,
		Month:      slab.Month,
		Gender:     slab.Gender,
		IsActive:   slab.IsActive,
	}
}

// ========== FILE GENERATION ==========

func (s *StatutoryServiceImpl) GenerateECR(ctx context.Context, runID string) (statutory.GeneratedFileResponse, error) {
	return s.generateRunFile(ctx, runID, statutory.FileTypeECR, GenerateECR)
}

func (s *StatutoryServiceImpl) GenerateESIChallan(ctx context.Context, runID string) (statutory.GeneratedFileResponse, error) {
	return s.generateRunFile(ctx, runID, statutory.FileTypeESIChallan, GenerateESIChallan)
}

type runFileGenerator func(records []payroll.PayrollRecord, month, year int) (string, statutory.FileSummary, []statutory.SkippedRecord)

func (s *StatutoryServiceImpl) generateRunFile(ctx context.Context, runID string, fileType statutory.FileType, generate runFileGenerator) (statutory.GeneratedFileResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return statutory.GeneratedFileResponse{}, err
	}

	run, err := s.runRepo.GetRunByID(ctx, runID, companyID)
	if err != nil {
		return statutory.GeneratedFileResponse{}, err
	}
	if run.Status != payroll.RunStatusCompleted && run.Status != payroll.RunStatusFinalized {
		return statutory.GeneratedFileResponse{}, statutory.ErrRunNotGeneratable
	}

	records, err := s.runRepo.ListRecordsByRun(ctx, runID, companyID)
	if err != nil {
		return statutory.GeneratedFileResponse{}, err
	}
	if len(records) == 0 {
		return statutory.GeneratedFileResponse{}, statutory.ErrNoRecordsForPeriod
	}

	content, summary, skipped := generate(records, run.PeriodMonth, run.PeriodYear)
	for _, skip := range skipped {
		slog.Warn("Record skipped during statutory file generation",
			"file_type", fileType,
			"run_id", runID,
			"employee_id", skip.EmployeeID,
			"reason", skip.Reason,
		)
	}

	path := fmt.Sprintf("statutory/%s/%04d-%02d/%s-%s.txt",
		companyID, run.PeriodYear, run.PeriodMonth, fileType, uuid.NewString())
	if _, err := s.fileStorage.Upload(ctx, strings.NewReader(content), path, "text/plain"); err != nil {
		return statutory.GeneratedFileResponse{}, fmt.Errorf("failed to store %s file: %w", fileType, err)
	}

	file := statutory.StatutoryFile{
		CompanyID:    companyID,
		RunID:        runID,
		FileType:     fileType,
		RecordCount:  summary.RecordCount,
		SkippedCount: len(skipped),
		TotalAmount:  summary.TotalEmployee + summary.TotalEmployer,
		StoragePath:  path,
		GeneratedAt:  time.Now().UTC(),
	}
	created, err := s.fileRepo.CreateFile(ctx, file)
	if err != nil {
		// Without the audit row the stored file is unreachable; remove it.
		if delErr := s.fileStorage.Delete(ctx, path); delErr != nil {
			slog.Warn("Failed to remove orphaned statutory file",
				"path", path, "error", delErr)
		}
		return statutory.GeneratedFileResponse{}, err
	}

	return statutory.GeneratedFileResponse{
		FileID:      created.ID,
		FileType:    string(fileType),
		Content:     content,
		Summary:     summary,
		Skipped:     skipped,
		StoragePath: path,
		PeriodMonth: run.PeriodMonth,
		PeriodYear:  run.PeriodYear,
	}, nil
}

func (s *StatutoryServiceImpl) ListRunFiles(ctx context.Context, runID string) ([]statutory.FileResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListFilesByRun(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]statutory.FileResponse, 0, len(files))
	for _, f := range files {
		result = append(result, mapToFileResponse(f))
	}
	return result, nil
}

func (s *StatutoryServiceImpl) DownloadFile(ctx context.Context, fileID string) (statutory.FileResponse, []byte, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return statutory.FileResponse{}, nil, err
	}

	file, err := s.fileRepo.GetFileByID(ctx, fileID, companyID)
	if err != nil {
		return statutory.FileResponse{}, nil, err
	}

	ok, err := s.fileStorage.Exists(ctx, file.StoragePath)
	if err != nil {
		return statutory.FileResponse{}, nil, fmt.Errorf("failed to check stored file: %w", err)
	}
	if !ok {
		return statutory.FileResponse{}, nil, statutory.ErrFileNotFound
	}

	reader, err := s.fileStorage.Download(ctx, file.StoragePath)
	if err != nil {
		return statutory.FileResponse{}, nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return statutory.FileResponse{}, nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return mapToFileResponse(file), content, nil
}

func mapToFileResponse(f statutory.StatutoryFile) statutory.FileResponse {
	return statutory.FileResponse{
		ID:           f.ID,
		RunID:        f.RunID,
		FileType:     string(f.FileType),
		RecordCount:  f.RecordCount,
		SkippedCount: f.SkippedCount,
		TotalAmount:  f.TotalAmount,
		StoragePath:  f.StoragePath,
		GeneratedAt:  f.GeneratedAt.Format(time.RFC3339),
	}
}

func (s *StatutoryServiceImpl) GenerateForm24Q(ctx context.Context, quarter int, fyStartYear int) (statutory.Form24QData, error) {
	if quarter < 1 || quarter > 4 {
		return statutory.Form24QData{}, payroll.ErrInvalidPeriod
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return statutory.Form24QData{}, err
	}

	var records []payroll.PayrollRecord
	for _, period := range QuarterMonths(quarter, fyStartYear) {
		run, err := s.runRepo.GetRunByPeriod(ctx, period.Month, period.Year, companyID)
		if err != nil {
			if errors.Is(err, payroll.ErrRunNotFound) {
				continue
			}
			return statutory.Form24QData{}, err
		}
		monthRecords, err := s.runRepo.ListRecordsByRun(ctx, run.ID, companyID)
		if err != nil {
			return statutory.Form24QData{}, err
		}
		records = append(records, monthRecords...)
	}
	if len(records) == 0 {
		return statutory.Form24QData{}, statutory.ErrNoRecordsForPeriod
	}

	data := BuildForm24Q(records, quarter, fyStartYear)
	for _, skip := range data.Skipped {
		slog.Warn("Deductee skipped during Form 24Q generation",
			"quarter", quarter,
			"employee_id", skip.EmployeeID,
			"reason", skip.Reason,
		)
	}
	return data, nil
}

func (s *StatutoryServiceImpl) GenerateForm16(ctx context.Context, employeeID string, fyStartYear int) (statutory.Form16Data, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return statutory.Form16Data{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return statutory.Form16Data{}, err
	}

	months := make([]payroll.PeriodKey, 0, 12)
	for _, quarter := range []int{1, 2, 3, 4} {
		months = append(months, QuarterMonths(quarter, fyStartYear)...)
	}
	records, err := s.runRepo.ListRecordsByEmployeePeriods(ctx, employeeID, companyID, months)
	if err != nil {
		return statutory.Form16Data{}, err
	}

	return BuildForm16(emp, records, fyStartYear, s.tds)
}

func (s *StatutoryServiceImpl) RenderForm16PDF(ctx context.Context, employeeID string, fyStartYear int) ([]byte, error) {
	data, err := s.GenerateForm16(ctx, employeeID, fyStartYear)
	if err != nil {
		return nil, err
	}
	return RenderForm16PDF(data)
}
