package statutory

import "context"

// StatutoryService generates government submission files from finalized
// payroll data and manages slabs and filing deadlines.
type StatutoryService interface {
	// Slabs
	CreateSlab(ctx context.Context, req CreateSlabRequest) (SlabResponse, error)
	ListSlabs(ctx context.Context, stateCode string, activeOnly bool) ([]SlabResponse, error)
	DeactivateSlab(ctx context.Context, id string) error

	// Files
	GenerateECR(ctx context.Context, runID string) (GeneratedFileResponse, error)
	GenerateESIChallan(ctx context.Context, runID string) (GeneratedFileResponse, error)
	GenerateForm24Q(ctx context.Context, quarter int, fyStartYear int) (Form24QData, error)
	GenerateForm16(ctx context.Context, employeeID string, fyStartYear int) (Form16Data, error)
	RenderForm16PDF(ctx context.Context, employeeID string, fyStartYear int) ([]byte, error)
	ListRunFiles(ctx context.Context, runID string) ([]FileResponse, error)
	DownloadFile(ctx context.Context, fileID string) (FileResponse, []byte, error)

	// Deadlines
	ListDeadlines(ctx context.Context, filter DeadlineFilter) ([]DeadlineResponse, error)
	MarkDeadlineFiled(ctx context.Context, id string, req MarkFiledRequest) error
	SweepOverdueDeadlines(ctx context.Context) error
}
