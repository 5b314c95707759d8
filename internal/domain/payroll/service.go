package payroll

import "context"

type PayrollService interface {
	// CreateRun starts a run for the period and processes every active
	// employee sequentially. Per-employee failures do not abort the run;
	// the run fails only past the configured failure threshold.
	CreateRun(ctx context.Context, req CreateRunRequest) (RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]RunResponse, int64, error)
	ListRecords(ctx context.Context, runID string) ([]RecordResponse, error)
	FinalizeRun(ctx context.Context, id string) error
	RevertRun(ctx context.Context, id string) error
	GetSummary(ctx context.Context, month, year int) (RunSummaryResponse, error)
}
