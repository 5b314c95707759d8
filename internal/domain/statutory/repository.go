package statutory

import (
	"context"
	"time"
)

// SlabRepository defines data access for Professional Tax slabs. Slabs are
// shared reference data, not company-scoped.
type SlabRepository interface {
	CreateSlab(ctx context.Context, slab ProfessionalTaxSlab) (ProfessionalTaxSlab, error)
	GetSlabByID(ctx context.Context, id string) (ProfessionalTaxSlab, error)
	ListSlabs(ctx context.Context, stateCode string, activeOnly bool) ([]ProfessionalTaxSlab, error)

	// ActiveSlabsByState feeds the PT calculator's lookup.
	ActiveSlabsByState(ctx context.Context, stateCode string) ([]ProfessionalTaxSlab, error)

	// DeactivateSlab soft-deletes: the row stays for historical
	// recalculation.
	DeactivateSlab(ctx context.Context, id string) error
}

// DeadlineRepository defines data access for statutory deadlines.
type DeadlineRepository interface {
	UpsertDeadline(ctx context.Context, deadline StatutoryDeadline) (StatutoryDeadline, error)
	GetDeadlineByID(ctx context.Context, id string, companyID string) (StatutoryDeadline, error)
	ListDeadlines(ctx context.Context, companyID string, filter DeadlineFilter) ([]StatutoryDeadline, error)
	MarkFiled(ctx context.Context, id string, companyID string, reference string, filedAt time.Time) error

	// MarkOverdue flips every PENDING deadline whose due date has passed
	// and returns the number of rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// FileRepository records generated statutory file artifacts.
type FileRepository interface {
	CreateFile(ctx context.Context, file StatutoryFile) (StatutoryFile, error)
	GetFileByID(ctx context.Context, id string, companyID string) (StatutoryFile, error)
	ListFilesByRun(ctx context.Context, runID string, companyID string) ([]StatutoryFile, error)
}
