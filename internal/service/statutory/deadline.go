package statutory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// Filing due dates. PT due dates differ by state; the 20th is used as the
// common denominator and can be corrected per deadline by the admin.
const (
	pfDueDay  = 15
	esiDueDay = 15
	ptDueDay  = 20
)

// EnsureDeadlinesForPeriod seeds the filing obligations that follow a
// payroll run for (month, year): monthly PF, ESI and PT, plus the
// quarterly 24Q return when the month closes a quarter. Idempotent via
// upsert.
func (s *StatutoryServiceImpl) EnsureDeadlinesForPeriod(ctx context.Context, companyID string, month, year int) error {
	nextMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	deadlines := []statutory.StatutoryDeadline{
		{Scheme: statutory.SchemePFECR, DueDate: nextMonth.AddDate(0, 0, pfDueDay-1)},
		{Scheme: statutory.SchemeESI, DueDate: nextMonth.AddDate(0, 0, esiDueDay-1)},
		{Scheme: statutory.SchemePT, DueDate: nextMonth.AddDate(0, 0, ptDueDay-1)},
	}

	if due, ok := form24QDueDate(month, year); ok {
		deadlines = append(deadlines, statutory.StatutoryDeadline{Scheme: statutory.SchemeTDS24Q, DueDate: due})
	}

	// All obligations of the period land together or not at all.
	return s.runInTransaction(ctx, func(txCtx context.Context) error {
		for _, d := range deadlines {
			d.CompanyID = companyID
			d.PeriodMonth = month
			d.PeriodYear = year
			d.Status = statutory.DeadlineStatusPending
			if _, err := s.deadlineRepo.UpsertDeadline(txCtx, d); err != nil {
				return fmt.Errorf("failed to upsert %s deadline: %w", d.Scheme, err)
			}
		}
		return nil
	})
}

// form24QDueDate returns the quarterly return due date when (month, year)
// is a quarter-end month of the financial year. Q4 (Jan-Mar) files by the
// end of May; the other quarters by the end of the following month.
func form24QDueDate(month, year int) (time.Time, bool) {
	switch month {
	case 6, 9, 12:
		return time.Date(year, time.Month(month)+2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1), true
	case 3:
		return time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Time{}, false
	}
}

func (s *StatutoryServiceImpl) ListDeadlines(ctx context.Context, filter statutory.DeadlineFilter) ([]statutory.DeadlineResponse, error) {
	companyID, err := companyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	deadlines, err := s.deadlineRepo.ListDeadlines(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	result := make([]statutory.DeadlineResponse, 0, len(deadlines))
	for _, d := range deadlines {
		var filedAt *string
		if d.FiledAt != nil {
			str := d.FiledAt.Format(time.RFC3339)
			filedAt = &str
		}
		result = append(result, statutory.DeadlineResponse{
			ID:              d.ID,
			Scheme:          string(d.Scheme),
			PeriodMonth:     d.PeriodMonth,
			PeriodYear:      d.PeriodYear,
			DueDate:         d.DueDate.Format("2006-01-02"),
			Status:          string(d.Status),
			FilingReference: d.FilingReference,
			FiledAt:         filedAt,
		})
	}
	return result, nil
}

func (s *StatutoryServiceImpl) MarkDeadlineFiled(ctx context.Context, id string, req statutory.MarkFiledRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	companyID, err := companyFromContext(ctx)
	if err != nil {
		return err
	}

	deadline, err := s.deadlineRepo.GetDeadlineByID(ctx, id, companyID)
	if err != nil {
		return err
	}
	if deadline.Status == statutory.DeadlineStatusFiled {
		return statutory.ErrDeadlineAlreadyFiled
	}

	return s.deadlineRepo.MarkFiled(ctx, id, companyID, req.FilingReference, time.Now().UTC())
}

// SweepOverdueDeadlines flips PENDING deadlines past their due date to
// OVERDUE. Driven by the cron scheduler.
func (s *StatutoryServiceImpl) SweepOverdueDeadlines(ctx context.Context) error {
	n, err := s.deadlineRepo.MarkOverdue(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("overdue sweep failed: %w", err)
	}
	if n > 0 {
		slog.Info("Marked statutory deadlines overdue", "count", n)
	}
	return nil
}
