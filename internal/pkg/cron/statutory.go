package cron

import (
	"context"
	"time"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// StatutoryJobs contains statutory compliance cron jobs
type StatutoryJobs struct {
	statutoryService statutory.StatutoryService
	sweepInterval    time.Duration
}

// NewStatutoryJobs creates statutory cron jobs
func NewStatutoryJobs(statutoryService statutory.StatutoryService, sweepInterval time.Duration) *StatutoryJobs {
	if sweepInterval <= 0 {
		sweepInterval = 1 * time.Hour
	}
	return &StatutoryJobs{
		statutoryService: statutoryService,
		sweepInterval:    sweepInterval,
	}
}

// RegisterJobs registers all statutory cron jobs
func (j *StatutoryJobs) RegisterJobs(scheduler *Scheduler) {
	// Flip PENDING deadlines past their due date to OVERDUE
	scheduler.AddJob(Job{
		Name:       "sweep_overdue_deadlines",
		Interval:   j.sweepInterval,
		RunOnStart: true,
		Fn:         j.SweepOverdueDeadlines,
	})
}

// SweepOverdueDeadlines marks lapsed filing deadlines overdue
func (j *StatutoryJobs) SweepOverdueDeadlines(ctx context.Context) error {
	return j.statutoryService.SweepOverdueDeadlines(ctx)
}
