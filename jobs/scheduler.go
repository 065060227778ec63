// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"

	"slm/logger"
	"slm/services/ordering"

	"github.com/robfig/cron/v3"
)

// Auditor repairs ordering gaps and duplicates.
type Auditor interface {
	Audit(ctx context.Context) (*ordering.AuditReport, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
	jobs int
}

func NewScheduler(baseLog *logger.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), log: baseLog.With("component", "Scheduler")}
}

// AddOrderingAudit schedules the density audit. An empty spec leaves the job
// disabled and reports false.
func (s *Scheduler) AddOrderingAudit(spec string, auditor Auditor) (bool, error) {
	if spec == "" {
		s.log.Info("ordering audit disabled")
		return false, nil
	}
	if _, err := s.cron.AddFunc(spec, OrderingAudit(auditor, s.log)); err != nil {
		return false, fmt.Errorf("schedule ordering audit %q: %w", spec, err)
	}
	s.jobs++
	s.log.Info("ordering audit scheduled", "cron", spec)
	return true, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", s.jobs)
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

// OrderingAudit wraps one audit run as a cron job.
func OrderingAudit(auditor Auditor, log *logger.Logger) func() {
	return func() {
		log.Info("running ordering audit")
		report, err := auditor.Audit(context.Background())
		if err != nil {
			log.Error("ordering audit failed", "error", err)
			return
		}
		if len(report.ScopesRepaired) > 0 {
			log.Warn("ordering audit repaired scopes",
				"scopes", report.ScopesRepaired,
				"rows", report.RowsRenumbered,
			)
		}
	}
}
