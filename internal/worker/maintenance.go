// Package worker runs the background maintenance jobs: correlation accuracy
// refresh, delivery reconciliation and history retention.
package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/sentinelops/sentinel/internal/correlation"
	"github.com/sentinelops/sentinel/internal/dispatch"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
)

// AccuracyRefresher reloads correlation accuracy tables from the cache
type AccuracyRefresher interface {
	Refresh(ctx context.Context) error
}

// DeliveryMaintainer reconciles stuck deliveries and purges old history
type DeliveryMaintainer interface {
	Reconcile(ctx context.Context) error
	PurgeExpired(ctx context.Context) (int64, error)
}

var (
	_ AccuracyRefresher  = (*correlation.AccuracyTracker)(nil)
	_ DeliveryMaintainer = (*dispatch.Dispatcher)(nil)
)

// Maintenance schedules the recurring pipeline upkeep jobs
type Maintenance struct {
	accuracy AccuracyRefresher
	delivery DeliveryMaintainer
	logger   *logger.Logger
	cron     *cron.Cron
}

// NewMaintenance creates the maintenance worker
func NewMaintenance(accuracy AccuracyRefresher, delivery DeliveryMaintainer, log *logger.Logger) *Maintenance {
	return &Maintenance{
		accuracy: accuracy,
		delivery: delivery,
		logger:   log,
		cron:     cron.New(),
	}
}

// Start registers the jobs and runs the scheduler until ctx is cancelled
func (m *Maintenance) Start(ctx context.Context) error {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{"@every 1m", "reconcile_deliveries", m.delivery.Reconcile},
		{"@every 1h", "refresh_accuracy", m.accuracy.Refresh},
		{"@daily", "purge_notification_history", m.purgeHistory},
	}

	for _, job := range jobs {
		job := job
		if _, err := m.cron.AddFunc(job.spec, func() {
			if err := job.run(ctx); err != nil {
				m.logger.WithFields(map[string]interface{}{
					"job": job.name,
				}).ErrorWithErr(err, "Maintenance job failed")
			}
		}); err != nil {
			return err
		}
	}

	m.logger.Info("Starting maintenance worker")
	m.cron.Start()

	go func() {
		<-ctx.Done()
		stopCtx := m.cron.Stop()
		<-stopCtx.Done()
		m.logger.Info("Maintenance worker stopped")
	}()

	return nil
}

// purgeHistory adapts the purge's row count into the job signature
func (m *Maintenance) purgeHistory(ctx context.Context) error {
	_, err := m.delivery.PurgeExpired(ctx)
	return err
}
