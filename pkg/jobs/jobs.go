// Package jobs runs the periodic maintenance tasks: rank recalculation and
// expiry of orders nobody accepted.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"entregas/config"
	"entregas/pkg/logger"
	"entregas/pkg/metrics"
	"entregas/pkg/models"
	"entregas/service"
)

const (
	JobRankSync    = "rank_sync"
	JobExpireOrder = "expire_orders"

	runTimeout = 5 * time.Minute
)

type Scheduler struct {
	cron       *cron.Cron
	svc        service.IServiceManager
	log        logger.ILogger
	pendingTTL time.Duration
}

func New(cfg config.Config, svc service.IServiceManager, log logger.ILogger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warning("unknown timezone, using UTC", logger.String("timezone", cfg.Timezone), logger.Error(err))
		loc = time.UTC
	}

	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		svc:        svc,
		log:        log,
		pendingTTL: cfg.PendingOrderTTL,
	}

	if _, err := s.cron.AddFunc(cfg.RankSyncSchedule, s.wrap(JobRankSync, s.SyncRanks)); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", JobRankSync, err)
	}
	if _, err := s.cron.AddFunc(cfg.ExpireOrdersSchedule, s.wrap(JobExpireOrder, s.ExpireOrders)); err != nil {
		return nil, fmt.Errorf("schedule %s: %w", JobExpireOrder, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("⏰ scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warning("scheduler stop timed out")
	}
}

// SyncRanks recalculates the tier of every driver and returns how many
// changed. Failures on one driver do not stop the others.
func (s *Scheduler) SyncRanks(ctx context.Context) (int, error) {
	drivers, err := s.svc.Profile().List(ctx, models.ProfileFilter{Role: models.RoleDriver})
	if err != nil {
		return 0, err
	}

	changed, failed := 0, 0
	for _, d := range drivers {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		_, moved, err := s.svc.Profile().SyncRank(ctx, d.ID)
		if err != nil {
			failed++
			s.log.Error("rank sync failed", logger.Int64("driver_id", d.ID), logger.Error(err))
			continue
		}
		if moved {
			changed++
		}
	}
	if failed > 0 {
		return changed, fmt.Errorf("rank sync failed for %d of %d drivers", failed, len(drivers))
	}
	return changed, nil
}

func (s *Scheduler) ExpireOrders(ctx context.Context) (int, error) {
	return s.svc.Order().ExpireStale(ctx, s.pendingTTL)
}

func (s *Scheduler) wrap(name string, fn func(context.Context) (int, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		start := time.Now()
		n, err := fn(ctx)
		metrics.JobRun(name, err == nil)
		if err != nil {
			s.log.Error("job failed", logger.String("job", name), logger.Int("affected", n), logger.Error(err))
			return
		}
		s.log.Info("job finished", logger.String("job", name), logger.Int("affected", n),
			logger.Duration("took", time.Since(start)))
	}
}

type cronLogger struct {
	log logger.ILogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(pairs(keysAndValues), logger.Error(err))...)
}

func pairs(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
