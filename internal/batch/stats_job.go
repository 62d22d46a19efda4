package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"customer-registry/internal/domain/customer"
	"customer-registry/internal/domain/user"
	"customer-registry/internal/infrastructure/monitoring"
)

// CountFunc reports how many records of one kind are stored.
type CountFunc func(ctx context.Context) (int64, error)

// RecordStatsJob refreshes the per-kind record count gauges.
type RecordStatsJob struct {
	counters map[string]CountFunc
	setGauge func(kind string, count int64)
	logger   *slog.Logger
}

func NewRecordStatsJob(customerSvc customer.CustomerService, userSvc user.UserService, logger *slog.Logger) *RecordStatsJob {
	if customerSvc == nil || userSvc == nil || logger == nil {
		panic("RecordStatsJob dependencies cannot be nil")
	}
	return newRecordStatsJob(map[string]CountFunc{
		string(customer.Kind): customerSvc.CountCustomers,
		string(user.Kind):     userSvc.CountUsers,
	}, monitoring.SetRecordCount, logger)
}

func newRecordStatsJob(counters map[string]CountFunc, setGauge func(string, int64), logger *slog.Logger) *RecordStatsJob {
	return &RecordStatsJob{
		counters: counters,
		setGauge: setGauge,
		logger:   logger.With("job", "RecordStats"),
	}
}

func (j *RecordStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.DebugContext(ctx, "Starting record stats job.")

	var wg sync.WaitGroup
	var errorCount atomic.Int32

	for kind, count := range j.counters {
		kind, count := kind, count
		wg.Add(1)
		go func() {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("kind", kind))
			n, err := count(ctx)
			if err != nil {
				logCtx.ErrorContext(ctx, "Failed to count records", slog.Any("error", err))
				errorCount.Add(1)
				return
			}
			j.setGauge(kind, n)
			logCtx.DebugContext(ctx, "Record count refreshed.", slog.Int64("count", n))
		}()
	}

	wg.Wait()

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("kinds", len(j.counters)),
		slog.Int("errors_encountered", int(errorCount.Load())),
	)
	if n := errorCount.Load(); n > 0 {
		summaryLog.WarnContext(ctx, "Record stats job finished with errors.")
		return fmt.Errorf("job completed with %d errors", n)
	}
	summaryLog.InfoContext(ctx, "Record stats job finished successfully.")
	return nil
}

// Schedule registers the job on c, bounding each run by timeout.
func (j *RecordStatsJob) Schedule(c Scheduler, spec string, timeout time.Duration) error {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if runErr := j.Run(ctx); runErr != nil {
			j.logger.Error("Record stats job finished with error", slog.Any("error", runErr))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule record stats job with spec %q: %w", spec, err)
	}
	return nil
}
