package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/pubsub/v2"
	"github.com/kurochkinivan/member_uploader/internal/config"
	v1 "github.com/kurochkinivan/member_uploader/internal/controller/http/v1"
	"github.com/kurochkinivan/member_uploader/internal/domain"
	"github.com/kurochkinivan/member_uploader/internal/intake"
	"github.com/kurochkinivan/member_uploader/internal/pipeline"
	"github.com/kurochkinivan/member_uploader/internal/progress"
	"github.com/kurochkinivan/member_uploader/internal/ratelimit"
	"github.com/kurochkinivan/member_uploader/internal/report"
	"github.com/kurochkinivan/member_uploader/internal/repository/postgresql"
	"github.com/kurochkinivan/member_uploader/internal/verification"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	log *slog.Logger
	cfg *config.Config
}

func New(log *slog.Logger, cfg *config.Config) *App {
	return &App{
		log: log,
		cfg: cfg,
	}
}

type repositories struct {
	jobs     *postgresql.JobsRepository
	outcomes *postgresql.OutcomesRepository
	members  *postgresql.MembersRepository
	lookups  *postgresql.LookupsRepository
	tx       *postgresql.TxManager
}

func (a *App) Run(ctx context.Context) error {
	a.log.InfoContext(ctx, "starting app",
		slog.String("uploads_dir", a.cfg.App.UploadsDirectory),
		slog.String("reports_dir", a.cfg.App.ReportsDirectory),
		slog.Int("workers", a.cfg.Worker.Count),
		slog.Bool("verification_enabled", a.cfg.Verification.Enabled()),
	)

	for _, dir := range []string{a.cfg.App.UploadsDirectory, a.cfg.App.ReportsDirectory} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	a.log.InfoContext(ctx, "establishing postgresql connection",
		slog.String("postgresql_host", a.cfg.PostgreSQL.Host),
		slog.String("postgresql_port", a.cfg.PostgreSQL.Port),
		slog.String("postgresql_dbname", a.cfg.PostgreSQL.DBName),
	)

	pool, err := postgresql.NewConnection(ctx, a.log, a.cfg.PostgreSQL)
	if err != nil {
		return fmt.Errorf("failed to create db connection: %w", err)
	}
	defer pool.Close()

	repos := repositories{
		jobs:     postgresql.NewJobsRepository(pool),
		outcomes: postgresql.NewOutcomesRepository(pool),
		members:  postgresql.NewMembersRepository(pool),
		lookups:  postgresql.NewLookupsRepository(pool),
		tx:       postgresql.NewTxManager(pool),
	}

	return a.startPipeline(ctx, repos)
}

func (a *App) startPipeline(ctx context.Context, repos repositories) error {
	workers := max(a.cfg.Worker.Count, 1)

	publisher := progress.NewPublisher(pubsub.NewSimpleHub(nil), clock.WallClock)
	limiter := ratelimit.New(clock.WallClock, a.cfg.Verification.Quota, a.cfg.Verification.Window)

	idle := make(chan struct{}, workers)
	wake := make(chan struct{}, 1)
	jobs := make(chan *domain.UploadJob)
	// unbuffered: a finished job's lease is held by its processor until the reporter takes it
	results := make(chan *domain.JobResult)

	// a freshly queued file is claimed without waiting for the next poll
	unsubscribe := publisher.Subscribe(func(ev domain.Event) {
		if ev.Name != domain.EventFileQueued {
			return
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	deps := pipeline.ProcessorDeps{
		Tracker:     repos.jobs,
		Outcomes:    repos.outcomes,
		Members:     repos.members,
		Lookups:     repos.lookups,
		Transactor:  repos.tx,
		Limiter:     limiter,
		Publisher:   publisher,
		Clock:       clock.WallClock,
		IsTransient: postgresql.IsTransient,
	}
	if a.cfg.Verification.Enabled() {
		deps.Verifier = verification.NewClient(a.cfg.Verification.URL, a.cfg.Verification.Timeout)
	}

	processorCfg := pipeline.ProcessorConfig{
		Lease:         a.cfg.Worker.LeaseDuration,
		ProgressEvery: a.cfg.Worker.ProgressEvery,
		RowTxTimeout:  a.cfg.Worker.RowTxTimeout,
		RowRetries:    a.cfg.Worker.RowRetries,
		RetryDelay:    a.cfg.Worker.RetryDelay,
	}

	dispatcher := pipeline.NewDispatcher(
		a.log,
		a.cfg.Worker.PollInterval,
		a.cfg.Worker.LeaseDuration,
		idle,
		wake,
		jobs,
		repos.jobs,
	)
	reporter := pipeline.NewReporter(
		a.log,
		clock.WallClock,
		a.cfg.Worker.LeaseDuration,
		results,
		repos.outcomes,
		repos.jobs,
		report.NewBuilder(a.log, a.cfg.App.ReportsDirectory),
		publisher,
	)
	eventLog := progress.NewEventLog(a.log, publisher)

	uploader := intake.NewService(a.log, a.cfg.App.UploadsDirectory, a.cfg.App.MaxUploadSize, repos.jobs, publisher)
	server := v1.NewServer(
		a.cfg.HTTP,
		v1.NewUploadsHandler(a.log, a.cfg.App.ReportsDirectory, uploader, repos.jobs, repos.outcomes, limiter),
		v1.NewEventsHandler(a.log, publisher),
	)

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		a.log.InfoContext(ctx, "event log started")
		return eventLog.Run(ctx)
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "dispatcher started", slog.Duration("poll_interval", a.cfg.Worker.PollInterval))
		return dispatcher.Run(ctx)
	})

	var processors sync.WaitGroup
	for i := range workers {
		processor := pipeline.NewProcessor(
			a.log.With(slog.Int("worker", i)),
			processorCfg,
			idle,
			jobs,
			results,
			deps,
		)

		processors.Add(1)
		erg.Go(func() error {
			defer processors.Done()

			a.log.InfoContext(ctx, "processor started", slog.Int("worker", i))
			return processor.Run(ctx)
		})
	}

	erg.Go(func() error {
		processors.Wait()
		close(results)
		return nil
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "reporter started")
		return reporter.Run(ctx)
	})

	erg.Go(func() error {
		a.log.InfoContext(ctx, "starting http server",
			slog.String("addr", net.JoinHostPort(a.cfg.HTTP.Host, a.cfg.HTTP.Port)),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	a.log.InfoContext(ctx, "all components started")

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.ErrorContext(ctx, "pipeline stopped with error", slog.String("err", err.Error()))

		return err
	}

	a.log.InfoContext(ctx, "pipeline stopped gracefully")

	return nil
}
