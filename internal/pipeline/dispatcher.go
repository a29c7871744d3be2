package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/domain"
)

// defaultPollInterval replaces a non-positive poll interval.
const defaultPollInterval = 3 * time.Second

// Dispatcher claims queued jobs and hands each one to an idle processor. A job is only
// claimed once a processor has announced itself idle, so a claimed job never waits in
// a channel while its lease runs.
type Dispatcher struct {
	log          *slog.Logger
	pollInterval time.Duration
	lease        time.Duration
	idle         <-chan struct{}
	wake         <-chan struct{}
	jobs         chan<- *domain.UploadJob
	claimer      JobClaimer
}

func NewDispatcher(
	log *slog.Logger,
	pollInterval time.Duration,
	lease time.Duration,
	idle <-chan struct{},
	wake <-chan struct{},
	jobs chan<- *domain.UploadJob,
	claimer JobClaimer,
) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Dispatcher{
		log:          log,
		pollInterval: pollInterval,
		lease:        lease,
		idle:         idle,
		wake:         wake,
		jobs:         jobs,
		claimer:      claimer,
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.jobs)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	free := 0
	for {
		select {
		case <-d.idle:
			free++
			continue
		case <-ticker.C:
		case <-d.wake:
		case <-ctx.Done():
			return ctx.Err()
		}

		free = d.drainIdle(free)
		if free == 0 {
			continue
		}

		d.log.DebugContext(ctx, "poll cycle started", slog.Int("idle_processors", free))

		var err error
		free, err = d.dispatch(ctx, free)
		if err != nil && !errors.Is(err, context.Canceled) {
			d.log.ErrorContext(ctx, "failed to claim job", slog.String("err", err.Error()))
		}
	}
}

func (d *Dispatcher) drainIdle(free int) int {
	for {
		select {
		case <-d.idle:
			free++
		default:
			return free
		}
	}
}

// dispatch claims jobs while processors are idle and returns the remaining idle count.
func (d *Dispatcher) dispatch(ctx context.Context, free int) (int, error) {
	for free > 0 {
		job, err := d.claimer.ClaimNext(ctx, d.lease)
		if errors.Is(err, domain.ErrJobNotFound) {
			return free, nil
		}
		if err != nil {
			return free, err
		}

		d.log.InfoContext(ctx, "job claimed",
			slog.String("job_id", job.ID),
			slog.String("file_name", job.FileName),
			slog.Int("attempt", job.Attempts),
		)

		select {
		case d.jobs <- job:
			free--
		case <-ctx.Done():
			return free, ctx.Err()
		}
	}

	return free, nil
}
