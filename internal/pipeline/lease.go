package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"
)

// holdLease extends the job's lease every half lease until the returned func is called.
// A finished job waiting for, or sitting in, the reporter must not be reclaimed.
func holdLease(
	ctx context.Context,
	log *slog.Logger,
	clk clock.Clock,
	extender LeaseExtender,
	jobID string,
	lease time.Duration,
) (release func()) {
	if lease <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			select {
			case <-clk.After(lease / 2):
				if err := extender.ExtendLease(ctx, jobID, lease); err != nil {
					log.WarnContext(ctx, "failed to extend job lease",
						slog.String("job_id", jobID),
						slog.String("err", err.Error()),
					)
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}
