package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/app"
	"github.com/kurochkinivan/member_uploader/internal/config"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "member_uploader",
		Usage:   "Bulk membership upload and reconciliation service",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
			if !ok {
				return errors.New("failed to get logger from context")
			}

			cfg := config.Load(cmd)

			return app.New(log, cfg).Run(ctx)
		},
	}
}

func flags() []cli.Flag {
	var config string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.StringFlag{
			Name:      "uploads-dir",
			Aliases:   []string{"u"},
			Usage:     "Set directory to store uploaded files in",
			Value:     "uploads",
			Sources:   cli.NewValueSourceChain(yaml.YAML("app.uploads_dir", altsrc.NewStringPtrSourcer(&config))),
			Validator: validateDirectory,
		},
		&cli.StringFlag{
			Name:      "reports-dir",
			Aliases:   []string{"r"},
			Usage:     "Set directory to write reports to",
			Value:     "reports",
			Sources:   cli.NewValueSourceChain(yaml.YAML("app.reports_dir", altsrc.NewStringPtrSourcer(&config))),
			Validator: validateDirectory,
		},
		&cli.Int64Flag{
			Name:    "max-upload-size",
			Usage:   "Set maximum accepted upload size in bytes",
			Value:   50 << 20,
			Sources: cli.NewValueSourceChain(yaml.YAML("app.max_upload_size", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Set number of jobs processed concurrently",
			Value:   2,
			Sources: cli.NewValueSourceChain(yaml.YAML("worker.count", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:      "poll-interval",
			Usage:     "Set job queue poll interval",
			Value:     3 * time.Second,
			Validator: validatePositiveDuration,
			Sources:   cli.NewValueSourceChain(yaml.YAML("worker.poll_interval", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:      "lease-duration",
			Usage:     "Set how long a claimed job is owned without progress before it may be reclaimed",
			Value:     5 * time.Minute,
			Validator: validatePositiveDuration,
			Sources:   cli.NewValueSourceChain(yaml.YAML("worker.lease_duration", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "progress-every",
			Usage:   "Set number of rows between progress updates",
			Value:   50,
			Sources: cli.NewValueSourceChain(yaml.YAML("worker.progress_every", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:      "row-tx-timeout",
			Usage:     "Set timeout of a single row transaction",
			Value:     10 * time.Second,
			Validator: validatePositiveDuration,
			Sources:   cli.NewValueSourceChain(yaml.YAML("worker.row_tx_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "row-retries",
			Usage:   "Set number of retries of a row transaction after a transient error",
			Value:   3,
			Sources: cli.NewValueSourceChain(yaml.YAML("worker.row_retries", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "row-retry-delay",
			Usage:   "Set delay between row transaction retries",
			Value:   100 * time.Millisecond,
			Sources: cli.NewValueSourceChain(yaml.YAML("worker.row_retry_delay", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "verification-url",
			Usage:   "Set base URL of the voter verification service, verification is skipped when empty",
			Sources: cli.NewValueSourceChain(yaml.YAML("verification.url", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "verification-timeout",
			Usage:   "Set timeout of a single verification request",
			Value:   5 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("verification.timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "verification-quota",
			Usage:   "Set number of verification requests allowed per window",
			Value:   1000,
			Sources: cli.NewValueSourceChain(yaml.YAML("verification.quota", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:      "verification-window",
			Usage:     "Set verification quota window",
			Value:     time.Hour,
			Validator: validatePositiveDuration,
			Sources:   cli.NewValueSourceChain(yaml.YAML("verification.window", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:     "pg-host",
			Usage:    "Set PostgreSQL host",
			Value:    "localhost",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.host", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-port",
			Usage:    "Set PostgreSQL port",
			Value:    "5432",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.port", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-username",
			Usage:    "Set PostgreSQL username",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.username", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-password",
			Usage:    "Set PostgreSQL password",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.password", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-dbname",
			Usage:    "Set PostgreSQL database name",
			Value:    "member_uploader",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.dbname", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "pg-sslmode",
			Usage:   "Set PostgreSQL sslmode",
			Value:   "disable",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.sslmode", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.Int32Flag{
			Name:    "pg-max-conns",
			Usage:   "Set PostgreSQL pool size, zero keeps the driver default",
			Sources: cli.NewValueSourceChain(yaml.YAML("postgresql.max_conns", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
	}
}

// validateDirectory accepts a missing directory, it is created on start.
func validateDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}

	return nil
}

func validatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
