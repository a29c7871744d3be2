package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	Worker
	Verification
	PostgreSQL
	HTTP
}

type App struct {
	UploadsDirectory string
	ReportsDirectory string
	MaxUploadSize    int64
}

type Worker struct {
	Count         int
	PollInterval  time.Duration
	LeaseDuration time.Duration
	ProgressEvery int
	RowTxTimeout  time.Duration
	RowRetries    int
	RetryDelay    time.Duration
}

type Verification struct {
	URL     string
	Timeout time.Duration
	Quota   int
	Window  time.Duration
}

// Enabled reports whether an external verification service is configured.
func (v Verification) Enabled() bool {
	return v.URL != ""
}

type PostgreSQL struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			UploadsDirectory: cmd.String("uploads-dir"),
			ReportsDirectory: cmd.String("reports-dir"),
			MaxUploadSize:    cmd.Int64("max-upload-size"),
		},
		Worker: Worker{
			Count:         cmd.Int("workers"),
			PollInterval:  cmd.Duration("poll-interval"),
			LeaseDuration: cmd.Duration("lease-duration"),
			ProgressEvery: cmd.Int("progress-every"),
			RowTxTimeout:  cmd.Duration("row-tx-timeout"),
			RowRetries:    cmd.Int("row-retries"),
			RetryDelay:    cmd.Duration("row-retry-delay"),
		},
		Verification: Verification{
			URL:     cmd.String("verification-url"),
			Timeout: cmd.Duration("verification-timeout"),
			Quota:   cmd.Int("verification-quota"),
			Window:  cmd.Duration("verification-window"),
		},
		PostgreSQL: PostgreSQL{
			Host:     cmd.String("pg-host"),
			Port:     cmd.String("pg-port"),
			Username: cmd.String("pg-username"),
			Password: cmd.String("pg-password"),
			DBName:   cmd.String("pg-dbname"),
			SSLMode:  cmd.String("pg-sslmode"),
			MaxConns: cmd.Int32("pg-max-conns"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
	}
}
