package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// logLevelEnv overrides the log level, e.g. MEMBER_UPLOADER_LOG_LEVEL=info.
const logLevelEnv = "MEMBER_UPLOADER_LOG_LEVEL"

type loggerKey struct{}

func main() {
	ctx := context.Background()

	level := slog.LevelDebug
	if v, ok := os.LookupEnv(logLevelEnv); ok {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid %s %q, using debug\n", logLevelEnv, v)
			level = slog.LevelDebug
		}
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	ctx = context.WithValue(ctx, loggerKey{}, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := cmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "stopped member_uploader due to the error %q\n", err)
		os.Exit(1)
	}
}
