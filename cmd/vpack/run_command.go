package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"vpack/internal/logging"
	"vpack/internal/notifications"
	"vpack/internal/recovery"
	"vpack/internal/store"
	"vpack/internal/stream"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process all configured camera streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			// One engine per data dir; two writers would corrupt the
			// event sequence even though SQLite serializes the writes.
			lock := flock.New(filepath.Join(cfg.Paths.DataDir, "vpack.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire instance lock: %w", err)
			}
			if !locked {
				return errors.New("another vpack instance is already running for this data directory")
			}
			defer lock.Unlock() //nolint:errcheck

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open event store: %w", err)
			}
			defer st.Close() //nolint:errcheck

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			profiles, err := st.Profiles(ctx, cfg.Engine.ProfileAlpha)
			if err != nil {
				return fmt.Errorf("load size profiles: %w", err)
			}

			notifier := notifications.NewService(cfg)
			recoverer := recovery.NewService(cfg)

			exporterCtx, stopExporter := context.WithCancel(ctx)
			defer stopExporter()
			exporter := recovery.NewExporter(st, recoverer, logger, 10*time.Second, cfg.Recovery.MaxAttempts)
			go exporter.Run(exporterCtx)

			cameras := stream.CamerasFromConfig(cfg, logger)
			if len(cameras) == 0 {
				return errors.New("no usable camera streams configured")
			}

			runner := stream.NewRunner(cfg, st, profiles, notifier, logger)
			if err := runner.RunAll(ctx, cameras); err != nil {
				return err
			}

			// Flush whatever the streams queued before shutting down.
			if err := exporter.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("final export pass failed", logging.Error(err))
			}
			return nil
		},
	}
}
