package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"vpack/internal/event"
	"vpack/internal/logging"
	"vpack/internal/sizeprofile"
	"vpack/internal/stream"
)

func newReplayCommand(cmdCtx *commandContext) *cobra.Command {
	var cameraID string
	var markerText string

	cmd := &cobra.Command{
		Use:   "replay <scan-log>",
		Short: "Replay one scan log and print the resolved events",
		Long: "Replay runs a single scan log through the event engine with an " +
			"isolated in-memory size-profile store. Nothing is persisted; use " +
			"it to inspect how a capture session segments into events.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			source, err := stream.OpenScanLog(args[0], markerText)
			if err != nil {
				return err
			}
			defer source.Close() //nolint:errcheck

			manager := event.NewManager(event.Options{
				Camera:            cameraID,
				MarkerText:        markerText,
				SmoothingWindow:   cfg.Engine.SmoothingWindow,
				SmoothingMajority: cfg.Engine.SmoothingMajority,
				FallbackMaxWidth:  cfg.Engine.FallbackMaxWidth,
				FallbackMaxHeight: cfg.Engine.FallbackMaxHeight,
				MinDisplaceFrac:   cfg.Engine.MinDisplaceFrac,
				DefaultDisplacePx: cfg.Engine.DefaultDisplacePx,
				ConvergenceWindow: cfg.Engine.ConvergenceWindow,
				RecoveryFrames:    cfg.Engine.RecoveryFrames,
			}, sizeprofile.NewMemoryStore(cfg.Engine.ProfileAlpha), logging.NewNop())

			out := cmd.OutOrStdout()
			var resolutions []event.Resolution
			for {
				obs, err := source.Next(context.Background())
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				resolution, err := manager.Observe(obs)
				if err != nil {
					return err
				}
				if resolution != nil {
					resolutions = append(resolutions, *resolution)
				}
			}

			if len(resolutions) == 0 {
				fmt.Fprintln(out, "No events resolved.")
			} else {
				fmt.Fprint(out, renderResolutions(resolutions))
				fmt.Fprintln(out)
			}
			if open := manager.Open(); open != nil {
				fmt.Fprintf(out, "Still open at end of log: event started %s\n", open.StartTime.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cameraID, "camera", "replay", "Camera id to stamp on replayed events")
	cmd.Flags().StringVar(&markerText, "marker", "VPACK-MARKER", "Marker text that toggles the trigger signal")
	return cmd
}

func renderResolutions(resolutions []event.Resolution) string {
	rows := make([][]string, 0, len(resolutions))
	for _, res := range resolutions {
		ev := res.Event
		end := ""
		if ev.EndTime != nil {
			end = ev.EndTime.Format(time.RFC3339)
		}
		code := ev.ResolvedCode
		if code == "" {
			code = "-"
		}
		rows = append(rows, []string{
			ev.ID[:8],
			string(ev.Status),
			ev.StartTime.Format(time.RFC3339),
			end,
			code,
			fmt.Sprintf("%d", len(res.RecoveryFrames)),
		})
	}
	return renderTable(
		[]string{"EVENT", "STATUS", "START", "END", "CODE", "RECOVERY"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
