package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vpack/internal/event"
	"vpack/internal/store"
)

func newEventsCommand(cmdCtx *commandContext) *cobra.Command {
	var cameraFilter string
	var statusFilter string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded packing events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open event store: %w", err)
			}
			defer st.Close() //nolint:errcheck

			var statuses []event.Status
			if statusFilter != "" {
				status, ok := event.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q (want open, completed, or empty)", statusFilter)
				}
				statuses = append(statuses, status)
			}

			events, err := st.ListEvents(cmd.Context(), cameraFilter, statuses...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(eventsPayload(events))
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No events recorded.")
				return nil
			}
			fmt.Fprint(out, renderEvents(events))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&cameraFilter, "camera", "", "Only show events from this camera")
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show events with this status (open, completed, empty)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit events as JSON")
	return cmd
}

type eventJSON struct {
	ID           string `json:"id"`
	Camera       string `json:"camera"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	Status       string `json:"status"`
	ResolvedCode string `json:"resolved_code,omitempty"`
	ResolvedBox  string `json:"resolved_box,omitempty"`
}

func eventsPayload(events []*event.PackingEvent) []eventJSON {
	payload := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		item := eventJSON{
			ID:           ev.ID,
			Camera:       ev.Camera,
			StartTime:    ev.StartTime.Format(time.RFC3339),
			Status:       string(ev.Status),
			ResolvedCode: ev.ResolvedCode,
		}
		if ev.EndTime != nil {
			item.EndTime = ev.EndTime.Format(time.RFC3339)
		}
		if ev.ResolvedBox != nil {
			item.ResolvedBox = ev.ResolvedBox.String()
		}
		payload = append(payload, item)
	}
	return payload
}

func renderEvents(events []*event.PackingEvent) string {
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		end := "-"
		duration := "-"
		if ev.EndTime != nil {
			end = ev.EndTime.Format(time.RFC3339)
			duration = ev.Duration().Round(time.Second).String()
		}
		code := ev.ResolvedCode
		if code == "" {
			code = "-"
		}
		rows = append(rows, []string{
			ev.ID[:8],
			ev.Camera,
			string(ev.Status),
			ev.StartTime.Format(time.RFC3339),
			end,
			duration,
			code,
		})
	}
	return renderTable(
		[]string{"EVENT", "CAMERA", "STATUS", "START", "END", "DURATION", "CODE"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}
