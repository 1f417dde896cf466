package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vpack/internal/event"
	"vpack/internal/store"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show event store health and counts",
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

			health, err := st.CheckHealth(cmd.Context())
			if err != nil {
				return fmt.Errorf("check database health: %w", err)
			}
			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Database", health.DBPath},
				{"Readable", boolWord(health.DatabaseReadable)},
				{"Integrity", boolWord(health.IntegrityCheck)},
				{"Events", strconv.Itoa(health.TotalEvents)},
				{"Completed", strconv.Itoa(stats[event.StatusCompleted])},
				{"Empty", strconv.Itoa(stats[event.StatusEmpty])},
				{"Open", strconv.Itoa(stats[event.StatusOpen])},
				{"Pending exports", strconv.Itoa(health.PendingExports)},
			}
			if len(health.MissingTables) > 0 {
				rows = append(rows, []string{"Missing tables", strings.Join(health.MissingTables, ", ")})
			}
			fmt.Fprint(out, renderTable(
				[]string{"FIELD", "VALUE"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			fmt.Fprintln(out)
			return nil
		},
	}
}

func boolWord(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
