package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/parley/internal/store"
)

func newReportsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reports <session-id>",
		Short: "List archived reports for a session, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mustConfig()
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id %q: %w", args[0], err)
			}

			db, err := store.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := db.ListReports(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of reports")
	return cmd
}
