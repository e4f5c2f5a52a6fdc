package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/parley/internal/composer"
	"github.com/MikeSquared-Agency/parley/internal/script"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		patternsFile string
		pretty       bool
	)
	cmd := &cobra.Command{
		Use:   "analyze <script.yaml>",
		Short: "Analyze a dialogue script and print the session report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mustConfig()
			if patternsFile == "" {
				patternsFile = cfg.PatternsFile
			}
			table, err := loadTable(patternsFile)
			if err != nil {
				return err
			}

			sc, err := script.Load(args[0])
			if err != nil {
				return err
			}
			c := composer.New(composer.WithTable(table))
			if _, err := sc.Apply(c); err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(c.ExportAnalysisReport())
		},
	}
	cmd.Flags().StringVar(&patternsFile, "patterns", "", "YAML file extending the built-in patterns")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON report")
	return cmd
}
