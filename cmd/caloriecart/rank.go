package main

import (
	"fmt"

	"github.com/caloriecart/backend/internal/infrastructure/flatfile"
	"github.com/caloriecart/backend/internal/usecase"
	"github.com/spf13/cobra"
)

func newRankCmd(a *app) *cobra.Command {
	var (
		match string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "rank <file>",
		Short: "Rank a CSV or JSON nutrition table by calories per dollar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flatfile.ReadFile(args[0])
			if err != nil {
				return err
			}

			engine := usecase.NewRankingEngine(usecase.RankingConfig{})
			rows := usecase.FilterByDescription(table.Rows, match)
			if err := engine.Validate(rows); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			ranked := engine.Rank(rows)

			if out != "" {
				return flatfile.WriteRankedFile(out, table.Columns, ranked)
			}
			return usecase.FormatReport(cmd.OutOrStdout(), ranked)
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "keep rows whose description fuzzily contains this")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the ranked table here (.csv or .json) instead of printing")
	return cmd
}
