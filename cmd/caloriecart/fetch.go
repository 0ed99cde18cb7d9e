package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/caloriecart/backend/internal/infrastructure/flatfile"
	"github.com/caloriecart/backend/internal/metrics"
	"github.com/caloriecart/backend/internal/usecase"
	"github.com/spf13/cobra"
)

const previewSize = 20

func newFetchCmd(a *app) *cobra.Command {
	var (
		terms       []string
		maxResults  int
		all         bool
		maxProducts int
		out         string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Collect products with nutrition facts from the nearest store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if !cmd.Flags().Changed("terms") {
				terms = cfg.Fetch.SearchTerms
			}
			if !cmd.Flags().Changed("max-results") {
				maxResults = cfg.Fetch.MaxResults
			}
			if !cmd.Flags().Changed("max-products") {
				maxProducts = cfg.Fetch.MaxProducts
			}
			if out == "" {
				out = cfg.Output.Rows
			}

			client, store, err := a.newCatalogClient(metrics.NewMetrics())
			if err != nil {
				return err
			}
			defer store.Close()

			collector := usecase.NewCollectorService(client, store, usecase.CollectorConfig{
				ZipCode:   cfg.Kroger.ZipCode,
				PageSize:  cfg.Fetch.PageSize,
				PageDelay: cfg.Fetch.PageDelay,
				CacheTTL:  cfg.Cache.TTL,
			})

			ctx := cmd.Context()
			stdout := cmd.OutOrStdout()

			searched, err := collector.Collect(ctx, terms, maxResults)
			if err != nil {
				return err
			}
			printProducts(stdout, searched.Products, previewSize)
			if err := flatfile.WriteProductsFile(cfg.Output.SearchReport, searched.Products); err != nil {
				return err
			}
			rows := searched.Rows

			if all {
				everything, err := collector.CollectAll(ctx, maxProducts)
				if err != nil {
					return err
				}
				printProducts(stdout, everything.Products, previewSize)
				if err := flatfile.WriteProductsFile(cfg.Output.AllReport, everything.Products); err != nil {
					return err
				}
				rows = mergeRows(rows, everything.Rows)
			}

			if err := flatfile.WriteRowsFile(out, rows); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Wrote %d rows to %s (%d products skipped without price or calories)\n",
				len(rows), out, searched.Skipped)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&terms, "terms", nil, "search terms (default from config)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "products to keep per search term")
	cmd.Flags().BoolVar(&all, "all", false, "also page the catalog without a search term")
	cmd.Flags().IntVar(&maxProducts, "max-products", 0, "products to keep with --all, 0 for no limit")
	cmd.Flags().StringVarP(&out, "out", "o", "", "nutrition table to write, .csv or .json")
	return cmd
}

// mergeRows appends the rows of more whose id is not already in rows.
func mergeRows(rows, more []domain.ProductNutritionRow) []domain.ProductNutritionRow {
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		seen[r.ID] = true
	}
	for _, r := range more {
		if r.ID != "" && seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		rows = append(rows, r)
	}
	return rows
}

// printProducts writes a short listing of the first max products.
func printProducts(w io.Writer, products []domain.Product, max int) {
	shown := products
	if len(shown) > max {
		shown = shown[:max]
	}

	rule := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\nPRODUCTS (showing first %d of %d)\n%s\n\n", rule, len(shown), len(products), rule)

	for i, p := range shown {
		fmt.Fprintf(w, "%d. %s\n", i+1, orNA(p.Description))
		fmt.Fprintf(w, "   Brand: %s\n", orNA(p.Brand))
		fmt.Fprintf(w, "   Product ID: %s\n", orNA(p.ProductID))
		if len(p.Items) > 0 {
			item := p.Items[0]
			if item.Price != nil {
				if item.Price.Promo > 0 {
					fmt.Fprintf(w, "   Price: $%.2f (Sale: $%.2f)\n", item.Price.Regular, item.Price.Promo)
				} else {
					fmt.Fprintf(w, "   Price: $%.2f\n", item.Price.Regular)
				}
			}
			if item.Size != "" {
				fmt.Fprintf(w, "   Size: %s\n", item.Size)
			}
		}
		if len(p.Categories) > 0 {
			categories := p.Categories
			if len(categories) > 3 {
				categories = categories[:3]
			}
			fmt.Fprintf(w, "   Categories: %s\n", strings.Join(categories, ", "))
		}
		fmt.Fprintln(w)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
