package main

import (
	"fmt"

	"github.com/caloriecart/backend/config"
	"github.com/caloriecart/backend/internal/infrastructure/cache"
	"github.com/caloriecart/backend/internal/infrastructure/kroger"
	"github.com/caloriecart/backend/internal/metrics"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "caloriecart",
		Short:         "Rank grocery products by calories per dollar",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			config.ConfigureLogging(cfg.Server, cmd.ErrOrStderr())
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newFetchCmd(a),
		newAuthCmd(a),
		newRankCmd(a),
		newServeCmd(a),
	)
	return root
}

// newCatalogClient wires the catalog client to the configured token cache.
// The returned cache must be closed by the caller.
func (a *app) newCatalogClient(m *metrics.Metrics) (*kroger.Client, cache.Repository, error) {
	if err := a.cfg.RequireKroger(); err != nil {
		return nil, nil, err
	}

	store, err := cache.New(a.cfg.Cache.Type, a.cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache: %w", err)
	}

	baseURL := a.cfg.Kroger.BaseURL
	if baseURL == "" {
		baseURL = kroger.BaseURLFor(a.cfg.Kroger.UseSandbox)
	}

	client := kroger.NewClient(kroger.ClientConfig{
		BaseURL:           baseURL,
		ClientID:          a.cfg.Kroger.ClientID,
		ClientSecret:      a.cfg.Kroger.ClientSecret,
		RedirectURI:       a.cfg.Kroger.RedirectURI,
		RequestsPerSecond: a.cfg.RateLimit.RequestsPerSecond,
		RateLimitWait:     a.cfg.RateLimit.Wait,
		MaxRetries:        a.cfg.RateLimit.MaxRetries,
		TokenCache:        store,
		Metrics:           m,
	})
	client.SetDebug(log.IsLevelEnabled(log.DebugLevel))

	log.WithFields(log.Fields{
		"base_url": baseURL,
		"cache":    a.cfg.Cache.Type,
		"zip":      a.cfg.Kroger.ZipCode,
	}).Info("catalog client configured")
	return client, store, nil
}
