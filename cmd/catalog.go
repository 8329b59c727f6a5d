/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/bootstrap"
	"github.com/daffahilmyf/creature-catalog/internal/client"
	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/presentation"
	"github.com/spf13/cobra"
)

var catalogWaitEnrichment bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the creature catalog through its HTTP API",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered creatures",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, cfg := newCatalogStore()
		defer store.Close()

		res := store.FetchAll(cmd.Context())
		exitOnFailure(res)

		state := store.Snapshot()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tIMAGE")
		for _, c := range state.Creatures {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, presentation.ImageURL(c.Sprites, nil))
		}
		_ = w.Flush()
		fmt.Fprintf(os.Stdout, "%d creatures (%s)\n", len(state.Creatures), cfg.Client.BaseURL)
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <name-or-id>",
	Short: "Register a creature by upstream name or numeric id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, cfg := newCatalogStore()
		defer store.Close()

		exitOnFailure(store.Add(cmd.Context(), args[0]))
		reportMutation(cmd.Context(), store, cfg)
	},
}

var catalogUpdateCmd = &cobra.Command{
	Use:   "update <id> <name-or-id>",
	Short: "Replace a creature with another upstream record",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, cfg := newCatalogStore()
		defer store.Close()

		exitOnFailure(store.Update(cmd.Context(), args[0], args[1]))
		reportMutation(cmd.Context(), store, cfg)
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id> [display-name]",
	Short: "Delete a creature",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		store, cfg := newCatalogStore()
		defer store.Close()

		name := args[0]
		if len(args) == 2 {
			name = args[1]
		}
		exitOnFailure(store.Delete(cmd.Context(), args[0], name))
		reportMutation(cmd.Context(), store, cfg)
	},
}

func newCatalogStore() (*client.Store, config.Config) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	log, err := bootstrap.BuildLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log error:", err)
		os.Exit(1)
	}

	var enricher client.Enricher
	if cfg.Enrichment.WebhookURL != "" {
		enricher = client.NewEnrichment(cfg.Enrichment.WebhookURL)
	}
	store := client.NewStore(
		client.NewAPI(cfg.Client.BaseURL, cfg.Client.Timeout),
		enricher,
		log,
		client.WithSuccessTTL(cfg.Client.SuccessTTL),
		client.WithEnrichmentTimeout(cfg.Enrichment.Timeout),
	)
	return store, cfg
}

func exitOnFailure(res client.Result) {
	if !res.Success {
		fmt.Fprintln(os.Stderr, "error:", res.Error)
		os.Exit(1)
	}
}

func reportMutation(ctx context.Context, store *client.Store, cfg config.Config) {
	state := store.Snapshot()
	fmt.Fprintln(os.Stdout, state.SuccessMessage)
	if state.Error != "" {
		fmt.Fprintln(os.Stderr, "warning:", state.Error)
	}
	if !catalogWaitEnrichment || cfg.Enrichment.WebhookURL == "" {
		return
	}

	deadline := time.NewTimer(cfg.Enrichment.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		if text := store.Snapshot().EnrichmentText; text != "" {
			fmt.Fprintln(os.Stdout, text)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
		}
	}
}

func init() {
	catalogCmd.PersistentFlags().BoolVar(&catalogWaitEnrichment, "enrich", false, "wait for the enrichment webhook and print its text")
	catalogCmd.AddCommand(catalogListCmd, catalogAddCmd, catalogUpdateCmd, catalogDeleteCmd)
	rootCmd.AddCommand(catalogCmd)
}
