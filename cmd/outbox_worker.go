/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daffahilmyf/creature-catalog/internal/bootstrap"
	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/infra/messaging"
	"github.com/daffahilmyf/creature-catalog/internal/infra/persistence"
	"github.com/daffahilmyf/creature-catalog/internal/worker"
	"github.com/spf13/cobra"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox-worker",
	Short: "Publish creature outbox events to NATS JetStream",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

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

		db, err := bootstrap.OpenDB(ctx, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "db error:", err)
			os.Exit(1)
		}
		defer db.Close()

		natsClient, err := messaging.NewNATS(ctx, cfg.NATS)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nats error:", err)
			os.Exit(1)
		}
		if natsClient == nil {
			fmt.Fprintln(os.Stderr, "nats error: nats url is required")
			os.Exit(1)
		}
		defer natsClient.Close()

		relay := worker.NewOutboxRelay(persistence.NewOutboxRepository(db), natsClient, cfg.Outbox, log)
		relay.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(outboxCmd)
}
