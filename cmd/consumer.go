/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/bootstrap"
	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/daffahilmyf/creature-catalog/internal/infra/messaging"
	"github.com/daffahilmyf/creature-catalog/internal/infra/persistence"
	"github.com/daffahilmyf/creature-catalog/internal/worker"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var consumerCmd = &cobra.Command{
	Use:   "consumer",
	Short: "Record creature events from JetStream in the audit log",
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

		client, err := messaging.NewNATS(ctx, cfg.NATS)
		if err != nil {
			fmt.Fprintln(os.Stderr, "nats error:", err)
			os.Exit(1)
		}
		if client == nil {
			fmt.Fprintln(os.Stderr, "nats error: nats url is required")
			os.Exit(1)
		}
		defer client.Close()

		db, err := bootstrap.OpenDB(ctx, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "db error:", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := client.EnsureConsumer(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "consumer config error:", err)
			os.Exit(1)
		}
		sub, err := client.Subscribe()
		if err != nil {
			fmt.Fprintln(os.Stderr, "subscribe error:", err)
			os.Exit(1)
		}

		audit := worker.NewAuditConsumer(persistence.NewAuditLogRepository(db), client, cfg.NATS, log)
		log.Infof("consumer: listening on %s (durable=%s)", cfg.NATS.EventSubjects(), cfg.NATS.ConsumerDurable)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			fetchCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			msgs, err := sub.Fetch(50, nats.Context(fetchCtx))
			cancel()
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					continue
				}
				log.WithError(err).Warn("consumer: fetch failed")
				continue
			}
			for _, msg := range msgs {
				if err := worker.Settle(msg, audit.Handle(ctx, msg)); err != nil {
					log.WithError(err).Warn("consumer: settle failed")
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(consumerCmd)
}
