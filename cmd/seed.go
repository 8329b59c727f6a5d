/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/daffahilmyf/creature-catalog/internal/bootstrap"
	"github.com/daffahilmyf/creature-catalog/internal/config"
	"github.com/spf13/cobra"
)

var seedCount int
var seedStartID int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import creatures from the upstream API by numeric id",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		if err := bootstrap.Seed(cmd.Context(), cfg, seedCount, seedStartID); err != nil {
			fmt.Fprintln(os.Stderr, "seed error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 10, "number of creatures to import")
	seedCmd.Flags().IntVar(&seedStartID, "start", 1, "first upstream id to import")
	rootCmd.AddCommand(seedCmd)
}
