package cmd

import (
	"context"

	"github.com/AzielCF/az-adlib/core/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete cache entries older than the retention window and exit",
	Run:   runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(_ *cobra.Command, _ []string) {
	ctx := context.Background()
	initStorage(ctx)
	defer database.Close(db)

	deleted, err := cacheJanitor.Sweep(ctx)
	if err != nil {
		logrus.Fatalf("[JANITOR] Sweep failed: %v", err)
	}
	logrus.WithField("deleted", deleted).Info("[JANITOR] Done")
}
