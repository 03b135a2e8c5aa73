package cmd

import (
	"context"

	"github.com/AzielCF/az-adlib/core/config"
	"github.com/AzielCF/az-adlib/core/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the cache schema and exit",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) {
	logrus.WithField("driver", config.Global.Database.Driver).Info("[MIGRATION] Migrating cache schema...")
	initStorage(context.Background())
	database.Close(db)
	logrus.Info("[MIGRATION] Done")
}
