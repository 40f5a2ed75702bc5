package main

import (
	"fmt"

	"github.com/ZanzyTHEbar/deposition/depo/db"
	"github.com/spf13/cobra"
)

// migrateCmd applies checkpoint database migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply checkpoint database migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runMigrateStatus,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dbConn, err := db.ConnectFromDSN(cfg.Depo.Database.DSN)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		return err
	}

	fmt.Println("Migrations applied.")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	dbConn, err := db.ConnectFromDSN(cfg.Depo.Database.DSN)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	return db.MigrationStatus(dbConn)
}
