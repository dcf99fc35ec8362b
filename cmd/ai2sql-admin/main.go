package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"ai2sql/internal/pkg/config"
	"ai2sql/internal/pkg/database"
	"ai2sql/internal/pkg/logger"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "ai2sql-admin",
	Short:        "AI2SQL operator commands",
	Long:         `Out-of-band administration for AI2SQL: schema migration, accounts and project memberships.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "Path to config file")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(memberCmd)
}

// openDB loads the config and connects to the service database
func openDB() (*gorm.DB, func(), error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(&cfg.Log); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		_ = logger.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = logger.Close()
	}
	return db, closeFn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
