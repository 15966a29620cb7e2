package cmd

import (
	"fmt"
	"os"

	internalApp "github.com/haierkeys/simple-note-service/internal/app"
	"github.com/haierkeys/simple-note-service/internal/dao"
	"github.com/haierkeys/simple-note-service/internal/upgrade"
	"github.com/haierkeys/simple-note-service/pkg/logger"

	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade legacy database schema and data to the latest version",
	Long: `Upgrade legacy database schema and data to the latest version.

This command creates missing tables and applies all pending migrations.
It is safe to run this command multiple times - already applied migrations will be skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}

		appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Loading config from: %s\n", configRealpath)

		lg, err := logger.NewLogger(logger.Config{
			Level:      appConfig.Log.Level,
			File:       appConfig.Log.File,
			Production: appConfig.Log.Production,
		})
		if err != nil {
			fmt.Printf("Failed to init logger: %v\n", err)
			os.Exit(1)
		}
		defer lg.Sync()

		db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
		if err != nil {
			fmt.Printf("Failed to init database: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Starting database upgrade...")

		// 建表后执行升级脚本
		if err := dao.New(db, cmd.Context(), dao.WithLogger(lg)).AutoMigrate(); err != nil {
			fmt.Printf("Auto migrate failed: %v\n", err)
			os.Exit(1)
		}
		if err := upgrade.Execute(db, lg, internalApp.Version, upgrade.VersionFileFor(configRealpath)); err != nil {
			fmt.Printf("Upgrade failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Database upgrade completed successfully!")
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringP("config", "c", "", "config file path")
}
