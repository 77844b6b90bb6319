package cmd

import (
	"fmt"
	"slices"

	"github.com/khrees2412/levelup/internal/config"
	"github.com/khrees2412/levelup/internal/store"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.AppConfig
		cmd.Println(titleStyle.Render("Configuration"))
		cmd.Printf("%s %s\n", labelStyle.Render("Config File:"), config.GetConfigPath())
		cmd.Printf("%s %s\n", labelStyle.Render("Store Backend:"), cfg.StoreBackend)

		switch cfg.StoreBackend {
		case store.BackendPostgres:
			// Don't print the DSN, it may carry a password
			if cfg.PostgresDSN != "" {
				cmd.Printf("%s %s\n", labelStyle.Render("Postgres DSN:"), "✓ Configured")
			} else {
				cmd.Printf("%s %s\n", labelStyle.Render("Postgres DSN:"), "✗ Not configured")
			}
		case store.BackendBrowser:
			cmd.Printf("%s %s\n", labelStyle.Render("Browser Origin:"), cfg.BrowserOrigin)
			cmd.Printf("%s %s\n", labelStyle.Render("Key Prefix:"), cfg.BrowserKeyPrefix)
		case store.BackendMemory:
		default:
			cmd.Printf("%s %s\n", labelStyle.Render("Store Path:"), cfg.StorePath)
		}

		cmd.Printf("%s %s\n", labelStyle.Render("Submit Delay:"), cfg.SubmitDelay)
		cmd.Printf("%s %s\n", labelStyle.Render("Refresh Delay:"), cfg.RefreshDelay)
		cmd.Printf("%s %s\n", labelStyle.Render("Date Format:"), cfg.DateFormat)
		cmd.Printf("%s %s\n", labelStyle.Render("Log Level:"), cfg.LogLevel)
		cmd.Printf("%s %d\n", labelStyle.Render("Batch Workers:"), cfg.BatchWorkers)
		cmd.Printf("%s %s\n", labelStyle.Render("Batch Interval:"), cfg.BatchInterval)
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  levelup config set --key store_backend --value postgres
  levelup config set --key postgres_dsn --value "postgres://levelup@localhost/levelup?sslmode=disable"
  levelup config set --key submit_delay --value 500ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" || value == "" {
			return fmt.Errorf("both --key and --value are required")
		}

		validKeys := config.Keys()
		if !slices.Contains(validKeys, key) {
			return fmt.Errorf("invalid key. Must be one of: %v", validKeys)
		}

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("update config: %w", err)
		}

		cmd.Printf("✓ Configuration updated: %s\n", key)

		// Reload config
		if err := config.Initialize(); err != nil {
			cmd.PrintErrf("Warning: Could not reload config: %v\n", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	// Flags for set command
	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
