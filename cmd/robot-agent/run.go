package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwtcode/robotDataAgent/internal/app"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/spf13/cobra"
)

const (
	startTimeout    = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the polling agent",
	Long: `Start the polling agent.

The agent will:
  - Create the robot_data table if it does not exist
  - Fetch records from the configured API on every poll interval
  - Insert each record as one row
  - Optionally publish stored rows to Kafka, serve metrics and run the Telegram bot

The agent runs until interrupted (Ctrl+C) or receives SIGTERM.`,
	RunE: runAgent,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the robot_data table and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), startTimeout)
		defer cancel()

		if err := app.Migrate(ctx, cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("robot_data table is ready")
		return nil
	},
}

var errFetchFailed = errors.New("fetch failed")

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single fetch-and-store cycle and exit",
	Long: `Ensure the robot_data table, fetch the API once and insert the records.
Exits with status 1 when the fetch failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), startTimeout+cfg.HTTPTimeout)
		defer cancel()

		report, err := app.RunOnce(ctx, cfg)
		if err != nil {
			return err
		}

		fmt.Printf("fetch: %s, received: %d, inserted: %d, failed: %d\n",
			report.FetchStatus, report.Received, report.Inserted, report.Failed)
		if report.FetchStatus == models.FetchFailed {
			return fmt.Errorf("%w: %v", errFetchFailed, report.FetchErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, migrateCmd, onceCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	agent := app.New(cfg)

	startCtx, cancel := context.WithTimeout(cmd.Context(), startTimeout)
	defer cancel()
	if err := agent.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	// wait for SIGINT/SIGTERM
	<-agent.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	return agent.Stop(stopCtx)
}
