// Package main is the entry point for the robot-agent CLI.
//
// Usage:
//
//	robot-agent                      # same as "run"
//	robot-agent run -c config.yaml   # poll the API and store records until interrupted
//	robot-agent migrate              # create the robot_data table and exit
//	robot-agent once                 # ensure the table, poll once and exit
//	robot-agent version              # show version info
package main

import (
	"fmt"
	"os"

	"github.com/iwtcode/robotDataAgent"
	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "robot-agent",
	Short: "Poll robot telemetry and store it in PostgreSQL",
	Long: `robot-agent polls an HTTP endpoint for robot telemetry records and
inserts every record into the robot_data table of a PostgreSQL database.

Configuration is read from an optional YAML file (--config or CONFIG_FILE)
and overridden by environment variables. A .env file in the working
directory is loaded first.`,
	SilenceUsage: true,
	RunE:         runAgent,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("robot-agent %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (*robotDataAgent.Config, error) {
	cfg, err := robotDataAgent.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
