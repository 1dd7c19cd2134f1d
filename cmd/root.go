package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calimport application
var rootCmd = &cobra.Command{
	Use:   "calimport",
	Short: "Registers spreadsheet work items as Google Calendar events",
	Long: `calimport merges work-item spreadsheets (Excel, CSV or Google Sheets) on
their management number and creates one Google Calendar event per item. It can
also delete the events of a date range again.

It can run as:
  - A standalone CLI tool
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calimport version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/calimport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&globals.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
	rootCmd.PersistentFlags().StringVar(&globals.logFormat, "log-format", "", "Log format: text or json (overrides log.format)")

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
