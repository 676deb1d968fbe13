// Package cmd provides the mnftlsim command-line interface: three
// equivalent benchmark drivers (spec.md §6.6) that construct a full
// device/blockmgr/mnftl stack and feed it a fixed-arrival-gap event
// stream, grounded on the root/subcommand layout of the teacher's
// akita/cmd package.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mnftlsim",
	Short: "mnftlsim drives the MNFTL page-mapping FTL core with synthetic workloads.",
	Long: `mnftlsim builds an in-memory NAND device, block manager, and MNFTL engine ` +
		`and replays one of three benchmark workloads against it, printing the ` +
		`resulting operation and garbage-collection statistics.`,
}

var (
	envFile     string
	traceDB     string
	ftlFlag     string
	monitorAddr string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "",
		"optional .env file to load configuration overrides from")
	rootCmd.PersistentFlags().StringVar(&traceDB, "trace-db", "",
		"optional SQLite path to record a per-event trace to; overrides MNFTL_TRACE_DB")
	rootCmd.PersistentFlags().StringVar(&ftlFlag, "ftl", "mnftl",
		"FTL variant to drive: mnftl or ftlpage")
	rootCmd.PersistentFlags().StringVar(&monitorAddr, "monitor-addr", "",
		"optional HTTP listen address for the status/profile monitor; overrides MNFTL_MONITOR_ADDR")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
