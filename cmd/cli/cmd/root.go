// Package cmd provides the CLI commands for bomcost.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bomcost/core/output"
	"bomcost/internal/config"
	"bomcost/internal/logging"
)

const version = "0.1.0"

var (
	cfgFile      string
	verbose      bool
	outputFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bomcost",
	Short: "Cost products from their bill of materials",
	Long: `bomcost aggregates product costs from their constituent materials.

Materials can be grouped into XOR groups of mutually exclusive alternatives;
only the active alternative of a group contributes to the product's cost.

Examples:
  bomcost cost ./chair.bom.hcl
  bomcost cost --format json ./definitions
  bomcost workspace import ./definitions
  bomcost workspace select 0 2`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, JSON or YAML (default is $HOME/.bomcost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json, markdown)")

	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + "/.bomcost.json"
		}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// render writes a report in the selected or configured format
func render(w io.Writer, report *output.Report) error {
	format := outputFormat
	if format == "" {
		format = config.Get().Output.DefaultFormat
	}
	formatter, err := output.NewRegistry().Get(output.Format(format))
	if err != nil {
		return err
	}
	return formatter.Render(w, report)
}

func reportOptions() output.Options {
	cfg := config.Get().Output
	return output.Options{Precision: cfg.Precision, ShowExcluded: cfg.ShowExcluded}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bomcost version %s\n", version)
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write the default configuration to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Default().Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
