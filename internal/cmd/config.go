package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create webdiag configuration",
	Long: `View or create webdiag configuration.

Without arguments, displays the current configuration.
Use subcommands to create a config file or find where it lives.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a default config file",
	Long: `Create a default config file with all available options.

The file is written to ~/.config/webdiag/config.yaml unless a path is given.
An existing file is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(settings)
	if err != nil {
		return errors.NewValidationError("invalid configuration").WithCause(err)
	}

	out := cmd.OutOrStdout()

	// Show where config is being read from
	if settings.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", settings.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := config.MarshalYAML(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile()
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.WriteDefault(fs, path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", path)
	fmt.Fprintln(out, "Edit this file to customize diagnostics registrations.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if settings.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", settings.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: WEBDIAG_* (e.g., WEBDIAG_DIAGNOSTICS_LEVEL)")
	return nil
}
