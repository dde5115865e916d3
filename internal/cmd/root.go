package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/webdiag/internal/config"
	"github.com/Iron-Ham/webdiag/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "webdiag",
	Short: "Attach and inspect web app diagnostics logging",
	Long: `webdiag composes diagnostics file providers from configuration, one per
registration key, and reads back what they wrote.

The default registration writes <home>/LogFiles/Application/diagnostics.txt;
each configured prefix writes <prefix>-diagnostics.txt next to it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile  string
	hostMode string
	hostHome string

	// settings holds the configuration for the current invocation.
	settings = config.NewViper()
)

// Execute runs the root command and reports any error on stderr
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitInvalid = 2
)

// ExitCode maps err to the process exit status. Errors of warning severity
// or below are invalid input; everything else is a failure.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.GetSeverity(err) <= errors.SeverityWarning {
		return exitInvalid
	}
	return exitFailure
}

// reportError prints err. Errors that are not meant for users get a pointer
// to the debug log instead of being presented as the whole story.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error:"), err)
	if !errors.IsUserFacing(err) {
		fmt.Fprintln(w, mutedStyle.Render("This is unexpected. Set logging.enabled to write a debug log."))
	}
	if errors.IsRetryable(err) {
		fmt.Fprintln(w, mutedStyle.Render("The failure may be transient; running the command again may succeed."))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/webdiag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&hostMode, "host-mode", "", "override host detection (auto, always, never)")
	rootCmd.PersistentFlags().StringVar(&hostHome, "home", "", "override the host home directory")
}

func initConfig() {
	settings = newSettings(cfgFile)
	if hostMode != "" {
		settings.Set(config.Path("host", "mode"), hostMode)
	}
	if hostHome != "" {
		settings.Set(config.Path("host", "home"), hostHome)
	}
}

// newSettings builds the viper instance for a config file, falling back to
// the search paths when file is empty.
func newSettings(file string) *viper.Viper {
	v := config.NewViper()

	// Set defaults first so they're available even without a config file
	config.SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WEBDIAG")
	// Nested keys become underscores in env vars,
	// e.g. WEBDIAG_DIAGNOSTICS_LEVEL for diagnostics:level
	v.SetEnvKeyReplacer(strings.NewReplacer(config.KeyDelimiter, "_", ".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists (ignore error if not found)
	_ = v.ReadInConfig()
	return v
}
