package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webdiag/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View diagnostics logs",
	Long: `View and filter the records a diagnostics registration wrote, including
its rolled files.

By default, shows the last 50 records of the default registration. Use flags
to pick a prefixed registration, filter and format the output.

Examples:
  # Show the last 50 records of the default registration
  webdiag logs

  # Show everything the "api" registration wrote
  webdiag logs --prefix api -n 0

  # Filter by minimum level and category
  webdiag logs --level warning --category app.http

  # Show records from the last hour
  webdiag logs --since 1h

  # Search messages and export as CSV
  webdiag logs --grep timeout --format csv`,
	RunE: runLogs,
}

var (
	logsPrefix   string
	logsTail     int
	logsLevel    string
	logsCategory string
	logsSince    string
	logsGrep     string
	logsFormat   string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsPrefix, "prefix", "p", "", "Registration prefix (default: the default registration)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of records to show (0 for all)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Filter by minimum level (trace/debug/information/warning/error/critical)")
	logsCmd.Flags().StringVar(&logsCategory, "category", "", "Filter by category prefix")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show records since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsGrep, "grep", "", "Filter records whose message contains this text")
	logsCmd.Flags().StringVar(&logsFormat, "format", "pretty", "Output format (pretty/"+strings.Join(logging.ExportFormats(), "/")+")")
}

func runLogs(cmd *cobra.Command, args []string) error {
	if logsFormat != "pretty" && !slices.Contains(logging.ExportFormats(), logsFormat) {
		return fmt.Errorf("unsupported format %q", logsFormat)
	}

	f := logging.LogFilter{
		Level:           logsLevel,
		Category:        logsCategory,
		MessageContains: logsGrep,
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", logsSince, err)
		}
		f.StartTime = time.Now().Add(-d)
	}

	c, err := compose()
	if err != nil {
		return err
	}
	defer c.close()

	if c.host.HomeDirectory() == "" {
		return fmt.Errorf("host home directory is not set; use --home or host.home")
	}
	// Configured prefixes decide the casing of their file names.
	if err := c.builder.AttachConfigured(); err != nil {
		return err
	}
	path := c.builder.LogPath(keyFor(logsPrefix))

	entries, err := logging.ReadEntries(fs, path)
	if err != nil {
		return err
	}
	entries = logging.FilterEntries(entries, f)
	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	out := cmd.OutOrStdout()
	if logsFormat != "pretty" {
		return logging.ExportEntries(out, entries, logsFormat)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No matching records in "+path))
		return nil
	}
	for _, e := range entries {
		if err := writePretty(out, e); err != nil {
			return err
		}
	}
	return nil
}

// writePretty writes one entry as a styled terminal line.
func writePretty(w io.Writer, e logging.LogEntry) error {
	var sb strings.Builder

	sb.WriteString(mutedStyle.Render("[" + e.Timestamp.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	sb.WriteString(levelStyle(e.Level).Render("[" + strings.ToUpper(e.Level) + "]"))
	if e.Category != "" {
		sb.WriteString(" ")
		sb.WriteString(attrStyle.Render(e.Category))
	}
	sb.WriteString(" ")
	sb.WriteString(e.Message)

	for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
		v, err := json.Marshal(e.Attrs[k])
		if err != nil {
			v = []byte(fmt.Sprint(e.Attrs[k]))
		}
		sb.WriteString(" ")
		sb.WriteString(attrStyle.Render(k + "=" + string(v)))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
