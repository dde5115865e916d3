package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webdiag/internal/event"
	"github.com/Iron-Ham/webdiag/internal/filter"
	"github.com/Iron-Ham/webdiag/internal/logging"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show what diagnostics registration would attach",
	Long: `Compose diagnostics the way an application would and report the result.

Every configured registration, plus any --prefix given, is attached twice.
The second pass must not add anything; inspect reports the counts after each
pass so duplicates are easy to spot.

Examples:
  # Inspect the configured registrations
  webdiag inspect

  # Add two prefixed registrations on top of the configured ones
  webdiag inspect --prefix api --prefix worker

  # Pretend to run inside the hosting environment
  webdiag inspect --host-mode always --home /tmp/site`,
	RunE: runInspect,
}

var inspectPrefixes []string

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringArrayVarP(&inspectPrefixes, "prefix", "p", nil, "Additional registration prefix (repeatable)")
}

type snapshot struct {
	services, configurators, sources, registrations int
}

func (s snapshot) String() string {
	return fmt.Sprintf("services=%d configurators=%d sources=%d registrations=%d",
		s.services, s.configurators, s.sources, s.registrations)
}

func runInspect(cmd *cobra.Command, args []string) error {
	c, err := compose()
	if err != nil {
		return err
	}
	defer c.close()

	take := func() snapshot {
		b := c.builder
		return snapshot{
			services:      b.Services().Len(),
			configurators: b.Filters().ConfiguratorCount(),
			sources:       b.Filters().SourceCount(),
			registrations: b.Ledger().Len(),
		}
	}

	baseline := take()
	if err := c.attach(inspectPrefixes); err != nil {
		return err
	}
	first := take()
	if err := c.attach(inspectPrefixes); err != nil {
		return err
	}
	second := take()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render("Host"))
	running := warnStyle.Render("no (registration is a no-op)")
	if c.host.IsRunningInTargetEnvironment() {
		running = okStyle.Render("yes")
	}
	fmt.Fprintln(out, field("running", running))
	fmt.Fprintln(out, field("home", valueOr(c.host.HomeDirectory(), "(unset)")))
	fmt.Fprintln(out)

	fmt.Fprintln(out, headerStyle.Render("Attach attempts"))
	for _, a := range c.attempts {
		line := field(a.Key, outcomeStyle(a.Outcome).Render(string(a.Outcome)))
		if a.Err != nil {
			line += " " + errorStyle.Render(a.Err.Error())
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, headerStyle.Render("Counts"))
	fmt.Fprintln(out, field("baseline", baseline.String()))
	fmt.Fprintln(out, field("first pass", first.String()))
	secondLine := second.String()
	if second != first {
		secondLine += " " + errorStyle.Render("(duplicates added)")
	} else {
		secondLine += " " + okStyle.Render("(unchanged)")
	}
	fmt.Fprintln(out, field("second pass", secondLine))
	fmt.Fprintln(out)

	fmt.Fprintln(out, headerStyle.Render("Providers"))
	if !c.host.IsRunningInTargetEnvironment() {
		fmt.Fprintln(out, mutedStyle.Render("none"))
		return nil
	}
	comp, err := c.builder.Build()
	if err != nil {
		return err
	}
	defer func() { _ = comp.Close() }()

	opts := comp.Filters.Get()
	for _, p := range comp.Factory.Providers() {
		path := ""
		if fp, ok := p.(*logging.FileProvider); ok {
			path = fp.Path()
		}
		fmt.Fprintln(out, field(p.Name(), path))
		fmt.Fprintln(out, field("", mutedStyle.Render("default level "+filter.LevelName(opts.Level(p.Name(), "")))))
	}
	return nil
}

func outcomeStyle(o event.Outcome) lipgloss.Style {
	switch o {
	case event.OutcomeAttached:
		return okStyle
	case event.OutcomeFailed:
		return errorStyle
	default:
		return mutedStyle
	}
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
