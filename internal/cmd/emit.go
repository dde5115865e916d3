package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/webdiag/internal/errors"
	"github.com/Iron-Ham/webdiag/internal/filter"
)

var emitCmd = &cobra.Command{
	Use:   "emit <message>",
	Short: "Write a record through the composed diagnostics providers",
	Long: `Compose diagnostics from configuration and log one record through them.

The record reaches every provider whose filter rules admit its level for the
given category. Use this to check configuration before deploying it.

Examples:
  webdiag emit --category app.http --level warning "slow request"
  webdiag emit -C app.db -l error --attr table=users "query failed"`,
	Args: cobra.ExactArgs(1),
	RunE: runEmit,
}

var (
	emitCategory string
	emitLevel    string
	emitAttrs    []string
	emitPrefixes []string
)

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().StringVarP(&emitCategory, "category", "C", "webdiag", "Record category")
	emitCmd.Flags().StringVarP(&emitLevel, "level", "l", "information", "Record level ("+strings.Join(filter.ValidLevels(), "/")+")")
	emitCmd.Flags().StringArrayVar(&emitAttrs, "attr", nil, "Record attribute as key=value (repeatable)")
	emitCmd.Flags().StringArrayVarP(&emitPrefixes, "prefix", "p", nil, "Additional registration prefix (repeatable)")
}

func runEmit(cmd *cobra.Command, args []string) error {
	level, err := filter.ParseLevel(emitLevel)
	if err != nil {
		return errors.NewValidationError("unknown level").
			WithField("level").WithValue(emitLevel).WithCause(err)
	}
	if level == filter.LevelNone {
		return errors.NewValidationError("cannot emit a record at level none").
			WithField("level").WithValue(emitLevel)
	}

	var attrs []any
	for _, a := range emitAttrs {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return errors.NewValidationError("expected key=value").
				WithField("attr").WithValue(a)
		}
		attrs = append(attrs, k, v)
	}

	c, err := compose()
	if err != nil {
		return err
	}
	defer c.close()

	if err := c.attach(emitPrefixes); err != nil {
		return err
	}
	comp, err := c.builder.Build()
	if err != nil {
		return err
	}

	opts := comp.Filters.Get()
	var admitted []string
	for _, p := range comp.Factory.Providers() {
		if opts.Enabled(p.Name(), emitCategory, level) {
			admitted = append(admitted, p.Name())
		}
	}
	comp.Factory.Logger(emitCategory).Log(level, args[0], attrs...)

	if err := comp.Close(); err != nil {
		return fmt.Errorf("failed to flush providers: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(admitted) == 0 {
		fmt.Fprintln(out, warnStyle.Render("No provider admitted the record."))
		return nil
	}
	fmt.Fprintf(out, "Wrote %s record to %s\n",
		levelStyle(filter.LevelName(level)).Render(filter.LevelName(level)),
		strings.Join(admitted, ", "))
	return nil
}
