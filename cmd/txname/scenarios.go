package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/andrewh/txname/pkg/naming"
	"github.com/andrewh/txname/pkg/synth"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

func scenariosCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scenarios [scenarios.yaml]",
		Short: "Print the span names and attributes each scenario produces",
		Long: "Print the span names and attributes each scenario produces.\n\n" +
			"Messaging names are shown under both orderings. Names are quoted so\n" +
			"that empty tokens and trailing separators stay visible.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			scenarios, _, err := loadScenarios(path)
			if err != nil {
				return err
			}
			return renderScenarios(cmd.OutOrStdout(), scenarios, format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table, markdown, or csv")

	return cmd
}

func renderScenarios(w io.Writer, scenarios []synth.Scenario, format string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Scenario", "Class", "Kind", "Name (operation-first)", "Name (destination-first)", "Attributes"})

	opFirst := &naming.Resolver{Order: naming.OperationFirst}
	destFirst := &naming.Resolver{Order: naming.DestinationFirst}
	for i, sc := range scenarios {
		a := opFirst.Resolve(sc.Operation)
		b := destFirst.Resolve(sc.Operation)
		t.AppendRow(table.Row{i + 1, sc.Name, sc.Class, a.Kind.String(), fmt.Sprintf("%q", a.Name), fmt.Sprintf("%q", b.Name), formatAttrs(a.Attributes)})
	}

	switch format {
	case "table", "":
		t.SetStyle(table.StyleLight)
		t.Render()
	case "markdown":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown output format %q, valid formats: table, markdown, csv", format)
	}
	return nil
}

func formatAttrs(attrs []attribute.KeyValue) string {
	parts := make([]string, 0, len(attrs))
	for _, kv := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", kv.Key, kv.Value.Emit()))
	}
	return strings.Join(parts, " ")
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenarios.yaml>",
		Short: "Parse and validate a scenario file",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("missing scenario file\n\nUsage: txname validate <scenarios.yaml>")
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, opts, err := loadScenarios(args[0])
			if err != nil {
				return err
			}
			label := "scenarios"
			if len(scenarios) == 1 {
				label = "scenario"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration valid: %d %s, interval %s, span duration %s, %s\n\n"+
				"To generate signals:\n"+
				"  txname run --stdout --scenarios %s\n",
				len(scenarios), label, opts.Interval, opts.Durations, opts.MessagingOrder, args[0])
			return nil
		},
	}
}
