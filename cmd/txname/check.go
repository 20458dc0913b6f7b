package main

import (
	"fmt"
	"os"

	"github.com/andrewh/txname/pkg/naming"
	"github.com/andrewh/txname/pkg/semconv"
	"github.com/andrewh/txname/pkg/synth"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

func checkCmd() *cobra.Command {
	var semconvDir string

	cmd := &cobra.Command{
		Use:   "check [scenarios.yaml]",
		Short: "Check scenario attributes against the semantic conventions",
		Long: "Check scenario attributes against the semantic conventions.\n\n" +
			"Every span's attributes are checked against the bundled registry, and web\n" +
			"requests are also checked as http.server.request.duration observations.\n" +
			"Warnings do not fail the check; errors do.",
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
			reg, err := loadRegistry(semconvDir)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			anyFailed := false
			resolver := &naming.Resolver{}
			for _, sc := range scenarios {
				span := resolver.Resolve(sc.Operation)
				findings := reg.CheckAttributes(span.Attributes)
				if span.Kind == trace.SpanKindServer {
					findings = reg.CheckMetric(synth.RequestDurationMetric, span.Attributes)
				}

				status := "PASS"
				switch {
				case semconv.HasErrors(findings):
					status = "FAIL"
					anyFailed = true
				case len(findings) > 0:
					status = "WARN"
				}
				_, _ = fmt.Fprintf(w, "%s  %s (%q)\n", status, sc.Name, span.Name)
				for _, f := range findings {
					_, _ = fmt.Fprintf(w, "      %s\n", f)
				}
			}

			if anyFailed {
				return fmt.Errorf("one or more scenarios use non-conforming attributes")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&semconvDir, "semconv", "", "directory of additional semantic convention YAML files")

	return cmd
}

func loadRegistry(semconvDir string) (*semconv.Registry, error) {
	reg, err := semconv.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("loading semantic conventions: %w", err)
	}
	if semconvDir == "" {
		return reg, nil
	}
	info, err := os.Stat(semconvDir)
	if err != nil {
		return nil, fmt.Errorf("--semconv directory %q does not exist", semconvDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("--semconv path %q is not a directory", semconvDir)
	}
	userReg, err := semconv.Load(os.DirFS(semconvDir))
	if err != nil {
		return nil, fmt.Errorf("loading semantic conventions from %s: %w", semconvDir, err)
	}
	return reg.Merge(userReg), nil
}
