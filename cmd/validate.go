package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/reporter"
	"firestige.xyz/seqgap/internal/reporter/builtin"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without reading the capture",
		Long: `Validate the configuration (flags, SEQGAP_* environment and --config file)
without opening the capture or connecting to any reporter backend.

Examples:
  seqgap validate -s feed.pcap --cme -o out.pcap -b 100 -e 200
  seqgap validate --config seqgap.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate()
		},
	}
}

func (a *app) runValidate() error {
	cfg := a.cfg

	builtin.Register()
	known := reporter.Names()
	types := []string{"console"}
	for _, rc := range cfg.Reporters {
		if !slices.Contains(known, rc.Type) {
			return fmt.Errorf("%w: %s", core.ErrReporterNotFound, rc.Type)
		}
		types = append(types, rc.Type)
	}

	window := "none"
	if cfg.Window != nil {
		window = fmt.Sprintf("%s -> %s", cfg.Window, cfg.Output.Path)
	}

	fmt.Fprintf(a.stdout, "VALID: source=%s exchange=%s output=%s report=%s reporters=%s\n",
		cfg.Source, cfg.Feed, window, cfg.Report.Format, strings.Join(types, ","))
	return nil
}
