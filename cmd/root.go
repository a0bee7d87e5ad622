// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"firestige.xyz/seqgap/internal/config"
	"firestige.xyz/seqgap/internal/log"
)

const version = "0.1.0"

// app carries what the commands share: the output streams and the
// configuration loaded before any command runs.
type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

// Execute runs the root command. SIGINT and SIGTERM cancel the analysis; the
// report for the packets read so far is still written.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "seqgap",
		Short: "seqgap - market data sequence gap analyzer",
		Long: `seqgap reads a pcap or pcapng capture of exchange market data multicast,
decodes Ethernet or Linux cooked frames down to the UDP payload, extracts the
exchange sequence numbers and reports gaps, duplicates and out-of-order delivery
per multicast stream.

Packets whose sequence range overlaps [begin, end) can be copied unmodified to
an output capture.

Examples:
  seqgap -s feed.pcap --cme
  seqgap -s feed.pcapng --cboe --gaps-only --report-format json
  seqgap -s feed.pcap --ice -o window.pcap -b 1000 -c 500`,
		Version:           version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), a.cfg, a.stdout)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	addAnalysisFlags(root.PersistentFlags())
	root.AddCommand(newValidateCmd(a))

	return root
}

func addAnalysisFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file path (YAML)")
	fs.StringP("source", "s", "", "input capture file (pcap or pcapng)")

	fs.Bool("cme", false, "CME MDP3 packet layout")
	fs.Bool("cboe", false, "CBOE PITCH sequenced unit layout")
	fs.Bool("ice", false, "ICE iMpact block layout")

	fs.StringP("output", "o", "", "output capture file for the selected sequence window")
	fs.Uint64P("begin", "b", 0, "first sequence number of the selection window")
	fs.Uint64P("end", "e", 0, "end of the selection window (exclusive)")
	fs.Uint64P("count", "c", 0, "number of sequence numbers in the selection window")

	fs.String("report-format", "text", "report format: text, json or yaml")
	fs.Bool("gaps-only", false, "report gap events only instead of every packet")
	fs.Bool("fail-on-gaps", false, "exit with an error when sequence numbers are missing")

	fs.String("log-level", "info", "log level: trace, debug, info, warn or error")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file when done")
	fs.String("metrics-listen", "", "serve Prometheus metrics on this address while running")
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	if err := log.InitWithWriter(cfg.Log, a.stderr); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
