package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/seqgap/internal/config"
	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/core/decoder"
	"firestige.xyz/seqgap/internal/log"
	"firestige.xyz/seqgap/internal/metrics"
	"firestige.xyz/seqgap/internal/pipeline"
	"firestige.xyz/seqgap/internal/reporter"
	"firestige.xyz/seqgap/internal/reporter/builtin"
	"firestige.xyz/seqgap/internal/reporter/console"
	sinkfile "firestige.xyz/seqgap/internal/sink/file"
	sourcefile "firestige.xyz/seqgap/internal/source/file"
)

// ErrGapsFound is returned with --fail-on-gaps when the capture is incomplete.
var ErrGapsFound = errors.New("sequence gaps found")

func runAnalyze(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	logger := log.GetLogger()

	src, err := sourcefile.Open(cfg.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	fields := map[string]interface{}{
		"source":    src.Path(),
		"format":    src.Format(),
		"link_type": src.LinkType().String(),
		"exchange":  cfg.Feed.String(),
	}
	if cfg.Window != nil {
		fields["window"] = cfg.Window.String()
		fields["output"] = cfg.Output.Path
	}
	logger.WithFields(fields).Info("analyzing capture")
	if sourcefile.MapLinkType(src.LinkType()) == core.LinkUnsupported {
		logger.Warnf("link type %s is not decoded, every packet will be dropped", src.LinkType())
	}

	m := metrics.New(cfg.Feed.String(), cfg.Metrics.Listen != "")
	if cfg.Metrics.Listen != "" {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, m)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop(context.WithoutCancel(ctx))
	}

	b := pipeline.NewBuilder(cfg.Feed).
		WithMetrics(m).
		WithWarnLimiter(decoder.NewWarnRateLimiter(decoder.WarnRateLimiterConfig{
			MaxPerSource: cfg.Decoder.MalformedWarn.MaxPerSource,
			Window:       cfg.Decoder.MalformedWarn.Window,
		}))

	if cfg.Window != nil {
		sink, err := sinkfile.Create(cfg.Output.Path, src.LinkType(), cfg.Output.Snaplen)
		if err != nil {
			return err
		}
		defer sink.Close()
		b.WithSelection(*cfg.Window, sink)
	}

	reporters, err := buildReporters(cfg, stdout)
	if err != nil {
		return err
	}
	b.WithReporters(reporters...)

	analyzer := b.Build()
	runErr := analyzer.Run(ctx, src)

	// The report is written even when the run was interrupted.
	stats, finishErr := analyzer.Finish(context.WithoutCancel(ctx))
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			finishErr = errors.Join(finishErr, err)
		}
	}

	if stats.MalformedUDP > 0 {
		logger.WithField("malformed_udp", stats.MalformedUDP).
			WithField("suppressed_warnings", stats.SuppressedWarnings).
			Warn("capture contains malformed UDP datagrams")
	}

	if stats.SkippedLinkType > 0 {
		logger.WithField("skipped", stats.SkippedLinkType).
			Warn("selected packets with a different link type were not written to the output capture")
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return errors.Join(runErr, finishErr)
	}
	if finishErr != nil {
		return finishErr
	}
	if cfg.Report.FailOnGaps && stats.MissingTotal > 0 {
		return fmt.Errorf("%w: %d sequence numbers missing in %d streams", ErrGapsFound, stats.MissingTotal, stats.Streams)
	}
	return nil
}

// buildReporters creates the console reporter on stdout plus every
// configured reporter. On failure the reporters already created are closed.
func buildReporters(cfg *config.Config, stdout io.Writer) ([]reporter.Reporter, error) {
	builtin.Register()

	out := console.New(stdout)
	if err := out.Init(map[string]any{
		"format":    cfg.Report.Format,
		"gaps_only": cfg.Report.GapsOnly,
	}); err != nil {
		return nil, fmt.Errorf("%w: console: %w", core.ErrReporterInitFailed, err)
	}
	reporters := []reporter.Reporter{out}

	for _, rc := range cfg.Reporters {
		r, err := reporter.New(rc.Type, rc.Options)
		if err != nil {
			for _, created := range reporters {
				created.Close(context.Background())
			}
			return nil, err
		}
		reporters = append(reporters, r)
	}
	return reporters, nil
}
