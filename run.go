package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mindscape/config"
	"mindscape/imageproc"
	"mindscape/imageproc/vips"
	"mindscape/logger"
	"mindscape/notify"
	"mindscape/optimizer"
	"mindscape/output"
	"mindscape/watcher"
)

const defaultConfigFile = "mindscape.yaml"

// loadConfig reads the config file, applies flag overrides and sets up
// logging and the printer
func loadConfig(cmd *cobra.Command, flags globalFlags) (*config.Config, *output.Printer, error) {
	mode, err := output.ParseColorMode(flags.color)
	if err != nil {
		return nil, nil, codeError(2, "%s", err)
	}

	path := flags.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, codeError(1, "failed to load config: %s", err)
	}

	if flags.root != "" {
		cfg.Root = flags.root
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, codeError(2, "invalid flags: %s", err)
	}

	logger.InitWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	useColors := output.ResolveColors(mode, cfg.Output.Colors)
	printer := output.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), useColors)

	slog.Debug("loaded config", "path", path, "root", cfg.Root, "backend", cfg.Backend)
	return cfg, printer, nil
}

// newProcessor starts the configured backend. The returned func releases it.
func newProcessor(cfg *config.Config) (imageproc.Processor, func()) {
	if cfg.Backend == "native" {
		return imageproc.NewNative(), func() {}
	}
	vips.Startup()
	return vips.New(), vips.Shutdown
}

func runOptimize(cmd *cobra.Command, flags globalFlags) error {
	cfg, printer, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	proc, release := newProcessor(cfg)
	defer release()

	summary, err := optimize(cfg, proc, printer)
	if err != nil {
		return err
	}

	if !flags.noSnippet {
		printer.Header("next.config.js")
		printer.Print(optimizer.Snippet(cfg))
	}

	sendSummary(cmd.Context(), cfg, summary)
	return nil
}

// optimize runs one batch and prints its summary. A fatal error prints no
// summary.
func optimize(cfg *config.Config, proc imageproc.Processor, printer *output.Printer) (optimizer.Summary, error) {
	opt, err := optimizer.New(cfg, proc, printer)
	if err != nil {
		return optimizer.Summary{}, codeError(1, "%s", err)
	}

	printer.Info("Optimizing images under %s (%s backend)", cfg.Root, cfg.Backend)

	summary, err := opt.Run()
	if err != nil {
		slog.Error("batch failed", "error", err)
		return summary, codeError(1, "%s", err)
	}

	printSummary(printer, summary)
	return summary, nil
}

func printSummary(printer *output.Printer, summary optimizer.Summary) {
	printer.Header("Summary")

	table := output.NewTable(printer.Out(), []string{"Step", "Succeeded", "Failed"})
	table.AddRows(summary.Rows())
	if err := table.Render(); err != nil {
		slog.Warn("failed to render summary table", "error", err)
	}

	for _, r := range summary.Failures {
		printer.Error("%s: %v", r.Path, r.Err)
	}
}

func sendSummary(ctx context.Context, cfg *config.Config, summary optimizer.Summary) {
	if err := notify.NewSender(cfg.Notify).SendSummary(ctx, summary); err != nil {
		slog.Warn("failed to send ntfy notification", "error", err)
	}
}

func runWatch(cmd *cobra.Command, flags globalFlags) error {
	cfg, printer, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	proc, release := newProcessor(cfg)
	defer release()

	if _, err := optimize(cfg, proc, printer); err != nil {
		return err
	}

	opt, err := optimizer.New(cfg, proc, printer)
	if err != nil {
		return codeError(1, "%s", err)
	}

	w, err := watcher.NewWatcher(cfg, opt)
	if err != nil {
		return codeError(1, "%s", err)
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return codeError(1, "failed to start watcher: %s", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printer.Info("Watching for changes. Press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down watcher")
			return w.Stop()
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			reportEvent(printer, event)
		}
	}
}

func reportEvent(printer *output.Printer, event watcher.Event) {
	r := event.Result
	switch {
	case !r.OK():
		printer.Error("%s: %v", event.FilePath, r.Err)
	case event.Type == watcher.EventSVG:
		printer.Success("%s (copied)", event.FilePath)
	case event.Type == watcher.EventFavicon:
		printer.Success("%s (favicons)", event.FilePath)
	default:
		printer.Success("%s (%s, quality %d, %d files)", event.FilePath, r.Tier, r.Quality, len(r.Outputs))
	}
}

func runSnippet(cmd *cobra.Command, flags globalFlags) error {
	cfg, printer, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	printer.Print(optimizer.Snippet(cfg))
	return nil
}

func runQuality(cmd *cobra.Command, flags globalFlags, paths []string) error {
	cfg, printer, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	selector := optimizer.NewSelector(cfg)
	table := output.NewTable(printer.Out(), []string{"File", "Size", "Critical", "Tier", "Quality"})

	var failed int
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			printer.Error("%s: %v", path, err)
			failed++
			continue
		}
		tier := selector.Tier(path, info.Size())
		table.AddRows([][]string{{
			path,
			fmt.Sprint(info.Size()),
			fmt.Sprint(selector.IsCritical(path)),
			tier.String(),
			fmt.Sprint(selector.Quality(tier)),
		}})
	}

	if err := table.Render(); err != nil {
		return codeError(1, "failed to render table: %s", err)
	}
	if failed == len(paths) {
		return codeError(1, "no readable files")
	}
	return nil
}
