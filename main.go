package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mindscape/logger"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	root       string
	backend    string
	color      string
	verbose    bool
	noSnippet  bool
}

func main() {
	logger.Init("info", "text")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "mindscape",
		Short: "Optimize the website's images",
		Long: "mindscape generates responsive WebP/AVIF variants, blurred placeholders and favicon " +
			"renditions for every image under the site's public directories.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to config file (default: mindscape.yaml if present)")
	pf.StringVar(&flags.root, "root", "", "Project root the source directories are relative to")
	pf.StringVar(&flags.backend, "backend", "", "Image backend: vips or native")
	pf.StringVar(&flags.color, "color", "auto", "Color output: auto, always, or never")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Process every image once and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, flags)
		},
	}
	for _, c := range []*cobra.Command{root, optimizeCmd} {
		c.Flags().BoolVar(&flags.noSnippet, "no-snippet", false, "Do not print the next.config.js snippet")
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Optimize once, then re-process images as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, flags)
		},
	}

	snippetCmd := &cobra.Command{
		Use:   "snippet",
		Short: "Print the next.config.js images block for the configured widths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnippet(cmd, flags)
		},
	}

	qualityCmd := &cobra.Command{
		Use:   "quality <file>...",
		Short: "Show the quality tier selected for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuality(cmd, flags, args)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mindscape %s\n", version)
		},
	}

	root.AddCommand(optimizeCmd, watchCmd, snippetCmd, qualityCmd, versionCmd)
	return root
}
