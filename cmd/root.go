// Package cmd defines and implements the CLI commands for the scholar-crawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/scholar-crawler/internal/config"
	"github.com/JakeFAU/scholar-crawler/internal/crawler"
	"github.com/JakeFAU/scholar-crawler/internal/logging"
)

// Exit codes returned by Execute.
const (
	exitOK    = 0
	exitError = 1
	exitEmpty = 2
)

// sessionKeyType is the key for storing the session in the context.
type sessionKeyType string

const sessionKey sessionKeyType = "session"

// session carries what every subcommand needs once configuration is loaded.
type session struct {
	cfg    config.Config
	logger *zap.Logger
}

type rootOptions struct {
	configFile  string
	quiet       bool
	development bool
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "scholar-crawler",
		Short: "Crawl scholarly search listings into CSV, JSON or HTML.",
		Long: `scholar-crawler pages through scholarly search results for articles,
case law or an author's profile and writes the extracted records, sorted by
citation count or year, to a file or stdout.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Loads configuration and builds the logger before the subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("quiet") {
				cfg.Logging.Quiet = opts.quiet
			}
			if cmd.Flags().Changed("dev") {
				cfg.Logging.Development = opts.development
			}
			logger, err := logging.NewWithOptions(logging.Options{
				Development: cfg.Logging.Development,
				Quiet:       cfg.Logging.Quiet,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey, &session{cfg: cfg, logger: logger}))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(sessionKey).(*session); ok && rt != nil {
				_ = rt.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML, JSON or TOML)")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log warnings and errors")
	cmd.PersistentFlags().BoolVar(&opts.development, "dev", false, "human readable development logging")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

func resolveSession(ctx context.Context) (*session, error) {
	rt, ok := ctx.Value(sessionKey).(*session)
	if !ok || rt == nil {
		return nil, errors.New("session not initialized")
	}
	return rt, nil
}

// Execute is the main entry point. It exits with status 2 when the crawl
// produced no records and 1 on any other failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	code := exitCode(err)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code == exitEmpty {
			fmt.Fprintln(os.Stderr, "No results were extracted. The service may be throttling requests; try again later or raise crawler.delay.")
		}
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, crawler.ErrEmptyResult):
		return exitEmpty
	default:
		return exitError
	}
}
