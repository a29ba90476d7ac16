// Package main wires together the news aggregator binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/aggregator"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/config"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/logging"
	"github.com/haoli94/RSS-News-Feed-Aggregation/internal/metrics"
)

const defaultFeedListURI = "small-feed.xml"

func newRootCmd() *cobra.Command {
	var (
		cfgFile     string
		feedListURI string
		verbose     bool
		quiet       bool
	)

	cmd := &cobra.Command{
		Use:   "newsaggregator",
		Short: "Crawl a feed list, index every article, and answer term queries.",
		Long: `newsaggregator fetches a root document listing RSS feeds, downloads and
tokenizes every article those feeds reference, builds an inverted index over
the tokens, and then answers interactive term queries with ranked article
lists.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level := zapcore.InfoLevel
			if quiet {
				level = zapcore.ErrorLevel
			}
			if verbose {
				level = zapcore.DebugLevel
			}
			logger, err := logging.New(cfg.Logging.Development, level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()
			zap.ReplaceGlobals(logger)

			metrics.Init()

			agg := aggregator.New(cfg, feedListURI, logger)
			defer agg.Close()

			agg.BuildIndex(cmd.Context())
			agg.QueryIndex()
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to config file")
	cmd.Flags().StringVarP(&feedListURI, "url", "u", defaultFeedListURI, "feed list URI")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log crawl progress")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
