// Package cli implements the phishguard command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"phishguard/internal/config"
	"phishguard/internal/domain/services"
	"phishguard/internal/domain/services/ai"
	"phishguard/internal/infrastructure/whois"
	"phishguard/pkg/logger"
)

// ServiceFactory builds the analysis service for a command run
type ServiceFactory func(cfg *config.Config, log *logger.Logger) (*services.AnalysisService, error)

type options struct {
	configPath string
	jsonOutput bool
	verbose    bool
}

// NewRootCommand creates the phishguard command tree. A nil factory uses
// DefaultServiceFactory.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	if factory == nil {
		factory = DefaultServiceFactory
	}
	opts := &options{}

	root := &cobra.Command{
		Use:           "phishguard",
		Short:         "Classify URLs and messages as legitimate, suspicious or phishing",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner(cmd.OutOrStdout())
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print machine readable JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log analysis details to stderr")

	serviceFor := func() (*services.AnalysisService, error) {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		return factory(cfg, logger.NewCLI(opts.verbose))
	}

	root.AddCommand(
		newAnalyzeCommand(opts, serviceFor),
		newFeaturesCommand(opts, serviceFor),
		newDetectCommand(opts),
		newSamplesCommand(opts),
	)

	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(nil).ExecuteContext(ctx); err != nil {
		stop()
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// DefaultServiceFactory builds a service without cache, history or events
func DefaultServiceFactory(cfg *config.Config, log *logger.Logger) (*services.AnalysisService, error) {
	client := ai.NewInferenceClient(ai.InferenceConfig{
		Endpoint:        cfg.Models.Endpoint,
		APIToken:        cfg.Models.APIToken,
		ClassifierModel: cfg.Models.ClassifierModel,
		SentimentModel:  cfg.Models.SentimentModel,
		Timeout:         cfg.Models.Timeout,
		WaitForModel:    cfg.Models.WaitForModel,
	}, log)

	analyzer := services.NewAnalyzer(
		services.NewURLAnalyzer(services.NewFeatureExtractor(log), log),
		services.NewMessageAnalyzer(ai.NewLazyZeroShot(client.LoadZeroShot), ai.NewLazySentiment(client.LoadSentiment), log),
		log,
	)

	var opts []services.AnalysisServiceOption
	if cfg.Analysis.Whois.Enabled {
		opts = append(opts, services.WithDomainEnricher(whois.NewEnricher(cfg.Analysis.Whois.Timeout, log)))
	}
	return services.NewAnalysisService(analyzer, services.AnalysisServiceConfig{
		MaxInputLength: cfg.Analysis.MaxInputLength,
	}, log, opts...), nil
}

func printBanner(w io.Writer) {
	fig := figure.NewFigure("PhishGuard", "doom", true)
	_, _ = color.New(color.FgCyan).Fprintln(w, fig.String())
	_, _ = color.New(color.FgGreen).Fprintln(w, "    URL and message phishing analyzer")
	_, _ = fmt.Fprintln(w)
}
