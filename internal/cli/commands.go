package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"phishguard/internal/domain/services"
)

type serviceLoader func() (*services.AnalysisService, error)

func newAnalyzeCommand(opts *options, load serviceLoader) *cobra.Command {
	var sample string

	cmd := &cobra.Command{
		Use:   "analyze [content...]",
		Short: "Analyze a URL or message",
		Example: `  phishguard analyze https://example.com/login
  phishguard analyze "Your account will be suspended, verify now"
  phishguard analyze --sample phishing-url`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if sample != "" {
				s, ok := services.SampleByName(sample)
				if !ok {
					return fmt.Errorf("unknown sample %q", sample)
				}
				content = s.Content
			}

			svc, err := load()
			if err != nil {
				return err
			}

			report, err := svc.Analyze(cmd.Context(), content)
			if errors.Is(err, services.ErrInputTooShort) {
				return errors.New(services.InputTooShortMessage)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sample, "sample", "s", "", "analyze a built-in sample by name")
	return cmd
}

func newFeaturesCommand(opts *options, load serviceLoader) *cobra.Command {
	var enrich bool

	cmd := &cobra.Command{
		Use:   "features <url>",
		Short: "Print the feature vector extracted from a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := load()
			if err != nil {
				return err
			}

			resp, err := svc.ExtractFeatures(cmd.Context(), args[0], enrich)
			if errors.Is(err, services.ErrInputTooShort) {
				return errors.New(services.InputTooShortMessage)
			}
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printFeatures(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&enrich, "enrich", false, "fill domain age and expiry from WHOIS")
	return cmd
}

func newDetectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <content...>",
		Short: "Report whether content is handled as a URL or a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contentType := services.DetectContentType(strings.Join(args, " "))
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"content_type": string(contentType)})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contentType)
			return err
		},
	}
}

func newSamplesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "samples",
		Short: "List the built-in sample inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			samples := services.Samples()
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), samples)
			}
			w := cmd.OutOrStdout()
			for _, s := range samples {
				_, _ = color.New(color.FgCyan).Fprintf(w, "%-20s", s.Name)
				fmt.Fprintf(w, " [%s] %s\n", s.ContentType, s.Content)
			}
			return nil
		},
	}
}
