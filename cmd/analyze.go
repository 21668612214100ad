package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/satriahrh/notetaker/domain/entities"
	"github.com/satriahrh/notetaker/internal/report"
	"github.com/satriahrh/notetaker/internal/transcript"
	"github.com/satriahrh/notetaker/usecase"
)

var errEmptyTranscript = errors.New("transcript is empty")

type outputOptions struct {
	format string
	output string
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "text", "Output format (json, text, yaml, markdown)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write the report to this file instead of stdout")
}

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	var out outputOptions
	var noSOAP bool

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Produce the full report for a transcript",
		Long: `Extract entities, summarize, analyze patient sentiment and draft a SOAP note.
A section whose generation fails is reported as an error; the rest of the report
is still produced. Use "-" to read the transcript from stdin.

Examples:
  # Human-readable report
  notetaker analyze visit.txt

  # JSON without the SOAP note, written to a file
  notetaker analyze visit.txt -f json --no-soap -o report.json

  # Offline run against canned replies
  notetaker analyze visit.txt --provider mock`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(out.format)
			if err != nil {
				return err
			}
			text, err := readTranscript(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := g.load(true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline, err := newPipeline(ctx, cfg, logger)
			if err != nil {
				return err
			}

			includeSOAP := cfg.Pipeline.IncludeSOAP && !noSOAP
			result := withSpinner(" Analyzing transcript...", func() *entities.AnalysisReport {
				return pipeline.ProcessTranscript(ctx, text, includeSOAP)
			})
			reportFailures(result.Entities.Err, result.Summary.Err, result.Sentiment.Err, result.SOAP.Err)

			rendered, err := report.Export(result, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out.output, rendered)
		},
	}

	out.register(cmd)
	cmd.Flags().BoolVar(&noSOAP, "no-soap", false, "Skip SOAP note generation")
	return cmd
}

func newQuickCmd(g *globalOptions) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "quick FILE",
		Short: "Extract entities and sentiment only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(out.format)
			if err != nil {
				return err
			}
			text, err := readTranscript(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := g.load(true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline, err := newPipeline(ctx, cfg, logger)
			if err != nil {
				return err
			}

			result := withSpinner(" Extracting entities and sentiment...", func() *entities.QuickReport {
				return pipeline.ProcessQuickSummary(ctx, text)
			})
			reportFailures(result.Entities.Err, result.Sentiment.Err)

			rendered, err := report.ExportQuick(result, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out.output, rendered)
		},
	}

	out.register(cmd)
	return cmd
}

func newBriefCmd(g *globalOptions) *cobra.Command {
	var maxLength int

	cmd := &cobra.Command{
		Use:   "brief FILE",
		Short: "Print a short free-text summary of the encounter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := g.load(true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline, err := newPipeline(ctx, cfg, logger)
			if err != nil {
				return err
			}

			var summary string
			err = withSpinner(" Summarizing...", func() error {
				var err error
				summary, err = pipeline.ExecutiveSummary(ctx, text, maxLength)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxLength, "max-length", usecase.DefaultExecutiveSummaryLength, "Maximum summary length in characters")
	return cmd
}

func newSegmentsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "segments FILE",
		Short: "List the speaker-attributed segments found in a transcript",
		Long: `List every labeled utterance in the transcript. No generation service is
contacted. Transcripts without role labels produce no segments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(cmd, args[0])
			if err != nil {
				return err
			}

			segments := transcript.Segments(text)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(segments)
			}

			if len(segments) == 0 {
				printWarning("No speaker labels found")
				return nil
			}
			for _, s := range segments {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", s.SpeakerRole, s.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the segments as JSON")
	return cmd
}

// readTranscript loads the transcript from path, or stdin when path is "-"
func readTranscript(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", errEmptyTranscript
	}
	return text, nil
}

func writeOutput(cmd *cobra.Command, path, rendered string) error {
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), rendered)
		return err
	}

	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	printSuccess("Report written to " + path)
	return nil
}

func withSpinner[T any](suffix string, fn func() T) T {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	defer s.Stop()
	return fn()
}

// reportFailures warns about every failed section. Partial reports still
// exit successfully.
func reportFailures(failures ...*entities.ErrorRecord) {
	failed := 0
	for _, f := range failures {
		if f != nil {
			failed++
		}
	}
	if failed == 0 {
		printSuccess("Analysis complete")
		return
	}
	printWarning(fmt.Sprintf("Analysis complete with %d failed section(s)", failed))
}
