package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/notetaker/adapters/llm"
	"github.com/satriahrh/notetaker/internal/config"
	"github.com/satriahrh/notetaker/internal/generation"
	"github.com/satriahrh/notetaker/usecase"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

// globalOptions are the flags shared by every command
type globalOptions struct {
	configPath string
	provider   string
	model      string
	verbose    bool
}

func main() {
	// A missing .env file is fine; the environment may already be set
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "notetaker",
		Short: "Structured medical notes from physician-patient transcripts",
		Long: `notetaker sends a physician-patient dialogue transcript to a text-generation
model and turns the replies into a validated report: medical entities, a
structured summary, patient sentiment and intent, and a SOAP note.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "notetaker.yaml", "Path to the YAML config file (ignored when absent)")
	rootCmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "Generation provider (gemini, openai, ollama, mock)")
	rootCmd.PersistentFlags().StringVar(&opts.model, "model", "", "Model name for the selected provider")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newQuickCmd(opts),
		newBriefCmd(opts),
		newSegmentsCmd(),
		newServeCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notetaker version %s\n", version)
		},
	}
}

// load reads the configuration with the command-line overrides applied and
// builds the logger. quiet raises the log level to warn unless -v is set.
func (o *globalOptions) load(quiet bool, overrides ...func(*config.Config)) (config.Config, *zap.Logger, error) {
	overrides = append([]func(*config.Config){func(c *config.Config) {
		if o.provider != "" {
			c.LLM.Provider = config.Provider(strings.ToLower(o.provider))
		}
		if o.model != "" {
			c.LLM.Model = o.model
		}
		switch {
		case o.verbose:
			c.Log.Level = "debug"
			c.Log.Development = true
		case quiet:
			c.Log.Level = "warn"
		}
	}}, overrides...)

	cfg, err := config.Load(o.configPath, overrides...)
	if err != nil {
		return cfg, nil, err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return cfg, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// newPipeline connects the configured provider and wraps it in the pipeline
func newPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) (*usecase.Pipeline, error) {
	gen, err := llm.NewGenerator(ctx, cfg.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("create %s generator: %w", cfg.LLM.Provider, err)
	}

	client := generation.NewClient(gen, generation.Options{
		MaxRetries:      cfg.Retry.MaxRetries,
		RetryDelay:      cfg.Retry.Delay,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}, logger.Named("generation"))

	logger.Debug("Pipeline ready",
		zap.String("provider", string(cfg.LLM.Provider)),
		zap.String("model", client.Model()),
		zap.Int("max_retries", cfg.Retry.MaxRetries),
		zap.Duration("retry_delay", cfg.Retry.Delay))

	return usecase.NewPipeline(client, cfg.Pipeline, logger.Named("pipeline")), nil
}

func printSuccess(msg string) {
	color.New(color.FgGreen, color.Bold).Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printWarning(msg string) {
	color.New(color.FgYellow, color.Bold).Fprintf(os.Stderr, "! %s\n", msg)
}
