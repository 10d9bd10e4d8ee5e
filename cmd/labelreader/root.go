package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laxmi8801/data-extractor/config"
	"github.com/laxmi8801/data-extractor/internal/domain"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/gemini"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/images"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/openai"
)

var (
	cfg *config.Config

	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "labelreader",
	Short: "Extract product records from package label images",
	Long: `Reads rows of package label image references, asks a multimodal model for
a strictly typed product record per row, and stores each record as a document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml, ./config/config.yaml, /etc/labelreader/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// newExtractor builds the extraction client for the configured provider
func newExtractor(ctx context.Context, c *config.Config) (domain.Extractor, error) {
	if err := c.ValidateInference(); err != nil {
		return nil, err
	}

	resolver := images.NewResolver(nil, images.NewURLValidatorWithHosts(c.Images.AllowedHosts))
	logger := zap.L().With(zap.String("provider", c.Inference.Provider))

	switch c.Inference.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey: c.Gemini.APIKey,
			Model:  c.Gemini.Model,
			Prompt: c.Prompt,
		}, resolver, logger)
		if err != nil {
			return nil, eris.Wrap(err, "build gemini extractor")
		}
		return client, nil
	default:
		client, err := openai.NewClient(openai.Config{
			APIKey:  c.OpenAI.APIKey,
			BaseURL: c.OpenAI.BaseURL,
			Model:   c.OpenAI.Model,
			Timeout: c.OpenAI.Timeout,
			Prompt:  c.Prompt,
		}, resolver, logger)
		if err != nil {
			return nil, eris.Wrap(err, "build openai extractor")
		}
		return client, nil
	}
}
