// Package openai extracts product records from label images with the OpenAI
// chat completions API and strict structured output.
package openai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/laxmi8801/data-extractor/internal/domain"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/images"
	"github.com/laxmi8801/data-extractor/internal/schema"
)

// Default request settings
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-2024-08-06"
	DefaultTimeout = 120 * time.Second
)

// Config configures the client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Prompt  string
}

// Client handles communication with the chat completions API
type Client struct {
	completions *openai.ChatCompletionService
	model       string
	prompt      string
	definition  schema.Definition
	validator   *schema.Validator
	resolver    *images.Resolver
	logger      *zap.Logger
}

// NewClient creates a client for the label_reader schema. The schema is
// checked against the strict structured-output rules here, once.
func NewClient(cfg Config, resolver *images.Resolver, logger *zap.Logger) (*Client, error) {
	validator, err := schema.NewValidator(schema.LabelReader)
	if err != nil {
		return nil, eris.Wrap(err, "openai: label_reader schema")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Prompt == "" {
		cfg.Prompt = schema.LabelReaderPrompt
	}
	if resolver == nil {
		resolver = images.NewResolver(nil, nil)
	}
	if logger == nil {
		logger = zap.L()
	}

	// a failed row is reported, never resent
	sdk := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", "labelreader/1.0"),
	)

	return &Client{
		completions: &sdk.Chat.Completions,
		model:       cfg.Model,
		prompt:      cfg.Prompt,
		definition:  schema.LabelReader,
		validator:   validator,
		resolver:    resolver,
		logger:      logger.Named("openai"),
	}, nil
}

// Extract sends the row's images with the label prompt and returns the
// structured payload or the refusal. There is no retry.
func (c *Client) Extract(ctx context.Context, row domain.ProductRow) (*domain.ExtractionResult, error) {
	if len(row.Images) == 0 {
		return nil, domain.ErrEmptyRow
	}

	urls := make([]string, 0, len(row.Images))
	for _, ref := range row.Images {
		u, err := c.resolver.URL(ref)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	rid := uuid.New().String()
	start := time.Now()
	log := c.logger.With(zap.String("req_id", rid), zap.Int("line", row.Line))
	log.Debug("extract.start", zap.String("model", c.model), zap.Int("images", len(urls)))

	resp, err := c.completions.New(ctx, buildParams(c.model, c.prompt, c.definition, urls))
	if err != nil {
		err = transportError(err)
		log.Warn("extract.http_error", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	result := &domain.ExtractionResult{Model: resp.Model, RequestID: rid}
	payload, refusal := interpretResponse(resp)
	if refusal != "" {
		log.Info("extract.refused", zap.String("refusal", refusal), zap.Duration("elapsed", time.Since(start)))
		result.Refusal = refusal
		return result, nil
	}

	if err := c.validator.Validate([]byte(payload)); err != nil {
		log.Warn("extract.schema_validation_failed", zap.Error(err), zap.Int("content_len", len(payload)))
		return nil, eris.Wrapf(domain.ErrParse, "openai: %v", err)
	}

	result.Payload = json.RawMessage(payload)
	log.Debug("extract.ok", zap.String("model", resp.Model), zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
