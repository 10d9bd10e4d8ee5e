// Package gemini extracts product records from label images with the Gemini
// API and a JSON response schema.
package gemini

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/laxmi8801/data-extractor/internal/domain"
	"github.com/laxmi8801/data-extractor/internal/infrastructure/images"
	"github.com/laxmi8801/data-extractor/internal/schema"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Config configures the client
type Config struct {
	APIKey string
	Model  string
	Prompt string
}

// generator is the part of genai.Models the client uses
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client extracts product records with a Gemini model
type Client struct {
	models    generator
	model     string
	prompt    string
	response  *genai.Schema
	validator *schema.Validator
	resolver  *images.Resolver
	logger    *zap.Logger
}

// NewClient connects to the Gemini API
func NewClient(ctx context.Context, cfg Config, resolver *images.Resolver, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return newClient(client.Models, cfg, resolver, logger)
}

func newClient(models generator, cfg Config, resolver *images.Resolver, logger *zap.Logger) (*Client, error) {
	validator, err := schema.NewValidator(schema.LabelReader)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: label_reader schema")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
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

	return &Client{
		models:    models,
		model:     cfg.Model,
		prompt:    cfg.Prompt,
		response:  toGenAISchema(schema.LabelReader.Root),
		validator: validator,
		resolver:  resolver,
		logger:    logger.Named("gemini"),
	}, nil
}

// Extract sends the prompt followed by the row's images, in order, and
// returns the structured payload or the refusal.
func (c *Client) Extract(ctx context.Context, row domain.ProductRow) (*domain.ExtractionResult, error) {
	if len(row.Images) == 0 {
		return nil, domain.ErrEmptyRow
	}

	parts := make([]*genai.Part, 0, len(row.Images)+1)
	parts = append(parts, genai.NewPartFromText(c.prompt))
	for _, ref := range row.Images {
		img, err := c.resolver.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}

	rid := uuid.New().String()
	start := time.Now()
	log := c.logger.With(zap.String("req_id", rid), zap.Int("line", row.Line))
	log.Debug("extract.start", zap.String("model", c.model), zap.Int("images", len(row.Images)))

	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   c.response,
		},
	)
	if err != nil {
		log.Warn("extract.api_error", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, eris.Wrapf(domain.ErrTransport, "gemini: %v", err)
	}

	result := &domain.ExtractionResult{Model: c.model, RequestID: rid}
	if resp != nil && resp.ModelVersion != "" {
		result.Model = resp.ModelVersion
	}

	payload, refusal := interpretResponse(resp)
	if refusal != "" {
		log.Info("extract.refused", zap.String("refusal", refusal), zap.Duration("elapsed", time.Since(start)))
		result.Refusal = refusal
		return result, nil
	}

	if err := c.validator.Validate([]byte(payload)); err != nil {
		log.Warn("extract.schema_validation_failed", zap.Error(err), zap.Int("content_len", len(payload)))
		return nil, eris.Wrapf(domain.ErrParse, "gemini: %v", err)
	}

	result.Payload = json.RawMessage(payload)
	log.Debug("extract.ok", zap.Duration("elapsed", time.Since(start)))
	return result, nil
}
