package openai

import (
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/rotisserie/eris"

	"github.com/laxmi8801/data-extractor/internal/domain"
	"github.com/laxmi8801/data-extractor/internal/schema"
)

// Finish reasons that mean the answer was withheld
const finishContentFilter = "content_filter"

// buildParams assembles one user message: the prompt first, then one
// image_url part per image in row order.
func buildParams(model, prompt string, def schema.Definition, imageURLs []string) openai.ChatCompletionNewParams {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(imageURLs)+1)
	parts = append(parts, openai.TextContentPart(prompt))
	for _, u := range imageURLs {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: u}))
	}

	return openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   def.Name,
					Strict: openai.Bool(def.Strict),
					Schema: def.Root,
				},
			},
		},
	}
}

// interpretResponse returns the structured payload, or a refusal reason when
// the service declined to answer.
func interpretResponse(resp *openai.ChatCompletion) (payload string, refusal string) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", "no choices returned"
	}

	choice := resp.Choices[0]
	if r := strings.TrimSpace(choice.Message.Refusal); r != "" {
		return "", r
	}
	if choice.FinishReason == finishContentFilter {
		return "", "response withheld by content filter"
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", "no message returned"
	}
	return content, ""
}

// transportError wraps a failed call in domain.ErrTransport, keeping the
// status and message of API errors.
func transportError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if apiErr.Code != "" {
			msg = apiErr.Code + ": " + msg
		}
		return eris.Wrapf(domain.ErrTransport, "openai: status %d: %s", apiErr.StatusCode, msg)
	}
	return eris.Wrapf(domain.ErrTransport, "openai: %v", err)
}
