package gemini

import (
	"strings"

	"google.golang.org/genai"

	"github.com/laxmi8801/data-extractor/internal/schema"
)

var typeNames = map[string]genai.Type{
	schema.TypeObject:  genai.TypeObject,
	schema.TypeArray:   genai.TypeArray,
	schema.TypeString:  genai.TypeString,
	schema.TypeNumber:  genai.TypeNumber,
	schema.TypeInteger: genai.TypeInteger,
	schema.TypeBoolean: genai.TypeBoolean,
}

// Finish reasons that mean the candidate was withheld
var refusalFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReason("SAFETY"):             true,
	genai.FinishReason("RECITATION"):         true,
	genai.FinishReason("BLOCKLIST"):          true,
	genai.FinishReason("PROHIBITED_CONTENT"): true,
	genai.FinishReason("SPII"):               true,
	genai.FinishReason("IMAGE_SAFETY"):       true,
}

// toGenAISchema converts a schema node into a response schema. Properties
// are ordered as they are required so the model emits fields in record order.
func toGenAISchema(n *schema.Node) *genai.Schema {
	if n == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        typeNames[n.Type],
		Description: n.Description,
	}
	if len(n.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(n.Properties))
		for name, child := range n.Properties {
			out.Properties[name] = toGenAISchema(child)
		}
		out.Required = append([]string(nil), n.Required...)
		out.PropertyOrdering = append([]string(nil), n.Required...)
	}
	if n.Items != nil {
		out.Items = toGenAISchema(n.Items)
	}
	return out
}

// interpretResponse returns the JSON payload of the first candidate, or a
// refusal reason when the prompt or the candidate was blocked.
func interpretResponse(resp *genai.GenerateContentResponse) (payload string, refusal string) {
	if resp == nil {
		return "", "empty response"
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := "prompt blocked: " + string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reason += ": " + fb.BlockReasonMessage
		}
		return "", reason
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", "no candidates returned"
	}

	candidate := resp.Candidates[0]
	if refusalFinishReasons[candidate.FinishReason] {
		return "", "candidate withheld: " + string(candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", "no content returned"
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), ""
}
