package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxmi8801/data-extractor/internal/domain"
	"github.com/laxmi8801/data-extractor/internal/schema"
)

const labelPayload = `{"productName":"Mango Fruit Drink","brandName":"Sunfresh","ingredients":[{"name":"Water","percent":"","metadata":""}],"servingSize":{"quantity":200,"unit":"ml"},"packagingSize":{"quantity":1,"unit":"l"},"servingsPerPack":5,"nutritionalInformation":[{"name":"Energy","unit":"kcal","values":[{"base":"per 100ml","value":58}]}],"fssaiLicenseNumbers":[10012345000123],"claims":["contains fruit"],"shelfLife":"9 months"}`

var juiceRow = domain.ProductRow{
	Line:   1,
	Images: []string{"https://cdn.example.com/front.jpg", "https://cdn.example.com/back.jpg"},
}

// wireRequest is the chat/completions body as it appears on the wire
type wireRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type       string            `json:"type"`
		JSONSchema schema.Definition `json:"json_schema"`
	} `json:"response_format"`
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func completion(content, refusal, finish string) string {
	msg := map[string]any{"role": "assistant", "content": content, "refusal": nil}
	if refusal != "" {
		msg["content"] = nil
		msg["refusal"] = refusal
	}
	b, _ := json.Marshal(map[string]any{
		"id":    "chatcmpl-1",
		"model": DefaultModel,
		"choices": []any{
			map[string]any{"index": 0, "message": msg, "finish_reason": finish},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL}, nil, nil)
	require.NoError(t, err)
	return client
}

func TestClient_Extract_BuildsStrictRequest(t *testing.T) {
	var raw []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var err error
		raw, err = io.ReadAll(r.Body)
		assert.NoError(t, err)
		writeJSON(w, http.StatusOK, completion(labelPayload, "", "stop"))
	})

	_, err := client.Extract(context.Background(), juiceRow)
	require.NoError(t, err)

	var got wireRequest
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "label_reader", got.ResponseFormat.JSONSchema.Name)
	assert.True(t, got.ResponseFormat.JSONSchema.Strict)
	require.NotNil(t, got.ResponseFormat.JSONSchema.Root)
	assert.Equal(t, schema.LabelReader.Root.Required, got.ResponseFormat.JSONSchema.Root.Required)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	parts := got.Messages[0].Content
	require.Len(t, parts, 3)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, schema.LabelReaderPrompt, parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	require.NotNil(t, parts[1].ImageURL)
	assert.Equal(t, "https://cdn.example.com/front.jpg", parts[1].ImageURL.URL)
	require.NotNil(t, parts[2].ImageURL)
	assert.Equal(t, "https://cdn.example.com/back.jpg", parts[2].ImageURL.URL)

	// schema properties go out in declaration order
	body := string(raw)
	assert.Less(t, strings.Index(body, `"productName":`), strings.Index(body, `"brandName":`))
	assert.Less(t, strings.Index(body, `"claims":`), strings.Index(body, `"shelfLife":`))
}

func TestClient_Extract_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, completion(labelPayload, "", "stop"))
	})

	result, err := client.Extract(context.Background(), juiceRow)
	require.NoError(t, err)
	assert.False(t, result.Refused())
	assert.JSONEq(t, labelPayload, string(result.Payload))
	assert.Equal(t, DefaultModel, result.Model)
	assert.NotEmpty(t, result.RequestID)

	record, err := result.Decode()
	require.NoError(t, err)
	assert.Equal(t, "Mango Fruit Drink", record.ProductName)
}

func TestClient_Extract_Refusals(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "model refusal", body: completion("", "I can't read these images.", "stop"), want: "I can't read these images."},
		{name: "content filter", body: completion("", "", "content_filter"), want: "response withheld by content filter"},
		{name: "no choices", body: `{"id":"x","model":"m","choices":[]}`, want: "no choices returned"},
		{name: "no message", body: `{"id":"x","model":"m","choices":[{"index":0,"finish_reason":"stop"}]}`, want: "no message returned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			})

			result, err := client.Extract(context.Background(), juiceRow)
			require.NoError(t, err)
			assert.True(t, result.Refused())
			assert.Equal(t, tt.want, result.Refusal)
			assert.Empty(t, result.Payload)
		})
	}
}

func TestClient_Extract_TransportErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMsg     string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, contentType: "application/json", body: `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`, wantMsg: "status 429: rate_limit_exceeded: Rate limit reached"},
		{name: "server error", status: http.StatusInternalServerError, contentType: "text/plain", body: `upstream failure`},
		{name: "bad request", status: http.StatusBadRequest, contentType: "application/json", body: `{"error":{"message":"Invalid schema"}}`, wantMsg: "status 400: Invalid schema"},
		{name: "undecodable envelope", status: http.StatusOK, contentType: "text/html", body: `<html>gateway</html>`},
		{name: "malformed json envelope", status: http.StatusOK, contentType: "application/json", body: `{"id":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			result, err := client.Extract(context.Background(), juiceRow)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, domain.ErrTransport), "got %v", err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "requests are never retried")
		})
	}
}

func TestClient_Extract_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: url}, nil, nil)
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), juiceRow)
	assert.True(t, errors.Is(err, domain.ErrTransport), "got %v", err)
}

func TestClient_Extract_NonConformingPayload(t *testing.T) {
	for name, content := range map[string]string{
		"not json":      "The label says mango drink",
		"missing field": `{"productName":"Mango"}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, completion(content, "", "stop"))
			})

			_, err := client.Extract(context.Background(), juiceRow)
			assert.True(t, errors.Is(err, domain.ErrParse), "got %v", err)
		})
	}
}

func TestClient_Extract_RejectsBeforeCalling(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.Extract(context.Background(), domain.ProductRow{Line: 2})
	assert.ErrorIs(t, err, domain.ErrEmptyRow)

	_, err = client.Extract(context.Background(), domain.ProductRow{Line: 3, Images: []string{"ftp://cdn.example.com/a.jpg"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidImageRef), "got %v", err)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestInterpretResponse_PrefersRefusalOverContent(t *testing.T) {
	payload, refusal := interpretResponse(&openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Content: "{}", Refusal: "no"},
	}}})
	assert.Empty(t, payload)
	assert.Equal(t, "no", refusal)
}

func TestTransportError(t *testing.T) {
	err := transportError(&openai.Error{StatusCode: http.StatusBadRequest, Code: "invalid_schema", Message: "bad schema"})
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Contains(t, err.Error(), "status 400: invalid_schema: bad schema")

	err = transportError(errors.New("dial tcp: connection refused"))
	assert.True(t, errors.Is(err, domain.ErrTransport))
	assert.Contains(t, err.Error(), "connection refused")
}
