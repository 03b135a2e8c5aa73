package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path string
	Body map[string]any
	Form map[string]string
	File string
}

func completionJSON(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(b)
}

func newTestProvider(t *testing.T, reply string, captured *capturedRequest) *Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")

		if strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
				return
			}
			captured.Form = map[string]string{"model": r.FormValue("model")}
			f, hdr, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			data, _ := io.ReadAll(f)
			captured.File = hdr.Filename + ":" + string(data)
			_, _ = io.WriteString(w, `{"text":" hello there "}`)
			return
		}

		_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		_, _ = io.WriteString(w, completionJSON(reply))
	}))
	t.Cleanup(srv.Close)

	return NewProvider(Config{APIKey: "sk-test"},
		option.WithBaseURL(srv.URL+"/"),
		option.WithMaxRetries(0),
	)
}

func testSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"analysis": map[string]any{"type": "string"}},
		"required":             []string{"analysis"},
		"additionalProperties": false,
	}
}

func TestGenerateJSON_TextModel(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, `{"analysis":"ok"}`, &captured)

	raw, err := p.GenerateJSON(context.Background(), domainAnalysis.JSONRequest{
		Name:         "content_analysis",
		SystemPrompt: "You are a copywriter.",
		Prompt:       "Analyze this ad",
		Schema:       testSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"analysis":"ok"}`, string(raw))

	assert.Equal(t, "/chat/completions", captured.Path)
	assert.Equal(t, DefaultModel, captured.Body["model"])

	messages := captured.Body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "Analyze this ad", messages[1].(map[string]any)["content"])

	format := captured.Body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, "content_analysis", schema["name"])
	assert.Equal(t, true, schema["strict"])
}

func TestGenerateJSON_VisionModelWithImages(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, `{"analysis":"pic"}`, &captured)

	_, err := p.GenerateJSON(context.Background(), domainAnalysis.JSONRequest{
		Name:      "image_analysis",
		Prompt:    "Describe",
		ImageURLs: []string{"https://cdn.example/a.jpg", "https://cdn.example/b.png"},
		Schema:    testSchema(),
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultVisionModel, captured.Body["model"])
	messages := captured.Body["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 3)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
	assert.Equal(t, "https://cdn.example/b.png", parts[2].(map[string]any)["image_url"].(map[string]any)["url"])
}

func TestGenerateJSON_RejectsNonJSONReply(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, `Sure! Here is your analysis`, &captured)

	_, err := p.GenerateJSON(context.Background(), domainAnalysis.JSONRequest{Name: "content_analysis", Prompt: "x", Schema: testSchema()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestTranscribe(t *testing.T) {
	var captured capturedRequest
	p := newTestProvider(t, "", &captured)

	text, err := p.Transcribe(context.Background(), domainAnalysis.MediaFile{
		Name:     "clip.mp4",
		MimeType: "video/mp4",
		Reader:   strings.NewReader("video-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", text)
	assert.Equal(t, "/audio/transcriptions", captured.Path)
	assert.Equal(t, DefaultTranscriptionModel, captured.Form["model"])
	assert.Equal(t, "clip.mp4:video-bytes", captured.File)
}

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider(Config{APIKey: "k", Model: "gpt-custom"})
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-custom", p.cfg.Model)
	assert.Equal(t, DefaultVisionModel, p.cfg.VisionModel)
	assert.Equal(t, DefaultTranscriptionModel, p.cfg.TranscriptionModel)
}
