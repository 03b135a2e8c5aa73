package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const (
	DefaultModel              = "gpt-4o-mini"
	DefaultVisionModel        = "gpt-4o"
	DefaultTranscriptionModel = "whisper-1"

	maxCompletionTokens = 4096
)

type Config struct {
	APIKey             string
	Model              string
	VisionModel        string
	TranscriptionModel string
}

// Provider talks to the OpenAI chat completion and audio transcription endpoints.
type Provider struct {
	client openai.Client
	cfg    Config
}

func NewProvider(cfg Config, opts ...option.RequestOption) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &Provider{
		client: openai.NewClient(opts...),
		cfg:    cfg,
	}
}

func (p *Provider) Name() string { return "openai" }

// GenerateJSON sends one chat completion constrained by a strict JSON schema.
// Requests carrying image URLs go to the vision model.
func (p *Provider) GenerateJSON(ctx context.Context, req domainAnalysis.JSONRequest) (json.RawMessage, error) {
	model := p.cfg.Model
	var user openai.ChatCompletionMessageParamUnion
	if len(req.ImageURLs) > 0 {
		model = p.cfg.VisionModel
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.Prompt)}
		for _, u := range req.ImageURLs {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: u,
			}))
		}
		user = openai.UserMessage(parts)
	} else {
		user = openai.UserMessage(req.Prompt)
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, user)

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(maxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.Name,
					Schema: any(req.Schema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	start := time.Now()
	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("%s: reply is not valid JSON", req.Name)
	}

	logrus.WithFields(logrus.Fields{
		"schema":        req.Name,
		"model":         model,
		"images":        len(req.ImageURLs),
		"input_tokens":  completion.Usage.PromptTokens,
		"output_tokens": completion.Usage.CompletionTokens,
		"elapsed":       time.Since(start).Round(time.Millisecond).String(),
	}).Debug("[OPENAI] Structured completion done")

	return json.RawMessage(content), nil
}

func (p *Provider) Transcribe(ctx context.Context, media domainAnalysis.MediaFile) (string, error) {
	mimeType := media.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	res, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(media.Reader, media.Name, mimeType),
		Model: openai.AudioModel(p.cfg.TranscriptionModel),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	text := strings.TrimSpace(res.Text)
	logrus.WithFields(logrus.Fields{
		"file":  media.Name,
		"chars": len(text),
	}).Debug("[OPENAI] Transcription done")
	return text, nil
}
