package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	"github.com/AzielCF/az-adlib/pkg/mediafetch"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// contentGenerator is satisfied by *genai.Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type mediaLoader interface {
	Bytes(ctx context.Context, rawURL string, maxBytes int64) ([]byte, mediafetch.File, error)
}

type Config struct {
	APIKey        string
	Model         string
	MaxImageBytes int64
	MaxVideoBytes int64
}

// Provider runs text, vision and transcription requests against one Gemini model.
// Images and videos are sent inline.
type Provider struct {
	models contentGenerator
	media  mediaLoader
	cfg    Config
}

func NewProvider(ctx context.Context, cfg Config, media *mediafetch.Fetcher) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newProvider(client.Models, media, cfg), nil
}

func newProvider(models contentGenerator, media mediaLoader, cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Provider{models: models, media: media, cfg: cfg}
}

func (p *Provider) Name() string { return "gemini" }

func (p *Provider) GenerateJSON(ctx context.Context, req domainAnalysis.JSONRequest) (json.RawMessage, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	for _, u := range req.ImageURLs {
		data, info, err := p.media.Bytes(ctx, u, p.cfg.MaxImageBytes)
		if err != nil {
			return nil, fmt.Errorf("load image %s: %w", u, err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: info.MimeType, Data: data}})
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: req.Schema,
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	start := time.Now()
	result, err := p.models.GenerateContent(ctx, p.cfg.Model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if result == nil {
		return nil, errors.New("generate content: empty response")
	}

	text := strings.TrimSpace(result.Text())
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("%s: reply is not valid JSON", req.Name)
	}

	logrus.WithFields(logrus.Fields{
		"schema":  req.Name,
		"model":   p.cfg.Model,
		"images":  len(req.ImageURLs),
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Debug("[GEMINI] Structured generation done")

	return json.RawMessage(text), nil
}

type transcriptionResponse struct {
	Transcription string `json:"transcription"`
}

func (p *Provider) Transcribe(ctx context.Context, media domainAnalysis.MediaFile) (string, error) {
	var reader io.Reader = media.Reader
	if p.cfg.MaxVideoBytes > 0 {
		reader = io.LimitReader(media.Reader, p.cfg.MaxVideoBytes)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}

	mimeType := media.MimeType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: "Transcribe every word spoken in this media literally, in the original language. Return an empty string if nothing is spoken."},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"transcription": {
					Type:        "string",
					Description: "A literal transcription of the speech in the media",
				},
			},
			Required: []string{"transcription"},
		},
	}

	result, err := p.models.GenerateContent(ctx, p.cfg.Model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	if result == nil {
		return "", nil
	}

	var resp transcriptionResponse
	if err := json.Unmarshal([]byte(result.Text()), &resp); err != nil {
		logrus.WithError(err).Warn("[GEMINI] Failed to parse transcription response, using raw text")
		return strings.TrimSpace(result.Text()), nil
	}
	return strings.TrimSpace(resp.Transcription), nil
}
