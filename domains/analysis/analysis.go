package analysis

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
)

const (
	DefaultBusinessName   = "Unknown Business"
	DefaultIndustry       = "Unspecified"
	DefaultTargetAudience = "General audience"
	DefaultTone           = "Friendly"
)

// StringList decodes from either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*l = StringList{}
		} else {
			*l = StringList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Joined renders the list for prompts, using fallback when it is empty.
func (l StringList) Joined(fallback string) string {
	if len(l) == 0 {
		return fallback
	}
	return strings.Join(l, ", ")
}

type BusinessContext struct {
	BusinessName        string     `json:"businessName"`
	Industry            string     `json:"industry"`
	TargetAudience      string     `json:"targetAudience"`
	BusinessDescription string     `json:"businessDescription"`
	UniqueSellingPoints StringList `json:"uniqueSellingPoints"`
	Tone                string     `json:"tone"`
	Products            StringList `json:"products"`
}

// WithDefaults fills every absent field so prompts never see a missing value.
func (b BusinessContext) WithDefaults() BusinessContext {
	if strings.TrimSpace(b.BusinessName) == "" {
		b.BusinessName = DefaultBusinessName
	}
	if strings.TrimSpace(b.Industry) == "" {
		b.Industry = DefaultIndustry
	}
	if strings.TrimSpace(b.TargetAudience) == "" {
		b.TargetAudience = DefaultTargetAudience
	}
	if strings.TrimSpace(b.Tone) == "" {
		b.Tone = DefaultTone
	}
	if b.UniqueSellingPoints == nil {
		b.UniqueSellingPoints = StringList{}
	}
	if b.Products == nil {
		b.Products = StringList{}
	}
	return b
}

type AnalyzeRequest struct {
	AdID string `json:"adId"`
	BusinessContext
}

type ContentComponents struct {
	Intro    string `json:"intro"`
	Body     string `json:"body"`
	Benefits string `json:"benefits"`
	CTA      string `json:"cta"`
	Contact  string `json:"contact"`
}

type ContentAnalysis struct {
	Analysis   string            `json:"analysis"`
	Template   string            `json:"template"`
	Components ContentComponents `json:"components"`
	Guidelines string            `json:"guidelines"`
}

type ImageAnalysis struct {
	Layout             string `json:"layout"`
	Colors             string `json:"colors"`
	Typography         string `json:"typography"`
	Subjects           string `json:"subjects"`
	Composition        string `json:"composition"`
	DesignElements     string `json:"design_elements"`
	IndustryAdaptation string `json:"industry_adaptation"`
	Guidelines         string `json:"guidelines"`
}

type VideoStructure struct {
	Intro string `json:"intro"`
	Body  string `json:"body"`
	Outro string `json:"outro"`
}

type VideoScene struct {
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Dialogue    string `json:"dialogue"`
	Visuals     string `json:"visuals"`
}

type VideoScript struct {
	Overview           string         `json:"overview"`
	Structure          VideoStructure `json:"structure"`
	Script             string         `json:"script"`
	Scenes             []VideoScene   `json:"scenes"`
	AudioGuidelines    string         `json:"audio_guidelines"`
	VisualEffects      string         `json:"visual_effects"`
	TextOverlays       string         `json:"text_overlays"`
	BusinessAdaptation string         `json:"business_adaptation"`
}

// Notice is returned in place of an analysis that had nothing to work on.
type Notice struct {
	Analysis string `json:"analysis"`
}

const (
	NoticeNoMedia      = "No media data"
	NoticeNoImages     = "No suitable images found for analysis"
	NoticeNoVideos     = "No suitable videos found for analysis"
	NoticeNoTranscript = "No transcript available"
)

type AnalyzeResult struct {
	Ad              domainAds.AdItem `json:"ad"`
	BusinessContext BusinessContext  `json:"businessContext"`
	Content         *ContentAnalysis `json:"content"`
	Media           any              `json:"media"`
	Video           any              `json:"video"`
}

type IAnalysisUsecase interface {
	Analyze(ctx context.Context, request AnalyzeRequest) (AnalyzeResult, error)
}

// JSONRequest asks a provider for a reply that conforms to Schema.
type JSONRequest struct {
	Name         string
	SystemPrompt string
	Prompt       string
	ImageURLs    []string
	Schema       map[string]any
}

// MediaFile is a local copy of a remote media asset.
type MediaFile struct {
	Name     string
	MimeType string
	Reader   io.Reader
}

// IAIProvider is implemented by each generative-AI backend.
type IAIProvider interface {
	Name() string
	GenerateJSON(ctx context.Context, req JSONRequest) (json.RawMessage, error)
	Transcribe(ctx context.Context, media MediaFile) (string, error)
}
