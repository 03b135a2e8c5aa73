package usecase

import (
	"fmt"
	"strings"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
)

const (
	schemaContent = "content_analysis"
	schemaImage   = "image_analysis"
	schemaVideo   = "video_script"

	systemContent = "You are an expert in analysing and writing advertising copy, especially Facebook ads. Reply with JSON in the requested format."
	systemImage   = "You are an expert in image analysis, photography and graphic design. Analyse the advertising images in detail, focusing on how they can be applied to the user's business. Reply with JSON in the requested format."
	systemVideo   = "You are an expert in analysing video ads and writing video scripts. Reply with JSON in the requested format."

	notProvided = "Not provided"
	unspecified = "Unspecified"
)

func businessContextBlock(bc domainAnalysis.BusinessContext) string {
	description := bc.BusinessDescription
	if strings.TrimSpace(description) == "" {
		description = "No description"
	}
	var b strings.Builder
	b.WriteString("BUSINESS CONTEXT:\n")
	fmt.Fprintf(&b, "Business name: %s\n", bc.BusinessName)
	fmt.Fprintf(&b, "Industry: %s\n", bc.Industry)
	fmt.Fprintf(&b, "Target audience: %s\n", bc.TargetAudience)
	fmt.Fprintf(&b, "Business description: %s\n", description)
	fmt.Fprintf(&b, "Unique selling points: %s\n", bc.UniqueSellingPoints.Joined(unspecified))
	fmt.Fprintf(&b, "Tone: %s\n", bc.Tone)
	fmt.Fprintf(&b, "Products/Services: %s", bc.Products.Joined(unspecified))
	return b.String()
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func contentPrompt(ad domainAds.AdItem, bc domainAnalysis.BusinessContext) string {
	return fmt.Sprintf(`Analyse the following ad and build an ad template from it.

Ad caption:
%s

CTA: %s
CTA type: %s
Media type: %s

%s

Tasks:
1. Analyse the structure and writing style of the caption.
2. Write a new caption template in the same style, adapted to the business above.
3. Use the business details directly instead of generic placeholders.
4. Keep the language, tone and structure of the original caption.
5. Break the template into intro, body, benefits, call-to-action and contact details (when present).
6. Give detailed guidelines on using the template effectively.`,
		ad.Text,
		orDefault(ad.CtaText, notProvided),
		orDefault(ad.CtaType, notProvided),
		orDefault(string(ad.MediaType), notProvided),
		businessContextBlock(bc),
	)
}

func imagePrompt(bc domainAnalysis.BusinessContext) string {
	return fmt.Sprintf(`Analyse the attached ad images in detail for the business described below and explain how to create similar images for it.

%s

Cover:
1. Overall layout of the images
2. Dominant colours and palette
3. Typography and on-image text (if any)
4. Main subjects (product, people, scenery...)
5. Camera angle, lighting and composition
6. Notable design elements
7. Concrete guidelines to produce similar images for %s`,
		businessContextBlock(bc),
		bc.BusinessName,
	)
}

func videoPrompt(ad domainAds.AdItem, bc domainAnalysis.BusinessContext, transcripts []string) string {
	blocks := make([]string, len(transcripts))
	for i, t := range transcripts {
		blocks[i] = fmt.Sprintf("Video %d:\n%s", i+1, t)
	}

	return fmt.Sprintf(`Analyse the following video ad for the business described below.

%s

Video transcripts:
%s

Ad caption:
%s

Using the transcripts and the caption, write a similar video script adapted to the user's business. Cover:
1. Overall structure (intro, body, outro)
2. Main scenes with estimated durations
3. Script and dialogue
4. Music and sound effects
5. Transitions and visual effects
6. On-screen text
7. How to apply it concretely to %s`,
		businessContextBlock(bc),
		strings.Join(blocks, "\n\n"),
		ad.Text,
		bc.BusinessName,
	)
}

// --- JSON Schemas (strict mode: every property required, no extras) ---

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(keys []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             keys,
		"additionalProperties": false,
	}
}

func contentSchema() map[string]any {
	components := objectSchema(
		[]string{"intro", "body", "benefits", "cta", "contact"},
		map[string]any{
			"intro":    stringProp("Opening of the template"),
			"body":     stringProp("Body of the template"),
			"benefits": stringProp("Benefits or features, if any"),
			"cta":      stringProp("Call-to-action"),
			"contact":  stringProp("Contact details, if any"),
		},
	)
	return objectSchema(
		[]string{"analysis", "template", "components", "guidelines"},
		map[string]any{
			"analysis":   stringProp("Short analysis of the original ad"),
			"template":   stringProp("Complete caption template filled with the business details"),
			"components": components,
			"guidelines": stringProp("How to use the template"),
		},
	)
}

func imageSchema() map[string]any {
	return objectSchema(
		[]string{"layout", "colors", "typography", "subjects", "composition", "design_elements", "industry_adaptation", "guidelines"},
		map[string]any{
			"layout":              stringProp("Overall layout"),
			"colors":              stringProp("Colours and palette"),
			"typography":          stringProp("Fonts and on-image text"),
			"subjects":            stringProp("Main subjects"),
			"composition":         stringProp("Angle, lighting and composition"),
			"design_elements":     stringProp("Notable design elements"),
			"industry_adaptation": stringProp("How to adapt this style to the business"),
			"guidelines":          stringProp("Concrete steps to create similar images"),
		},
	)
}

func videoSchema() map[string]any {
	structure := objectSchema(
		[]string{"intro", "body", "outro"},
		map[string]any{
			"intro": stringProp("Opening section"),
			"body":  stringProp("Main section"),
			"outro": stringProp("Closing section"),
		},
	)
	scene := objectSchema(
		[]string{"description", "duration", "dialogue", "visuals"},
		map[string]any{
			"description": stringProp("What happens in the scene"),
			"duration":    stringProp("Estimated duration"),
			"dialogue":    stringProp("Dialogue for the scene"),
			"visuals":     stringProp("Visual direction"),
		},
	)
	return objectSchema(
		[]string{"overview", "structure", "script", "scenes", "audio_guidelines", "visual_effects", "text_overlays", "business_adaptation"},
		map[string]any{
			"overview":            stringProp("Overview of the video"),
			"structure":           structure,
			"script":              stringProp("Full script adapted to the business"),
			"scenes":              map[string]any{"type": "array", "items": scene},
			"audio_guidelines":    stringProp("Music and sound effects"),
			"visual_effects":      stringProp("Visual effects and transitions"),
			"text_overlays":       stringProp("On-screen text"),
			"business_adaptation": stringProp("How to apply this style to the business"),
		},
	)
}
