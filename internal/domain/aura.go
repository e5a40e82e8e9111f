package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AuraResult is the normalized analysis produced from the vision model's JSON
// output. Rating is nil when the model returned nothing numeric.
type AuraResult struct {
	Rating             *int
	AuraSummary        string
	PartnerPersona     string
	PollinationsPrompt string
	ColorPalette       []string
	Guidance           string
}

// Accepted key aliases per field, in precedence order. The model is prompted
// for the first name of each list but drifts in practice.
var (
	ratingAliases  = []string{"rating", "score", "aura_score"}
	summaryAliases = []string{"aura_summary", "summary"}
	personaAliases = []string{"partner_persona", "persona"}
	promptAliases  = []string{"pollinations_prompt", "generated_prompt"}
	paletteAliases = []string{"color_palette", "palette"}
	tipAliases     = []string{"guidance", "tip"}
)

// ParseAuraResult parses the raw model content and normalizes it defensively.
// Every field except the generation prompt degrades to a zero value when
// absent or mistyped; an empty prompt is an error because downstream portrait
// generation cannot proceed without it.
func ParseAuraResult(raw string) (*AuraResult, error) {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return nil, E(KindMalformedOutput, "Failed to parse analysis output")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(fragment), &payload); err != nil {
		return nil, Wrap(KindMalformedOutput, "Failed to parse analysis output", err)
	}

	result := &AuraResult{
		Rating:             normalizeRating(firstValue(payload, ratingAliases)),
		AuraSummary:        firstString(payload, summaryAliases),
		PartnerPersona:     firstString(payload, personaAliases),
		PollinationsPrompt: firstString(payload, promptAliases),
		ColorPalette:       normalizePalette(firstValue(payload, paletteAliases)),
		Guidance:           firstString(payload, tipAliases),
	}

	if result.PollinationsPrompt == "" {
		return nil, E(KindMissingPrompt, "Analysis did not return a generation prompt")
	}
	return result, nil
}

// normalizeRating coerces the value to a number, rounds it and clamps it into
// [1,10]. Anything non-numeric yields nil rather than an error.
func normalizeRating(v any) *int {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	rating := int(math.Round(f))
	if rating < 1 {
		rating = 1
	}
	if rating > 10 {
		rating = 10
	}
	return &rating
}

// normalizePalette accepts only an array, stringifying each element. Any
// other shape yields an empty palette.
func normalizePalette(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	palette := make([]string, 0, len(items))
	for _, item := range items {
		switch value := item.(type) {
		case string:
			palette = append(palette, value)
		default:
			palette = append(palette, fmt.Sprintf("%v", value))
		}
	}
	return palette
}

func firstValue(payload map[string]any, aliases []string) any {
	for _, key := range aliases {
		if v, ok := payload[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(payload map[string]any, aliases []string) string {
	for _, key := range aliases {
		if v, ok := payload[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// extractJSONFragment trims code fences and surrounding prose that chat
// models occasionally wrap around their JSON despite the response format.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
