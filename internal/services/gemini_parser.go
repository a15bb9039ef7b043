package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GeminiParser is the primary language-model parser backed by Gemini JSON mode
type GeminiParser struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

const commandPrompt = `You are a command parser for a shopping-list app. Input variables: transcript=%q, language_hint=%q (may be "auto").
Output JSON only (no surrounding text) exactly in this schema:
{"action": "add" | "remove" | "search" | null, "item": "<original item phrase, trimmed, FIRST letter UPPERCASED>", "normalized_item": "<canonical singular English noun phrase, lowercase>", "quantity": <integer >= 1>}
Rules:
- Detect intent: add/remove/search. If intent cannot be determined, set action=null, item="", normalized_item="", quantity=1.
- "item": keep the user's phrase including adjectives like "organic"; first character uppercase.
- "normalized_item": canonical English singular, lowercase; lemmatize plurals, translate common words, drop numbers, prices and filler words.
- Quantities come from numerals and spoken numbers in any language; "dozen"=12; round fractions up; minimum 1.
- Chit-chat or ambiguous text is not a shopping command: action=null with empty item fields.
Examples:
"add 2 apples" -> {"action":"add","item":"2 apples","normalized_item":"apple","quantity":2}
"मेरी सूची से दूध हटाओ" -> {"action":"remove","item":"दूध","normalized_item":"milk","quantity":1}
"Find organic apples under $5" -> {"action":"search","item":"Organic apples under $5","normalized_item":"organic apple","quantity":1}
"please add half a dozen eggs" -> {"action":"add","item":"Half a dozen eggs","normalized_item":"egg","quantity":6}
Return JSON only.`

// NewGeminiParser creates a Gemini-backed parser
func NewGeminiParser(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiParser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiParser{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// ParseCommand sends the utterance to Gemini and returns the raw JSON text
func (g *GeminiParser) ParseCommand(ctx context.Context, utterance, lang string) ([]byte, error) {
	if lang == "" {
		lang = "auto"
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(fmt.Sprintf(commandPrompt, utterance, lang)),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0),
			ResponseMIMEType: "application/json",
			ResponseSchema:   commandSchema(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrimaryUnavailable, err)
	}

	text := strings.TrimSpace(result.Text())
	log.Debug().Str("model", g.model).Str("response", text).Msg("gemini raw response")
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}
	return []byte(text), nil
}

func commandSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"action": {
				Type:     genai.TypeString,
				Enum:     []string{"add", "remove", "search"},
				Nullable: genai.Ptr(true),
			},
			"item":            {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"normalized_item": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
			"quantity":        {Type: genai.TypeInteger, Minimum: genai.Ptr[float64](1)},
		},
		Required: []string{"action", "item", "normalized_item", "quantity"},
	}
}
