package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/domain"
)

var (
	// ErrMissingAPIKey is returned when no Gemini key is configured
	ErrMissingAPIKey = errors.New("gemini api key is not configured")

	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("gemini returned an empty response")
)

// ParseError is returned when the model's text is not the expected JSON
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse trend analysis: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// descriptionSnippetLen is how much of each description the prompt carries
const descriptionSnippetLen = 100

// Generator produces the model's raw text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service summarizes a video collection into a TrendAnalysis
type Service struct {
	generator Generator
}

// NewService creates a Gemini-backed service. Without an API key the
// service is still returned and every call fails with ErrMissingAPIKey.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg.GeminiAPIKey == "" {
		return &Service{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewServiceWithGenerator(&genaiGenerator{client: client, model: cfg.GeminiModel}), nil
}

// NewServiceWithGenerator creates a service over any Generator
func NewServiceWithGenerator(g Generator) *Service {
	return &Service{generator: g}
}

// Summarize asks the model for a trend analysis of videos. Failures are
// returned as is and never retried.
func (s *Service) Summarize(ctx context.Context, videos []domain.EnrichedVideo) (*domain.TrendAnalysis, error) {
	if s.generator == nil {
		return nil, ErrMissingAPIKey
	}

	prompt, err := BuildPrompt(videos)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate trend analysis: %w", err)
	}
	return ParseAnalysis(text)
}

// videoDigest is the projection of a video the model sees
type videoDigest struct {
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Views       string `json:"views"`
	Tags        string `json:"tags,omitempty"`
	Description string `json:"description"`
}

// BuildPrompt renders the analysis prompt for videos
func BuildPrompt(videos []domain.EnrichedVideo) (string, error) {
	digests := make([]videoDigest, 0, len(videos))
	for _, v := range videos {
		digests = append(digests, videoDigest{
			Title:       v.Title,
			Channel:     v.ChannelTitle,
			Views:       strconv.FormatInt(v.ViewCount, 10),
			Tags:        strings.Join(v.Tags, ", "),
			Description: snippet(v.Description, descriptionSnippetLen) + "...",
		})
	}

	data, err := json.Marshal(digests)
	if err != nil {
		return "", fmt.Errorf("encode prompt data: %w", err)
	}

	return fmt.Sprintf(`Analyze the following trending YouTube videos and provide insights into current trends.
Focus on content styles, recurring topics, emotional triggers, and why these are currently popular.

Data: %s`, data), nil
}

func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ParseAnalysis decodes the model's JSON text
func ParseAnalysis(text string) (*domain.TrendAnalysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var analysis domain.TrendAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &analysis, nil
}

// ResponseSchema is the structured output the model is asked for
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString, Description: "Overall summary of the trends."},
			"keyThemes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"theme":       {Type: genai.TypeString},
						"explanation": {Type: genai.TypeString},
					},
					Required: []string{"theme", "explanation"},
				},
			},
			"audienceInsights": {Type: genai.TypeString, Description: "What this says about current audience behavior."},
			"prediction":       {Type: genai.TypeString, Description: "What trends might emerge next."},
		},
		Required: []string{"summary", "keyThemes", "audienceInsights", "prediction"},
	}
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
