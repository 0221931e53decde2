package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

// Defaults for the Groq chat completions API (OpenAI-compatible).
const (
	DefaultBaseURL = "https://api.groq.com"
	DefaultModel   = "llama-3.1-8b-instant"

	maxResponseBytes = 1 << 20
	samplePromptCap  = 1000
)

// GroqProvider implements port.Enhancer using the Groq chat completions API.
type GroqProvider struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewGroqProvider creates a Groq-backed enhancer. Empty baseURL/model
// select the defaults.
func NewGroqProvider(baseURL, model, apiKey string) *GroqProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GroqProvider{
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Enhance sends the analysis context to the model and parses the response
// into an Enrichment. Parsing is all-or-nothing: a response missing any of
// the expected sections is discarded with an error so the caller can fall
// back to the baseline description.
func (g *GroqProvider) Enhance(ctx context.Context, req port.EnhanceRequest) (*domain.Enrichment, error) {
	payload := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "user", "content": buildPrompt(req)},
		},
		"temperature": 0.5,
	}

	body, err := g.post(ctx, "/openai/v1/chat/completions", payload)
	if err != nil {
		return nil, fmt.Errorf("groq enhance: %w", err)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("groq enhance decode: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("groq enhance: empty response")
	}

	return parseEnrichment(resp.Choices[0].Message.Content)
}

func buildPrompt(req port.EnhanceRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this GitHub project and provide a comprehensive description.\n\n")
	fmt.Fprintf(&b, "Project name: %s\n", req.Name)
	fmt.Fprintf(&b, "Project description: %s\n\n", req.Description)

	if req.ReadmeExcerpt != "" {
		fmt.Fprintf(&b, "README excerpt:\n%s\n\n", req.ReadmeExcerpt)
	}
	if len(req.Languages) > 0 {
		fmt.Fprintf(&b, "Languages used: %s\n\n", strings.Join(req.Languages, ", "))
	}
	if len(req.FileTree) > 0 {
		fmt.Fprintf(&b, "File structure:\n%s\n\n", strings.Join(req.FileTree, "\n"))
	}
	for _, s := range req.Samples {
		// Cap counts runes so the cut never leaves a split multi-byte rune
		// in the prompt.
		content := s.Content
		if len(content) > samplePromptCap {
			if runes := []rune(content); len(runes) > samplePromptCap {
				content = string(runes[:samplePromptCap])
			}
		}
		fmt.Fprintf(&b, "Sample code (%s):\n%s\n\n", s.Path, content)
	}

	b.WriteString(`Please provide exactly these numbered sections:
1. A concise summary (2-3 sentences)
2. Main features (5 bullet points)
3. Architecture description (2-3 paragraphs)
4. Use cases (who would benefit from this project)
5. Technical assessment (strengths and potential improvements)
6. Typical development workflow for contributors
7. Key dependencies and what they are used for`)
	return b.String()
}

var sectionRe = regexp.MustCompile(`\n\s*\d+\.\s+`)

// parseEnrichment splits the numbered model response into the seven
// enrichment fields. Partial or garbled responses are rejected.
func parseEnrichment(content string) (*domain.Enrichment, error) {
	sections := sectionRe.Split("\n"+content, -1)
	if len(sections) < 8 {
		return nil, fmt.Errorf("groq enhance: expected 7 sections, got %d", len(sections)-1)
	}

	return &domain.Enrichment{
		Summary:             strings.TrimSpace(sections[1]),
		Features:            strings.TrimSpace(sections[2]),
		Architecture:        strings.TrimSpace(sections[3]),
		UseCases:            strings.TrimSpace(sections[4]),
		TechnicalAssessment: strings.TrimSpace(sections[5]),
		Workflow:            strings.TrimSpace(sections[6]),
		Dependencies:        strings.TrimSpace(sections[7]),
	}, nil
}

// post sends a JSON payload and returns the response body, bounded by
// maxResponseBytes.
func (g *GroqProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
