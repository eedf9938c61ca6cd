package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/ai/rules"
	"github.com/spigell/collabmatch/internal/logger"
	"github.com/spigell/collabmatch/internal/profile"
	"github.com/spigell/collabmatch/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// Matcher asks Gemini for a match assessment. When the request or its answer
// fails, the fallback matcher is consulted instead.
type Matcher struct {
	generator contentGenerator
	fallback  ai.Matcher
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

//go:embed system.md
var systemInstruction string

const defaultMaxLogLength = 200

var errNoScore = errors.New("gemini response has no matchScore")

func NewMatcher(generator contentGenerator, fallback ai.Matcher, maxLogLength int, log *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Matcher{
		generator: generator,
		fallback:  fallback,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) Evaluate(ctx context.Context, influencer *profile.Influencer, business *profile.Business) (*ai.MatchResult, error) {
	if influencer == nil {
		return nil, fmt.Errorf("influencer is required")
	}
	if business == nil {
		return nil, fmt.Errorf("business is required")
	}

	result, err := m.evaluate(ctx, influencer, business)
	if err == nil {
		return result, nil
	}

	if m.fallback == nil || ctx.Err() != nil {
		return nil, err
	}

	m.logger.Warn("gemini evaluation failed, falling back",
		append(logger.PairFields(influencer.ID, business.ID), zap.Error(err))...,
	)

	return m.fallback.Evaluate(ctx, influencer, business)
}

func (m *Matcher) evaluate(ctx context.Context, influencer *profile.Influencer, business *profile.Business) (*ai.MatchResult, error) {
	influencerJSON, err := json.MarshalIndent(influencer, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal influencer payload: %w", err)
	}

	businessJSON, err := json.MarshalIndent(business, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal business payload: %w", err)
	}

	prompt := buildPrompt(string(influencerJSON), string(businessJSON))
	pair := logger.PairFields(influencer.ID, business.ID)

	m.logger.Debug("gemini generate content request", append(pair,
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, m.maxLogLen)),
	)...)

	raw, err := m.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response", append(pair,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)...)

	return parseResponse(raw)
}

func buildPrompt(influencerJSON, businessJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Influencer:\n{{INFLUENCER_JSON}}\n\nBusiness:\n{{BUSINESS_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{INFLUENCER_JSON}}", influencerJSON)
	prompt = strings.ReplaceAll(prompt, "{{BUSINESS_JSON}}", businessJSON)
	return prompt
}

func parseResponse(raw string) (*ai.MatchResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["matchScore"])
	if math.IsNaN(score) {
		return nil, errNoScore
	}

	matchScore := int(math.Round(math.Max(0, math.Min(100, score))))

	suggestions := coerceStrings(data["suggestedCollaborations"])
	if len(suggestions) == 0 {
		suggestions = rules.SuggestionsForScore(matchScore)
	}

	return &ai.MatchResult{
		MatchScore:              matchScore,
		Reasoning:               coerceStrings(data["reasoning"]),
		SuggestedCollaborations: suggestions,
		Source:                  ai.SourceGemini,
	}, nil
}

// extractJSON returns the outermost {...} block of raw, which also strips
// markdown code fences around it.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceStrings(v any) []string {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case string:
		items = []any{val}
	default:
		return []string{}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(coerceString(item))
		if s == "" {
			continue
		}
		result = append(result, s)
	}
	return result
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
