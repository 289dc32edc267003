package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = `You are a medical insurance claim processor for the national health insurance scheme. Analyze the provided claim data and return a JSON response with exactly these fields:
1. status: Must be one of "Approved", "Flagged", or "Rejected"
2. final_payout: Numerical value representing the approved payout amount.
3. reason: Detailed explanation for your decision. State any drugs or medical treatments that are not covered by the scheme.

Base your decision on factors such as:
- Whether the procedures and medications are appropriate for the diagnosis
- Whether the charges appear reasonable
- Any potential fraud indicators or policy violations
- Whether all required documentation is present

Your response MUST be a valid JSON object with only these three fields and nothing else.`

// AnthropicAssessor adjudicates claims using Claude.
type AnthropicAssessor struct {
	client anthropic.Client
	model  string
}

// NewAnthropicAssessor creates an assessor using the given API key and model.
func NewAnthropicAssessor(apiKey, model string) *AnthropicAssessor {
	return &AnthropicAssessor{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *AnthropicAssessor) Assess(ctx context.Context, enrichedClaim []byte) (Verdict, error) {
	prompt := fmt.Sprintf("%s\n\nPlease analyze this medical claim:\n%s", systemPrompt, enrichedClaim)

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("assessment api call: %w", err)
	}
	if len(msg.Content) == 0 {
		return Verdict{}, fmt.Errorf("%w: empty response", ErrMalformedVerdict)
	}

	return ParseVerdict(msg.Content[0].Text)
}

// ParseVerdict extracts and validates a verdict from raw model output. The
// model sometimes wraps the JSON object in prose, so the object is located by
// scanning for the outermost braces.
func ParseVerdict(raw string) (Verdict, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	var v Verdict
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	if err := dec.Decode(&v); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if err := v.Validate(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

// extractJSON returns the substring between the first { and the last }.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
