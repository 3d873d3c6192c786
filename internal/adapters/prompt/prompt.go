// Package prompt holds the screening prompt and response parsing shared by
// the LLM adapters.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/contact-relay/internal/core"
)

// SystemInstruction is sent as the system role where the provider supports one
const SystemInstruction = "You are a spam detection system for a website contact form. Respond only with JSON."

const screeningFormat = `You are a spam detection system. Analyze the following contact form submission and determine if it's spam.
Respond with a JSON object containing:
- is_spam: boolean (true if spam, false if not)
- score: number between 0 and 1 (higher means more likely to be spam)
- confidence: number between 0 and 1 (how confident you are in your assessment)
- explanation: string (brief explanation of why you think it's spam or not)

Submission:
Name: %s
Email: %s
Message:
%s

Respond only with the JSON object and nothing else.`

// Verdict represents the structured response from the LLM
type Verdict struct {
	IsSpam      bool    `json:"is_spam"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// Format renders the screening prompt. body is the already processed message text.
func Format(sub core.Submission, body string) string {
	return fmt.Sprintf(screeningFormat, sub.Name, sub.Email, body)
}

// ParseVerdict decodes the model's answer. Models often wrap the JSON in
// prose or code fences, so the outermost {...} is tried when a direct decode fails.
func ParseVerdict(text string) (*Verdict, error) {
	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return &v, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("failed to extract JSON from LLM response: %q", text)
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &v, nil
}
