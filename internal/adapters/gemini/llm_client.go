package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/contact-relay/internal/adapters/prompt"
	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ContentGenerator is the subset of *genai.GenerativeModel the screener uses
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         ContentGenerator
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(prompt.SystemInstruction))

	c := NewGeminiClientWithModel(model, modelName, maxBodySize, logger, textProcessor)
	c.client = client
	return c, nil
}

// NewGeminiClientWithModel wraps an already configured model
func NewGeminiClientWithModel(
	model ContentGenerator,
	modelName string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClient {
	return &GeminiClient{
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// AnalyzeSubmission asks Gemini whether a submission is spam
func (c *GeminiClient) AnalyzeSubmission(ctx context.Context, sub core.Submission) (*core.ScreeningResult, error) {
	body := c.textProcessor.ProcessText(sub.Message, c.maxBodySize)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt.Format(sub, body)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	verdict, err := prompt.ParseVerdict(text.String())
	if err != nil {
		return nil, err
	}

	return &core.ScreeningResult{
		IsSpam:      verdict.IsSpam,
		Score:       verdict.Score,
		Confidence:  verdict.Confidence,
		Explanation: verdict.Explanation,
		AnalyzedAt:  time.Now(),
		ModelUsed:   c.modelName,
	}, nil
}
