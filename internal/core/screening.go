package core

import (
	"context"
	"io"
	"time"

	"github.com/mikey/contact-relay/internal/whitelist"
	"go.uber.org/zap"
)

// ScreeningService asks an LLM whether a submission is spam. It only ever
// informs; submissions are delivered either way.
type ScreeningService struct {
	llmClient LLMClient
	whitelist *whitelist.Checker
	threshold float64
	logger    *zap.Logger
}

// NewScreeningService creates a new screening service
func NewScreeningService(
	llmClient LLMClient,
	checker *whitelist.Checker,
	threshold float64,
	logger *zap.Logger,
) *ScreeningService {
	return &ScreeningService{
		llmClient: llmClient,
		whitelist: checker,
		threshold: threshold,
		logger:    logger,
	}
}

// Screen analyzes a submission. Whitelisted sender domains skip the LLM.
func (s *ScreeningService) Screen(ctx context.Context, sub Submission) (*ScreeningResult, error) {
	if s.whitelist != nil && s.whitelist.IsWhitelisted(sub.Email) {
		s.logger.Info("Skipping screening for whitelisted domain",
			zap.String("sender", sub.Email),
			zap.String("action", "whitelist_bypass"))

		return &ScreeningResult{
			IsSpam:      false,
			Score:       0.0,
			Confidence:  1.0,
			Explanation: "Sender domain is whitelisted",
			AnalyzedAt:  time.Now(),
			ModelUsed:   "whitelist",
		}, nil
	}

	result, err := s.llmClient.AnalyzeSubmission(ctx, sub)
	if err != nil {
		return nil, err
	}

	// The threshold is authoritative over the model's own verdict
	result.IsSpam = result.Score >= s.threshold

	s.logger.Debug("Screened submission",
		zap.String("sender", sub.Email),
		zap.Bool("is_spam", result.IsSpam),
		zap.Float64("score", result.Score),
		zap.String("model", result.ModelUsed))

	return result, nil
}

// Close releases the underlying LLM client if it holds resources
func (s *ScreeningService) Close() error {
	if closer, ok := s.llmClient.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
