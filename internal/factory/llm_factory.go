package factory

import (
	"fmt"

	"github.com/mikey/contact-relay/internal/adapters/bedrock"
	"github.com/mikey/contact-relay/internal/adapters/gemini"
	"github.com/mikey/contact-relay/internal/adapters/openai"
	"github.com/mikey/contact-relay/internal/config"
	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/utils"
	"github.com/mikey/contact-relay/internal/whitelist"
	"go.uber.org/zap"
)

// LLMFactory creates LLM clients and the screener built on them
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateLLMClient creates a new LLM client based on the configuration
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	provider := f.cfg.GetScreening().Provider

	switch provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateLLMClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateLLMClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateLLMClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateScreener returns nil when screening is disabled
func (f *LLMFactory) CreateScreener() (core.Screener, error) {
	screeningCfg := f.cfg.GetScreening()
	if !screeningCfg.Enabled {
		return nil, nil
	}

	llmClient, err := f.CreateLLMClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	f.logger.Info("Spam screening enabled",
		zap.String("provider", screeningCfg.Provider),
		zap.Float64("threshold", screeningCfg.Threshold))

	return core.NewScreeningService(
		llmClient,
		whitelist.NewChecker(screeningCfg.WhitelistedDomains, f.logger),
		screeningCfg.Threshold,
		f.logger,
	), nil
}

// SubjectPrefix returns the prefix for screened spam, or "" when screening is off
func (f *LLMFactory) SubjectPrefix() string {
	screeningCfg := f.cfg.GetScreening()
	if !screeningCfg.Enabled {
		return ""
	}
	return screeningCfg.SubjectPrefix
}
