package core

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/contact-relay/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLLM struct {
	calls  int
	result *ScreeningResult
	err    error
}

func (f *fakeLLM) AnalyzeSubmission(_ context.Context, _ Submission) (*ScreeningResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	return &r, nil
}

func TestScreen_ThresholdDecides(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		modelSay bool
		want     bool
	}{
		{"above threshold", 0.9, false, true},
		{"at threshold", 0.7, false, true},
		{"below threshold", 0.4, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{result: &ScreeningResult{IsSpam: tt.modelSay, Score: tt.score, ModelUsed: "gpt-4"}}
			s := NewScreeningService(llm, nil, 0.7, zap.NewNop())

			result, err := s.Screen(context.Background(), ann)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.IsSpam)
			assert.Equal(t, 1, llm.calls)
		})
	}
}

func TestScreen_WhitelistBypass(t *testing.T) {
	llm := &fakeLLM{result: &ScreeningResult{Score: 1}}
	checker := whitelist.NewChecker([]string{"x.com"}, zap.NewNop())
	s := NewScreeningService(llm, checker, 0.7, zap.NewNop())

	result, err := s.Screen(context.Background(), ann)
	require.NoError(t, err)
	assert.False(t, result.IsSpam)
	assert.Equal(t, "whitelist", result.ModelUsed)
	assert.Zero(t, llm.calls)
}

func TestScreen_PropagatesError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("boom")}
	s := NewScreeningService(llm, whitelist.NewChecker(nil, nil), 0.7, zap.NewNop())

	_, err := s.Screen(context.Background(), ann)
	assert.EqualError(t, err, "boom")
}

type closingLLM struct {
	fakeLLM
	closed bool
}

func (c *closingLLM) Close() error {
	c.closed = true
	return nil
}

func TestScreeningService_Close(t *testing.T) {
	llm := &closingLLM{}
	require.NoError(t, NewScreeningService(llm, nil, 0.7, zap.NewNop()).Close())
	assert.True(t, llm.closed)

	assert.NoError(t, NewScreeningService(&fakeLLM{}, nil, 0.7, zap.NewNop()).Close())
}
