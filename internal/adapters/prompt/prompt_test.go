package prompt

import (
	"testing"

	"github.com/mikey/contact-relay/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	p := Format(core.Submission{Name: "Ann", Email: "ann@x.com", Message: "ignored"}, "hi")
	assert.Contains(t, p, "Name: Ann")
	assert.Contains(t, p, "Email: ann@x.com")
	assert.Contains(t, p, "Message:\nhi")
	assert.NotContains(t, p, "ignored")
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    *Verdict
		wantErr bool
	}{
		{
			name: "plain json",
			text: `{"is_spam":true,"score":0.9,"confidence":0.8,"explanation":"crypto offer"}`,
			want: &Verdict{IsSpam: true, Score: 0.9, Confidence: 0.8, Explanation: "crypto offer"},
		},
		{
			name: "fenced json",
			text: "Sure!\n```json\n{\"is_spam\":false,\"score\":0.1,\"confidence\":0.9,\"explanation\":\"genuine\"}\n```",
			want: &Verdict{IsSpam: false, Score: 0.1, Confidence: 0.9, Explanation: "genuine"},
		},
		{name: "no json", text: "I cannot help with that", wantErr: true},
		{name: "broken json", text: "{is_spam: maybe}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
