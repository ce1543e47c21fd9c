package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "서비스에 대해 평가해주세요",
			expected: "서비스에 대해 평가해주세요",
		},
		{
			name:     "tags removed",
			input:    "<p><b>만족도</b>를 선택하세요</p>",
			expected: "만족도를 선택하세요",
		},
		{
			name:     "br becomes newline",
			input:    "서비스 평가<br>세부 항목",
			expected: "서비스 평가\n세부 항목",
		},
		{
			name:     "entities decoded and spaces collapsed",
			input:    "A&nbsp;&nbsp;B   C &amp; D",
			expected: "A B C & D",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  질문  ",
			expected: "질문",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripMarkup(tt.input))
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "매우 만족", NormalizeKey("  매우 만족  "))
	assert.Equal(t, "agree", NormalizeKey("AGREE"))
}
