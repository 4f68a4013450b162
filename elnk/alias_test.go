package elnk

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlias(t *testing.T) {
	tests := []struct {
		name    string
		opts    AliasOptions
		wantLen int
		pattern *regexp.Regexp
	}{
		{
			name:    "defaults",
			opts:    DefaultAliasOptions(),
			wantLen: 8,
			pattern: regexp.MustCompile(`^[a-zA-Z0-9]+$`),
		},
		{
			name:    "custom length",
			opts:    AliasOptions{Length: 12, Numbers: true},
			wantLen: 12,
			pattern: regexp.MustCompile(`^[a-zA-Z0-9]+$`),
		},
		{
			name:    "letters only",
			opts:    AliasOptions{Length: 10},
			wantLen: 10,
			pattern: regexp.MustCompile(`^[a-zA-Z]+$`),
		},
		{
			name:    "with special characters",
			opts:    AliasOptions{Length: 64, Numbers: true, Special: true},
			wantLen: 64,
			pattern: regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),
		},
		{
			name:    "zero length is empty",
			opts:    AliasOptions{Numbers: true},
			wantLen: 0,
			pattern: regexp.MustCompile(`^$`),
		},
		{
			name:    "single character",
			opts:    AliasOptions{Length: 1, Numbers: true},
			wantLen: 1,
			pattern: regexp.MustCompile(`^[a-zA-Z0-9]$`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 20 {
				alias, err := GenerateAlias(tt.opts)
				require.NoError(t, err)
				assert.Len(t, alias, tt.wantLen)
				assert.Regexp(t, tt.pattern, alias)
			}
		})
	}
}

func TestGenerateAliasNegativeLength(t *testing.T) {
	alias, err := GenerateAlias(AliasOptions{Length: -1, Numbers: true})
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, alias)
}

func TestGenerateAliasIsRandom(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		alias, err := GenerateAlias(DefaultAliasOptions())
		require.NoError(t, err)
		seen[alias] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}

func TestAliasCharset(t *testing.T) {
	assert.Len(t, AliasOptions{}.Charset(), 52)
	assert.Len(t, AliasOptions{Numbers: true}.Charset(), 62)
	assert.Len(t, AliasOptions{Numbers: true, Special: true}.Charset(), 64)
}
