package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
		match   bool
	}{
		{"exact", "https://app.example/cb", "https://app.example/cb", true},
		{"exact miss", "https://app.example/cb", "https://app.example/other", false},
		{"trailing wildcard", "https://app.example/*", "https://app.example/cb", true},
		{"wildcard spans slashes", "https://app.example/*", "https://app.example/a/b/c", true},
		{"wildcard matches empty", "https://app.example/*", "https://app.example/", true},
		{"prefix miss", "https://app.example/*", "https://evil.example/cb", false},
		{"leading wildcard", "*://app.example/cb", "https://app.example/cb", true},
		{"inner wildcard", "https://*.example/cb", "https://app.example/cb", true},
		{"inner wildcard miss", "https://*.example/cb", "https://app.example/nope", false},
		{"multiple wildcards", "https://*.example/*", "https://app.example/deep/path", true},
		{"match everything", "*", "anything at all", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := RegisteredService{MatchPattern: tt.pattern}
			assert.Equal(t, tt.match, svc.Matches(tt.url))
		})
	}
}

func TestDisabledModeService(t *testing.T) {
	svc := DisabledModeService()

	assert.True(t, svc.Enabled)
	assert.True(t, svc.SSOEnabled)
	assert.True(t, svc.AllowedToProxy)
	assert.False(t, svc.AnonymousAccess)
	assert.True(t, svc.Matches("https://anything.example/anywhere"))
}
