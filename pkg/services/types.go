package services

import (
	"strings"
	"time"
)

// RegisteredService is one registry entry: a client application permitted to
// use the authority, and the policy flags governing how. Entries are passed
// by value everywhere, so a caller holding a lookup result can never mutate
// registry state through it.
type RegisteredService struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	MatchPattern    string    `json:"match_pattern"`
	Enabled         bool      `json:"enabled"`
	AllowedToProxy  bool      `json:"allowed_to_proxy"`
	SSOEnabled      bool      `json:"sso_enabled"`
	AnonymousAccess bool      `json:"anonymous_access"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Matches reports whether serviceURL falls under this entry's pattern.
// Patterns are glob-style: `*` matches any run of characters, including `/`.
// Overlapping patterns across entries are a configuration hazard; the
// registry resolves them by first match, with no defined priority.
func (s RegisteredService) Matches(serviceURL string) bool {
	return matchGlob(s.MatchPattern, serviceURL)
}

func matchGlob(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

// DisabledModeService is the synthetic definition returned while the
// registry holds zero entries: every service is implicitly permitted, SSO
// and proxying enabled, anonymous access off.
func DisabledModeService() RegisteredService {
	return RegisteredService{
		Name:            "disabled-mode",
		MatchPattern:    "*",
		Enabled:         true,
		AllowedToProxy:  true,
		SSOEnabled:      true,
		AnonymousAccess: false,
	}
}
