package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsChallenge(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		title    string
		expected bool
	}{
		{
			name:     "cloudflare interstitial title",
			content:  "<html><body></body></html>",
			title:    "Just a moment...",
			expected: true,
		},
		{
			name:     "turnstile widget in content",
			content:  `<div class="cf-turnstile" data-sitekey="x"></div>`,
			title:    "Pricing",
			expected: true,
		},
		{
			name:     "challenge frame url in content",
			content:  `<iframe src="https://challenges.cloudflare.com/cdn-cgi/challenge"></iframe>`,
			title:    "",
			expected: true,
		},
		{
			name:     "browser check text",
			content:  "Checking your browser before accessing the site.",
			title:    "",
			expected: true,
		},
		{
			name:     "clean pricing page",
			content:  `<span id="price">$19.99</span>`,
			title:    "Pricing",
			expected: false,
		},
		{
			name:     "empty",
			content:  "",
			title:    "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsChallenge(tt.content, tt.title))
		})
	}
}
