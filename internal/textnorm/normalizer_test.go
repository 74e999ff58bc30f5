package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	n := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "lowercases",
			input:    "Feeling REALLY Overwhelmed",
			expected: "feeling really overwhelmed",
		},
		{
			name:     "strips urls",
			input:    "need help https://example.com/post now",
			expected: "need help",
		},
		{
			name:     "strips www urls",
			input:    "see www.example.com for details",
			expected: "see details",
		},
		{
			name:     "strips numbers and symbols keeps punctuation",
			input:    "call 911 @me #crisis help!",
			expected: "call crisis help!",
		},
		{
			name:     "drops stopwords",
			input:    "I am struggling with my anxiety",
			expected: "struggling anxiety",
		},
		{
			name:     "drops social media noise tokens",
			input:    "rt need support",
			expected: "need support",
		},
		{
			name:     "collapses whitespace",
			input:    "feeling   hopeless \t today",
			expected: "feeling hopeless today",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New()

	inputs := []string{
		"",
		"Feeling REALLY overwhelmed today!! 😢 https://t.co/abc123",
		"RT @user: I can't cope anymore... www.example.com",
		"struggling with anxiety in Chicago City",
		"평범한 non-latin text £$%^",
		"  leading and trailing   ",
	}

	for _, input := range inputs {
		once := n.Normalize(input)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeRemovesEmoji(t *testing.T) {
	n := New()

	got := n.Normalize("feeling hopeless 😢💔 today")
	if got != "feeling hopeless today" {
		t.Errorf("Normalize() = %q, want %q", got, "feeling hopeless today")
	}
}
