package cli

import (
	"testing"

	"github.com/evcraddock/suggestion-board/internal/suggestion"
)

func TestFormatPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority suggestion.Priority
		expected string
	}{
		{"unset", suggestion.PriorityUnset, "-"},
		{"high", suggestion.PriorityHigh, "high"},
		{"low", suggestion.PriorityLow, "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatPriority(tt.priority)
			if result != tt.expected {
				t.Errorf("formatPriority(%q) = %q, want %q", tt.priority, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
		{"multibyte", "скамейки в парке", 8, "скаме..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}
