package controller

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := 64

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := SanitizeInput(input, limit)
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("SanitizeInput() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else if err != nil {
				t.Errorf("SanitizeInput() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeInput_DefaultLimit(t *testing.T) {
	if _, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize), 0); err != nil {
		t.Errorf("Unexpected error at the default limit: %v", err)
	}
	if _, err := SanitizeInput(strings.Repeat("a", DefaultMaxInputSize+1), 0); err == nil {
		t.Error("Expected error over the default limit")
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", `"Hello World"`, `"Hello World"`},
		{"Safe Controls", "[1,\n\t2]", "[1,\n\t2]"},
		{"ANSI Code", "\x1b[31m42\x1b[0m", "[31m42[0m"},
		{"Null Byte", "4\x002", "42"},
		{"Bell", "true\x07", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input, 0)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	if _, err := SanitizeInput("\xff\xfe", 0); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}
