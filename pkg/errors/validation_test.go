package errors

import (
	"strings"
	"testing"
)

func TestValidateStep(t *testing.T) {
	tests := []struct {
		step    int
		wantErr bool
	}{
		{1, false},
		{8, false},
		{1 << 20, false},
		{0, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := ValidateStep(tt.step)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStep(%d) error = %v, wantErr %v", tt.step, err, tt.wantErr)
		}
		if err != nil && !IsInvalidConfiguration(err) {
			t.Errorf("ValidateStep(%d) code = %v, want %v", tt.step, GetCode(err), ErrCodeInvalidConfiguration)
		}
	}
}

func TestValidateStepRange(t *testing.T) {
	tests := []struct {
		name          string
		step          int
		width, height int
		ratio         float64
		wantErr       bool
	}{
		{"ratio disabled allows large step", 5000, 100, 100, 0, false},
		{"within 2 percent", 20, 1000, 400, 0.02, false},
		{"above 2 percent", 21, 1000, 400, 0.02, true},
		{"uses larger side", 20, 400, 1000, 0.02, false},
		{"tiny image rejects everything", 1, 10, 10, 0.02, true},
		{"zero step", 0, 100, 100, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStepRange(tt.step, tt.width, tt.height, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStepRange() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStepRangeMessage(t *testing.T) {
	err := ValidateStepRange(30, 1000, 200, 0.02)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1 <= step <= 20") {
		t.Errorf("error should name the allowed range, got %q", err.Error())
	}
}

func TestValidateImagePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "images/cat.png", false},
		{"absolute", "/tmp/cat.jpg", false},
		{"with spaces", "my photos/cat.png", false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"null byte", "cat\x00.png", true},
		{"newline", "cat\n.png", true},
		{"too long", strings.Repeat("a", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImagePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImagePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
