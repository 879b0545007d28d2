package errors

import (
	"strings"
	"unicode"
)

// ValidateStep checks that a strip step is a positive integer.
func ValidateStep(step int) error {
	if step < 1 {
		return New(ErrCodeInvalidConfiguration, "step must be a positive integer, got %d", step)
	}
	return nil
}

// ValidateStepRange checks step against a ceiling derived from the image size.
//
// The ceiling is int(max(width, height) * ratio). A ratio of zero or less
// disables the ceiling, leaving only the lower bound of 1. A ceiling below 1
// rejects every step, matching the behavior of the original tool on tiny
// images.
func ValidateStepRange(step, width, height int, ratio float64) error {
	if err := ValidateStep(step); err != nil {
		return err
	}
	if ratio <= 0 {
		return nil
	}
	limit := int(float64(max(width, height)) * ratio)
	if step > limit {
		return New(ErrCodeInvalidConfiguration,
			"step is not within the allowed range: 1 <= step <= %d, provided step: %d", limit, step)
	}
	return nil
}

// ValidateImagePath validates an image path supplied by configuration.
//
// Validation rules:
//   - Path cannot be empty or whitespace
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateImagePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidConfiguration, "image_path is required")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
