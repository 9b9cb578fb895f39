package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"semcanvas/domain/config"
	pkgerrors "semcanvas/pkg/errors"
)

// Description is a value object for an artifact's free-text description.
// An empty description is valid (drafts accumulate text over time); once
// present it must satisfy the configured length bounds.
type Description struct {
	value string
}

// NewDescription creates a description with validation using default configuration
func NewDescription(text string) (Description, error) {
	return NewDescriptionWithConfig(text, config.DefaultDomainConfig())
}

// NewDescriptionWithConfig creates a description with validation and configuration
func NewDescriptionWithConfig(text string, cfg *config.DomainConfig) (Description, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Description{}, nil
	}

	length := utf8.RuneCountInString(text)
	if length < cfg.MinDescriptionLength {
		return Description{}, pkgerrors.NewValidationError(
			fmt.Sprintf("description too short: minimum %d characters required", cfg.MinDescriptionLength))
	}
	if length > cfg.MaxDescriptionLength {
		return Description{}, pkgerrors.NewValidationError(
			fmt.Sprintf("description too long: maximum %d characters allowed", cfg.MaxDescriptionLength))
	}

	return Description{value: text}, nil
}

// RawDescription wraps text without validation. It exists for the parser
// and repository rehydration, which must stay total over data that was
// authored outside the editor's validation path.
func RawDescription(text string) Description {
	return Description{value: strings.TrimSpace(text)}
}

// String returns the description text
func (d Description) String() string {
	return d.value
}

// IsEmpty reports whether the description has no text
func (d Description) IsEmpty() bool {
	return d.value == ""
}

// Equals checks two descriptions for equality
func (d Description) Equals(other Description) bool {
	return d.value == other.value
}
