package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"semcanvas/domain/config"
	pkgerrors "semcanvas/pkg/errors"
)

// ArtifactName is a value object for an artifact's display label
type ArtifactName struct {
	value string
}

// NewArtifactName creates a name with validation using default configuration
func NewArtifactName(name string) (ArtifactName, error) {
	return NewArtifactNameWithConfig(name, config.DefaultDomainConfig())
}

// NewArtifactNameWithConfig creates a name with validation and configuration
func NewArtifactNameWithConfig(name string, cfg *config.DomainConfig) (ArtifactName, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ArtifactName{}, pkgerrors.NewValidationError("name cannot be empty")
	}

	length := utf8.RuneCountInString(name)
	if length < cfg.MinNameLength {
		return ArtifactName{}, pkgerrors.NewValidationError(
			fmt.Sprintf("name too short: minimum %d characters required", cfg.MinNameLength))
	}
	if length > cfg.MaxNameLength {
		return ArtifactName{}, pkgerrors.NewValidationError(
			fmt.Sprintf("name too long: maximum %d characters allowed", cfg.MaxNameLength))
	}

	return ArtifactName{value: name}, nil
}

// RawName wraps a label without validation. It exists for repository
// rehydration; user input always goes through NewArtifactNameWithConfig.
func RawName(name string) ArtifactName {
	return ArtifactName{value: name}
}

// String returns the name text
func (n ArtifactName) String() string {
	return n.value
}

// Equals checks two names for equality
func (n ArtifactName) Equals(other ArtifactName) bool {
	return n.value == other.value
}

// EqualsFold checks two names for case-insensitive equality, which is
// the uniqueness rule for committed artifacts
func (n ArtifactName) EqualsFold(other ArtifactName) bool {
	return strings.EqualFold(n.value, other.value)
}

// IsZero checks if the name is the zero value
func (n ArtifactName) IsZero() bool {
	return n.value == ""
}
