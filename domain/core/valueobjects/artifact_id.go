package valueobjects

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// temporalPrefix namespaces draft identifiers away from permanent ones.
// A permanent id can never start with it, so the two collections cannot
// collide even after a draft is promoted.
const temporalPrefix = "tmp-"

// ArtifactID is a value object identifying a committed artifact.
// It is derived from the artifact name with all whitespace removed,
// which is also how @reference tokens address artifacts in outline text.
type ArtifactID struct {
	value string
}

// NewArtifactIDFromName derives an ArtifactID from a display name
func NewArtifactIDFromName(name string) (ArtifactID, error) {
	id := StripWhitespace(name)
	if id == "" {
		return ArtifactID{}, errors.New("artifact ID cannot be empty")
	}
	if strings.HasPrefix(id, temporalPrefix) {
		return ArtifactID{}, errors.New("artifact ID cannot use the temporal prefix")
	}
	return ArtifactID{value: id}, nil
}

// NewArtifactIDFromString wraps an existing identifier
func NewArtifactIDFromString(id string) (ArtifactID, error) {
	if id == "" {
		return ArtifactID{}, errors.New("artifact ID cannot be empty")
	}
	if strings.HasPrefix(id, temporalPrefix) {
		return ArtifactID{}, errors.New("artifact ID cannot use the temporal prefix")
	}
	return ArtifactID{value: id}, nil
}

// String returns the string representation of the ArtifactID
func (id ArtifactID) String() string {
	return id.value
}

// Equals checks if two ArtifactIDs are equal
func (id ArtifactID) Equals(other ArtifactID) bool {
	return id.value == other.value
}

// IsZero checks if the ArtifactID is the zero value
func (id ArtifactID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ArtifactID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ArtifactID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ArtifactID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// TemporalID identifies an uncommitted draft artifact
type TemporalID struct {
	value string
}

// NewTemporalID creates a fresh draft identifier
func NewTemporalID() TemporalID {
	return TemporalID{value: temporalPrefix + uuid.New().String()}
}

// NewTemporalIDFromString wraps an existing draft identifier
func NewTemporalIDFromString(id string) (TemporalID, error) {
	if !strings.HasPrefix(id, temporalPrefix) {
		return TemporalID{}, errors.New("temporal ID must use the temporal prefix")
	}
	return TemporalID{value: id}, nil
}

// String returns the string representation of the TemporalID
func (id TemporalID) String() string {
	return id.value
}

// Equals checks if two TemporalIDs are equal
func (id TemporalID) Equals(other TemporalID) bool {
	return id.value == other.value
}

// IsZero checks if the TemporalID is the zero value
func (id TemporalID) IsZero() bool {
	return id.value == ""
}

// StripWhitespace removes every whitespace rune from a string
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
