package valueobjects

import "fmt"

// ArtifactType classifies a semantic artifact.
// The enumeration is closed; TypeReference is reserved for placeholders
// materialized from unresolved @id mentions.
type ArtifactType string

const (
	TypePurpose     ArtifactType = "purpose"
	TypeVision      ArtifactType = "vision"
	TypePolicy      ArtifactType = "policy"
	TypePrinciple   ArtifactType = "principle"
	TypeGuideline   ArtifactType = "guideline"
	TypeContext     ArtifactType = "context"
	TypeActor       ArtifactType = "actor"
	TypeConcept     ArtifactType = "concept"
	TypeProcess     ArtifactType = "process"
	TypeProcedure   ArtifactType = "procedure"
	TypeEvent       ArtifactType = "event"
	TypeResult      ArtifactType = "result"
	TypeObservation ArtifactType = "observation"
	TypeEvaluation  ArtifactType = "evaluation"
	TypeIndicator   ArtifactType = "indicator"
	TypeArea        ArtifactType = "area"
	TypeAuthority   ArtifactType = "authority"
	TypeReference   ArtifactType = "reference"
)

var artifactTypes = map[ArtifactType]struct{}{
	TypePurpose: {}, TypeVision: {}, TypePolicy: {}, TypePrinciple: {},
	TypeGuideline: {}, TypeContext: {}, TypeActor: {}, TypeConcept: {},
	TypeProcess: {}, TypeProcedure: {}, TypeEvent: {}, TypeResult: {},
	TypeObservation: {}, TypeEvaluation: {}, TypeIndicator: {}, TypeArea: {},
	TypeAuthority: {}, TypeReference: {},
}

// ParseArtifactType validates a string against the closed enumeration
func ParseArtifactType(s string) (ArtifactType, error) {
	t := ArtifactType(s)
	if _, ok := artifactTypes[t]; !ok {
		return "", fmt.Errorf("unknown artifact type %q", s)
	}
	return t, nil
}

// String returns the string representation of the type
func (t ArtifactType) String() string {
	return string(t)
}

// IsReference reports whether the type marks an auto-materialized placeholder
func (t ArtifactType) IsReference() bool {
	return t == TypeReference
}

// IsValid reports whether the type belongs to the enumeration
func (t ArtifactType) IsValid() bool {
	_, ok := artifactTypes[t]
	return ok
}
