package config

import "time"

// DomainConfig holds all configurable business rules and constraints.
// It is built once and passed in; nothing in the domain mutates it after
// construction, so a runtime-replaceable copy can live in a single state
// container without hidden coupling between components.
type DomainConfig struct {
	// Artifact constraints
	MinNameLength        int
	MaxNameLength        int
	MinDescriptionLength int
	MaxDescriptionLength int
	RequireUniqueNames   bool

	// Relationship constraints
	MaxRelationshipWeight     float64
	MinRelationshipWeight     float64
	DefaultRelationshipWeight float64
	DefaultRelationshipType   string

	// Parser settings
	Categories map[string]string // outline header -> artifact type
	Sections   map[string]string // artifact type -> canonical header

	// Autocomplete settings
	TriggerLookback int // characters scanned backward for '@'
	MaxCandidates   int

	// Interaction settings
	DragGraceDelay        time.Duration
	PostDragSuppression   time.Duration
	PostSelectSuppression time.Duration
	MoveThresholdPx       float64
	HitRadiusPx           float64

	// Render hints
	Colors       map[string]string // artifact type -> hex color
	DefaultColor string
	NodeRadiusPx float64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinNameLength:        2,
		MaxNameLength:        100,
		MinDescriptionLength: 10,
		MaxDescriptionLength: 1000,
		RequireUniqueNames:   true,

		MaxRelationshipWeight:     1.0,
		MinRelationshipWeight:     0.0,
		DefaultRelationshipWeight: 0.5,
		DefaultRelationshipType:   "references",

		Categories: defaultCategories(),
		Sections:   defaultSections(),

		TriggerLookback: 30,
		MaxCandidates:   10,

		DragGraceDelay:        120 * time.Millisecond,
		PostDragSuppression:   250 * time.Millisecond,
		PostSelectSuppression: 600 * time.Millisecond,
		MoveThresholdPx:       6,
		HitRadiusPx:           28,

		Colors:       defaultColors(),
		DefaultColor: "#9e9e9e",
		NodeRadiusPx: 28,
	}
}

// defaultCategories maps outline section headers onto artifact types.
// Spanish headers are the canonical ones; English plurals are accepted
// as aliases so mixed documents still parse.
func defaultCategories() map[string]string {
	return map[string]string{
		"Propósitos":     "purpose",
		"Visiones":       "vision",
		"Políticas":      "policy",
		"Principios":     "principle",
		"Directrices":    "guideline",
		"Contextos":      "context",
		"Actores":        "actor",
		"Conceptos":      "concept",
		"Procesos":       "process",
		"Procedimientos": "procedure",
		"Eventos":        "event",
		"Resultados":     "result",
		"Observaciones":  "observation",
		"Evaluaciones":   "evaluation",
		"Indicadores":    "indicator",
		"Áreas":          "area",
		"Autoridades":    "authority",

		"Purposes":     "purpose",
		"Visions":      "vision",
		"Policies":     "policy",
		"Principles":   "principle",
		"Guidelines":   "guideline",
		"Contexts":     "context",
		"Actors":       "actor",
		"Concepts":     "concept",
		"Processes":    "process",
		"Procedures":   "procedure",
		"Events":       "event",
		"Results":      "result",
		"Observations": "observation",
		"Evaluations":  "evaluation",
		"Indicators":   "indicator",
		"Areas":        "area",
		"Authorities":  "authority",
	}
}

// defaultSections maps each artifact type to the header used when the
// outline writer has to create a section for it.
func defaultSections() map[string]string {
	return map[string]string{
		"purpose":     "Propósitos",
		"vision":      "Visiones",
		"policy":      "Políticas",
		"principle":   "Principios",
		"guideline":   "Directrices",
		"context":     "Contextos",
		"actor":       "Actores",
		"concept":     "Conceptos",
		"process":     "Procesos",
		"procedure":   "Procedimientos",
		"event":       "Eventos",
		"result":      "Resultados",
		"observation": "Observaciones",
		"evaluation":  "Evaluaciones",
		"indicator":   "Indicadores",
		"area":        "Áreas",
		"authority":   "Autoridades",
	}
}

func defaultColors() map[string]string {
	return map[string]string{
		"purpose":     "#7e57c2",
		"vision":      "#5c6bc0",
		"policy":      "#42a5f5",
		"principle":   "#29b6f6",
		"guideline":   "#26c6da",
		"context":     "#26a69a",
		"actor":       "#66bb6a",
		"concept":     "#9ccc65",
		"process":     "#d4e157",
		"procedure":   "#ffee58",
		"event":       "#ffca28",
		"result":      "#ffa726",
		"observation": "#ff7043",
		"evaluation":  "#8d6e63",
		"indicator":   "#78909c",
		"area":        "#ec407a",
		"authority":   "#ab47bc",
		"reference":   "#bdbdbd",
	}
}
