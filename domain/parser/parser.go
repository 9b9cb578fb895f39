// Package parser converts structured outline text into typed artifact
// nodes and directed reference links, and keeps links consistent with
// the node set as artifacts come and go.
package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"semcanvas/domain/config"
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
)

// timeZero keeps parsed nodes free of wall-clock noise; parsing is
// deterministic and repository data carries the real timestamps.
var timeZero time.Time

var (
	// A category header is a single word, letters only (accented Latin
	// included), alone on its line.
	headerPattern = regexp.MustCompile(`^\p{L}+$`)

	// An item is "<indent> - <name>: <description>". The name runs up to
	// the first colon.
	itemPattern = regexp.MustCompile(`^\s*-\s+([^:]+):(.*)$`)

	// A reference token is '@' followed by a maximal run of letters,
	// digits and hyphens.
	referencePattern = regexp.MustCompile(`@([\p{L}\p{N}-]+)`)
)

// Document is the result of a parse pass: typed nodes (explicit
// definitions first in file order, then reference placeholders in
// first-seen order) and validated links in emission order.
type Document struct {
	Nodes []*entities.Artifact
	Links []*entities.Relationship
}

// Parser extracts artifacts and references from outline text
type Parser struct {
	cfg *config.DomainConfig
}

// New creates a parser bound to a domain configuration
func New(cfg *config.DomainConfig) *Parser {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Parser{cfg: cfg}
}

// definition is one successfully parsed item line
type definition struct {
	id          string
	name        string
	artType     valueobjects.ArtifactType
	description string
}

// Parse converts raw outline text into nodes and links. It is pure and
// total: malformed lines produce no node, never an error.
func (p *Parser) Parse(text string) Document {
	lines := strings.Split(text, "\n")

	var (
		defs            []definition
		defIndex        = map[string]int{} // id -> index in defs, last definition wins
		currentCategory valueobjects.ArtifactType
		haveCategory    bool
		refOrder        []string
		refSeen         = map[string]bool{}
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if headerPattern.MatchString(trimmed) {
			if typeName, ok := p.cfg.Categories[trimmed]; ok {
				currentCategory = valueobjects.ArtifactType(typeName)
				haveCategory = true
				continue
			}
		}

		m := itemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		description := strings.TrimSpace(m[2])

		// Reference tokens count even on lines that produce no node,
		// so mentions ahead of any definition still get placeholders.
		for _, ref := range referencePattern.FindAllStringSubmatch(description, -1) {
			if id := ref[1]; !refSeen[id] {
				refSeen[id] = true
				refOrder = append(refOrder, id)
			}
		}

		if !haveCategory || name == "" {
			continue
		}

		id := valueobjects.StripWhitespace(name)
		if id == "" {
			continue
		}

		def := definition{
			id:          id,
			name:        name,
			artType:     currentCategory,
			description: description,
		}
		if at, dup := defIndex[id]; dup {
			// Last definition wins; the earlier line keeps its slot so
			// file order stays stable, but its content is replaced and
			// it is not rendered as a second node.
			defs[at] = def
		} else {
			defIndex[id] = len(defs)
			defs = append(defs, def)
		}
	}

	doc := Document{}
	nodeByID := make(map[string]*entities.Artifact, len(defs))

	for _, def := range defs {
		node := p.buildNode(def)
		if node == nil {
			continue
		}
		nodeByID[def.id] = node
		doc.Nodes = append(doc.Nodes, node)
	}

	for _, id := range refOrder {
		if _, defined := nodeByID[id]; defined {
			continue
		}
		placeholder, err := entities.NewReferencePlaceholder(id)
		if err != nil {
			continue
		}
		placeholder.ApplyDefaultVisual(p.cfg)
		nodeByID[id] = placeholder
		doc.Nodes = append(doc.Nodes, placeholder)
	}

	// Second pass: emit one link per resolvable definer -> mention pair.
	linkSeen := map[string]bool{}
	for _, def := range defs {
		definer, ok := nodeByID[def.id]
		if !ok {
			continue
		}
		for _, ref := range referencePattern.FindAllStringSubmatch(def.description, -1) {
			target, ok := nodeByID[ref[1]]
			if !ok {
				continue
			}
			link, err := entities.NewRelationship(definer.ID(), target.ID(), p.cfg)
			if err != nil {
				continue // self-references and other invalid pairs
			}
			if linkSeen[link.ID()] {
				continue
			}
			linkSeen[link.ID()] = true
			doc.Links = append(doc.Links, link)
		}
	}

	return doc
}

// buildNode turns a definition into an artifact, or nil when the name
// cannot form a valid artifact (the line is then treated as malformed)
func (p *Parser) buildNode(def definition) *entities.Artifact {
	id, err := valueobjects.NewArtifactIDFromString(def.id)
	if err != nil {
		return nil
	}
	name, err := valueobjects.NewArtifactNameWithConfig(def.name, p.cfg)
	if err != nil {
		return nil
	}

	node, err := entities.ReconstructArtifact(
		id,
		name,
		def.artType,
		valueobjects.RawDescription(def.description),
		valueobjects.Position{},
		entities.VisualProperties{},
		timeZero, timeZero,
	)
	if err != nil {
		return nil
	}
	node.ApplyDefaultVisual(p.cfg)
	return node
}

// ReferenceIDs returns the distinct @id tokens in a description, in
// first-seen order
func ReferenceIDs(description string) []string {
	var (
		ids  []string
		seen = map[string]bool{}
	)
	for _, m := range referencePattern.FindAllStringSubmatch(description, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	return ids
}

// IsReferenceRune reports whether a rune may appear in an @id token
func IsReferenceRune(r rune) bool {
	return r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
