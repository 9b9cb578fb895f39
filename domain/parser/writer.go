package parser

import (
	"strings"

	"semcanvas/domain/config"
	"semcanvas/domain/core/valueobjects"
)

// Writer mutates outline text in ways that keep it parseable: today that
// is inserting a newly spawned artifact into its category section.
type Writer struct {
	cfg *config.DomainConfig
}

// NewWriter creates a writer bound to a domain configuration
func NewWriter(cfg *config.DomainConfig) *Writer {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Writer{cfg: cfg}
}

// InsertArtifact appends "  - name: description" under the section for
// the given type, creating the section at the end of the text when it is
// absent. The result always re-parses to a superset of the input.
func (w *Writer) InsertArtifact(text, name, description string, artType valueobjects.ArtifactType) string {
	header := w.sectionHeader(artType)
	item := "  - " + name + ": " + description

	lines := strings.Split(text, "\n")
	sectionAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == header {
			sectionAt = i
			break
		}
	}

	if sectionAt < 0 {
		out := strings.TrimRight(text, "\n")
		if out != "" {
			out += "\n\n"
		}
		return out + header + "\n" + item + "\n"
	}

	// Insert after the section's last item so ordering reads naturally.
	insertAt := sectionAt + 1
	for insertAt < len(lines) && itemPattern.MatchString(lines[insertAt]) {
		insertAt++
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:insertAt]...)
	out = append(out, item)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

// sectionHeader resolves the canonical header for a type, falling back
// to the concept section for anything without one (reference included)
func (w *Writer) sectionHeader(artType valueobjects.ArtifactType) string {
	if h, ok := w.cfg.Sections[artType.String()]; ok {
		return h
	}
	return w.cfg.Sections[valueobjects.TypeConcept.String()]
}
