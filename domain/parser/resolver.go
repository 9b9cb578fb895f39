package parser

import (
	"semcanvas/domain/core/entities"
	"semcanvas/domain/core/valueobjects"
)

// ResolveLinks filters links down to those whose source and target both
// still exist in the node set. It runs before every render so a deleted
// endpoint can never leave a dangling edge on screen, and it can be
// called without re-parsing.
func ResolveLinks(nodes []*entities.Artifact, links []*entities.Relationship) []*entities.Relationship {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID().String()] = true
	}

	valid := make([]*entities.Relationship, 0, len(links))
	for _, l := range links {
		if present[l.SourceID().String()] && present[l.TargetID().String()] {
			valid = append(valid, l)
		}
	}
	return valid
}

// DanglingReferences returns the ids of reference placeholders plus any
// link endpoints that resolve to nothing. Feeds the coherence report.
func DanglingReferences(nodes []*entities.Artifact, links []*entities.Relationship) []string {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID().String()] = true
	}

	var (
		ids  []string
		seen = map[string]bool{}
	)
	record := func(id valueobjects.ArtifactID) {
		s := id.String()
		if !present[s] && !seen[s] {
			seen[s] = true
			ids = append(ids, s)
		}
	}
	for _, n := range nodes {
		if n.IsReference() && !seen[n.ID().String()] {
			seen[n.ID().String()] = true
			ids = append(ids, n.ID().String())
		}
	}
	for _, l := range links {
		record(l.SourceID())
		record(l.TargetID())
	}
	return ids
}
