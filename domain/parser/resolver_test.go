package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semcanvas/domain/core/entities"
)

func TestResolveLinksFiltersDanglingEdges(t *testing.T) {
	p := New(nil)
	doc := p.Parse(sampleOutline)
	require.NotEmpty(t, doc.Links)

	// Delete the Artefacto node; every link touching it must disappear
	// without a re-parse.
	var survivors []*entities.Artifact
	for _, n := range doc.Nodes {
		if n.ID().String() != "Artefacto" {
			survivors = append(survivors, n)
		}
	}

	valid := ResolveLinks(survivors, doc.Links)
	for _, l := range valid {
		assert.NotEqual(t, "Artefacto", l.SourceID().String())
		assert.NotEqual(t, "Artefacto", l.TargetID().String())
	}
	assert.Less(t, len(valid), len(doc.Links))
}

func TestResolveLinksKeepsValidEdges(t *testing.T) {
	p := New(nil)
	doc := p.Parse(sampleOutline)

	valid := ResolveLinks(doc.Nodes, doc.Links)
	assert.Equal(t, len(doc.Links), len(valid))
}

func TestDanglingReferencesReportsPlaceholders(t *testing.T) {
	p := New(nil)
	doc := p.Parse(sampleOutline)

	dangling := DanglingReferences(doc.Nodes, doc.Links)
	assert.Contains(t, dangling, "Consejo")
	// Artefacto is explicitly defined, so it is not dangling.
	assert.NotContains(t, dangling, "Artefacto")
	assert.NotContains(t, dangling, "Propósito")
}
