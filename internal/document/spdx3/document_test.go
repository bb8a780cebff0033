package spdx3

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/document/documenttest"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

type node struct {
	Type        string   `json:"type"`
	ID          string   `json:"@id"`
	SpdxID      string   `json:"spdxId"`
	Name        string   `json:"name"`
	Element     []string `json:"element"`
	RootElement []string `json:"rootElement"`
	From        string   `json:"from"`
	To          []string `json:"to"`
	Version     string   `json:"software_packageVersion"`
	Extension   []struct {
		Type     string `json:"type"`
		Property []struct {
			Name  string `json:"extension_cdxPropName"`
			Value string `json:"extension_cdxPropValue"`
		} `json:"extension_cdxProperty"`
	} `json:"extension"`
}

type graph struct {
	Context string `json:"@context"`
	Graph   []node `json:"@graph"`
}

func render(t *testing.T, doc document.Document) graph {
	t.Helper()

	data, err := doc.Marshal()
	require.NoError(t, err)

	var g graph
	require.NoError(t, json.Unmarshal(data, &g))
	return g
}

func sequentialIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("SPDXRef-%d", i)
	}
	return ids
}

func TestFromPackage(t *testing.T) {
	pkg := documenttest.Bash()
	doc, err := NewFactory(documenttest.Options()).FromPackage(pkg, document.EncodingJSONLD)
	require.NoError(t, err)

	g := render(t, doc)
	assert.Equal(t, "https://spdx.org/rdf/3.0.1/spdx-context.jsonld", g.Context)
	require.Len(t, g.Graph, 4)

	assert.Equal(t, "CreationInfo", g.Graph[0].Type)
	assert.Equal(t, "_:creationinfo", g.Graph[0].ID)

	spdxDoc := g.Graph[1]
	assert.Equal(t, "SpdxDocument", spdxDoc.Type)
	assert.Equal(t, "SPDXRef-DOCUMENT", spdxDoc.SpdxID)
	assert.Equal(t, sequentialIDs(2), spdxDoc.Element)
	assert.Equal(t, []string{"SPDXRef-1"}, spdxDoc.RootElement)

	assert.Equal(t, "Organization", g.Graph[2].Type)

	p := g.Graph[3]
	assert.Equal(t, "software_Package", p.Type)
	assert.Equal(t, "5.1.8-6.el9", p.Version)
	require.Len(t, p.Extension, 1)
	assert.Equal(t, "extension_CdxPropertiesExtension", p.Extension[0].Type)

	want := pkg.Properties()
	require.Len(t, p.Extension[0].Property, len(want))
	for i, prop := range want {
		assert.Equal(t, prop.Name, p.Extension[0].Property[i].Name)
		assert.Equal(t, prop.Value, p.Extension[0].Property[i].Value)
	}
}

func TestFromBuild(t *testing.T) {
	b := documenttest.Build()
	doc, err := NewFactory(documenttest.Options()).FromBuild(b, document.EncodingJSONLD)
	require.NoError(t, err)

	// organization, build, two packages, relationship
	assert.Equal(t, sequentialIDs(5), doc.(*Document).IDs())

	g := render(t, doc)
	require.Len(t, g.Graph, 7)

	var ids []string
	for _, n := range g.Graph[2:] {
		ids = append(ids, n.SpdxID)
	}
	assert.Equal(t, sequentialIDs(5), ids)
	assert.Equal(t, []string{"SPDXRef-1"}, g.Graph[1].RootElement)

	assert.Equal(t, "build_Build", g.Graph[3].Type)
	assert.Len(t, g.Graph[3].Extension[0].Property, len(b.Properties()))

	rel := g.Graph[6]
	assert.Equal(t, "Relationship", rel.Type)
	assert.Equal(t, "SPDXRef-1", rel.From)
	assert.Equal(t, []string{"SPDXRef-2", "SPDXRef-3"}, rel.To)
}

func TestUnsupportedEncoding(t *testing.T) {
	_, err := NewFactory(documenttest.Options()).FromBuild(documenttest.Build(), document.EncodingJSON)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnsupportedEncoding))
}
