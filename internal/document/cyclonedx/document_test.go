package cyclonedx

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAWAHARA-souta/alma-sbom/internal/document"
	"github.com/KAWAHARA-souta/alma-sbom/internal/document/documenttest"
	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

func subject(t *testing.T, pkg *models.Package) Component {
	t.Helper()

	doc, err := NewFactory(documenttest.Options()).FromPackage(pkg, document.EncodingJSON)
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)

	var bom BOM
	require.NoError(t, json.Unmarshal(data, &bom))
	require.NotNil(t, bom.Metadata.Component)
	return *bom.Metadata.Component
}

func TestVersionWithoutEpoch(t *testing.T) {
	c := subject(t, documenttest.Package("bash", "", "5.1.8", "6.el9", "x86_64"))
	assert.Equal(t, "5.1.8-6.el9", c.Version)
}

func TestVersionWithEpoch(t *testing.T) {
	c := subject(t, documenttest.Package("bash", "2", "5.1.8", "6.el9", "x86_64"))
	assert.Equal(t, "2:5.1.8-6.el9", c.Version)
}

func TestResignedPackageBumpsVersion(t *testing.T) {
	factory := NewFactory(documenttest.Options())
	pkg := documenttest.Bash()

	doc, err := factory.FromPackage(pkg, document.EncodingJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.(*Document).BOM().Version)

	pkg.Resigned = true
	doc, err = factory.FromPackage(pkg, document.EncodingJSON)
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)
	var bom BOM
	require.NoError(t, json.Unmarshal(data, &bom))
	assert.Equal(t, 2, bom.Version)
}

func TestPropertiesKeepGroupOrder(t *testing.T) {
	pkg := documenttest.Bash()
	c := subject(t, pkg)

	want := pkg.Properties()
	require.Len(t, c.Properties, len(want))
	for i, p := range want {
		assert.Equal(t, p.Name, c.Properties[i].Name)
		assert.Equal(t, p.Value, c.Properties[i].Value)
	}
	assert.Equal(t, "almalinux:package:arch", c.Properties[0].Name)
	assert.Equal(t, "almalinux:sbom:immudbHash", c.Properties[len(c.Properties)-1].Name)

	require.Len(t, c.Hashes, 1)
	assert.Equal(t, "SHA-256", c.Hashes[0].Algorithm)
}

func TestPackageGolden(t *testing.T) {
	doc, err := NewFactory(documenttest.Options()).FromPackage(documenttest.Bash(), document.EncodingJSON)
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "bash-package", data)
}

func TestFromBuild(t *testing.T) {
	build := documenttest.Build()
	doc, err := NewFactory(documenttest.Options()).FromBuild(build, document.EncodingJSON)
	require.NoError(t, err)

	bom := doc.(*Document).BOM()
	require.NotNil(t, bom.Metadata.Component)
	assert.Equal(t, "application", bom.Metadata.Component.Type)
	assert.Equal(t, "build-9427", bom.Metadata.Component.Name)
	assert.Len(t, bom.Metadata.Component.Properties, len(build.Properties()))

	require.Len(t, bom.Components, 2)
	assert.Equal(t, "bash", bom.Components[0].Name)
	assert.Equal(t, "bash-doc", bom.Components[1].Name)
	assert.NotEqual(t, bom.Components[0].BOMRef, bom.Components[1].BOMRef)
}

func TestXML(t *testing.T) {
	doc, err := NewFactory(documenttest.Options()).FromBuild(documenttest.Build(), document.EncodingXML)
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `<bom xmlns="http://cyclonedx.org/schema/bom/1.5" serialNumber="urn:uuid:`+documenttest.SerialUUID.String()+`" version="1">`)
	assert.Contains(t, string(data), `<property name="almalinux:albs:build:ID">9427</property>`)

	var bom BOM
	require.NoError(t, xml.Unmarshal(data, &bom))
	require.Len(t, bom.Components, 2)
	assert.Equal(t, "5.1.8-6.el9", bom.Components[0].Version)
	assert.Equal(t, "SHA-256", bom.Components[0].Hashes[0].Algorithm)
}

func TestUnsupportedEncoding(t *testing.T) {
	_, err := NewFactory(documenttest.Options()).FromPackage(documenttest.Bash(), document.EncodingTagValue)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnsupportedEncoding))
}
