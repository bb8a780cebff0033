package spdx3

// Graph node shapes. Every element carries the shared creation info blank
// node by reference.

type creationInfo struct {
	Type        string   `json:"type"`
	ID          string   `json:"@id"`
	SpecVersion string   `json:"specVersion"`
	Created     string   `json:"created"`
	CreatedBy   []string `json:"createdBy"`
}

type elementBase struct {
	Type         string `json:"type"`
	SpdxID       string `json:"spdxId"`
	CreationInfo string `json:"creationInfo"`
}

type spdxDocument struct {
	elementBase
	Name               string   `json:"name"`
	DataLicense        string   `json:"dataLicense"`
	ProfileConformance []string `json:"profileConformance"`
	Element            []string `json:"element"`
	RootElement        []string `json:"rootElement"`
}

type organization struct {
	elementBase
	Name string `json:"name"`
}

type hash struct {
	Type      string `json:"type"`
	Algorithm string `json:"algorithm"`
	HashValue string `json:"hashValue"`
}

type externalIdentifier struct {
	Type                   string `json:"type"`
	ExternalIdentifierType string `json:"externalIdentifierType"`
	Identifier             string `json:"identifier"`
}

type propertyEntry struct {
	Type  string `json:"type"`
	Name  string `json:"extension_cdxPropName"`
	Value string `json:"extension_cdxPropValue"`
}

type propertiesExtension struct {
	Type     string          `json:"type"`
	Property []propertyEntry `json:"extension_cdxProperty"`
}

type softwarePackage struct {
	elementBase
	Name               string                `json:"name"`
	SuppliedBy         string                `json:"suppliedBy"`
	BuiltTime          string                `json:"builtTime,omitempty"`
	VerifiedUsing      []hash                `json:"verifiedUsing,omitempty"`
	ExternalIdentifier []externalIdentifier  `json:"externalIdentifier,omitempty"`
	PackageVersion     string                `json:"software_packageVersion"`
	PackageURL         string                `json:"software_packageUrl"`
	Extension          []propertiesExtension `json:"extension,omitempty"`
}

type build struct {
	elementBase
	BuildType      string                `json:"build_buildType"`
	BuildID        string                `json:"build_buildId"`
	BuildStartTime string                `json:"build_buildStartTime,omitempty"`
	Extension      []propertiesExtension `json:"extension,omitempty"`
}

type relationship struct {
	elementBase
	From             string   `json:"from"`
	RelationshipType string   `json:"relationshipType"`
	To               []string `json:"to"`
}
