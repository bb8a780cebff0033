package models

// Build represents an ALBS build and the packages it produced
type Build struct {
	ID        string
	URL       string
	Author    string
	Timestamp string
	Source    BuildSourceProperties

	// Packages keeps the order in which the ledger listed them.
	Packages []*Package
}

// Properties returns the build-level properties followed by the source.
func (b *Build) Properties() []Property {
	props := []Property{
		{Name: "almalinux:albs:build:ID", Value: b.ID},
		{Name: "almalinux:albs:build:URL", Value: b.URL},
		{Name: "almalinux:albs:build:author", Value: b.Author},
	}
	if b.Source != nil {
		props = append(props, b.Source.Properties()...)
	}
	return props
}

// Name is the human readable name of the build used for document titles.
func (b *Build) Name() string {
	return "build-" + b.ID
}
