// Package signer produces detached OpenPGP signatures for generated SBOMs.
package signer

// Signer signs serialized documents
type Signer interface {
	// SignDetached creates an armored detached signature (written as <output>.asc)
	SignDetached(data []byte) ([]byte, error)
}

// SignatureExtension is appended to the output path for detached signatures.
const SignatureExtension = ".asc"
