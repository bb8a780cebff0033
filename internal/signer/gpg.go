package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/KAWAHARA-souta/alma-sbom/internal/models"
)

// GPGSigner implements Signer interface using an OpenPGP private key
type GPGSigner struct {
	entity *openpgp.Entity
}

// NewGPGSigner creates a new GPG signer from a private key file
func NewGPGSigner(keyPath, passphrase string) (*GPGSigner, error) {
	if keyPath == "" {
		return nil, models.NewError(models.ErrSigning, "gpg-key", "key path is empty")
	}

	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrSigning, Subject: keyPath, Err: fmt.Errorf("failed to open key file: %w", err)}
	}
	defer keyFile.Close()

	// Try to parse as armored key first
	entityList, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		if _, seekErr := keyFile.Seek(0, io.SeekStart); seekErr != nil {
			return nil, &models.SBOMError{Type: models.ErrSigning, Subject: keyPath, Err: seekErr}
		}
		entityList, err = openpgp.ReadKeyRing(keyFile)
		if err != nil {
			return nil, &models.SBOMError{Type: models.ErrSigning, Subject: keyPath, Err: fmt.Errorf("failed to read key: %w", err)}
		}
	}

	if len(entityList) == 0 {
		return nil, models.NewError(models.ErrSigning, keyPath, "no keys found in key file")
	}

	entity := entityList[0]
	if entity.PrivateKey == nil {
		return nil, models.NewError(models.ErrSigning, keyPath, "key file holds no private key")
	}

	if passphrase != "" {
		if err := decrypt(entity, []byte(passphrase)); err != nil {
			return nil, &models.SBOMError{Type: models.ErrSigning, Subject: keyPath, Err: err}
		}
	} else if entity.PrivateKey.Encrypted {
		return nil, models.NewError(models.ErrSigning, keyPath, "private key is encrypted and no passphrase was given")
	}

	return &GPGSigner{entity: entity}, nil
}

// NewGPGSignerFromEntity wraps an already decrypted entity
func NewGPGSignerFromEntity(entity *openpgp.Entity) *GPGSigner {
	return &GPGSigner{entity: entity}
}

func decrypt(entity *openpgp.Entity, passphrase []byte) error {
	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return fmt.Errorf("failed to decrypt private key: %w", err)
		}
	}

	for _, subkey := range entity.Subkeys {
		if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
			if err := subkey.PrivateKey.Decrypt(passphrase); err != nil {
				return fmt.Errorf("failed to decrypt subkey: %w", err)
			}
		}
	}
	return nil
}

// SignDetached implements Signer.
func (s *GPGSigner) SignDetached(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(data), &packet.Config{
		DefaultHash: crypto.SHA512,
	})
	if err != nil {
		return nil, &models.SBOMError{Type: models.ErrSigning, Subject: "detached signature", Err: err}
	}

	return buf.Bytes(), nil
}
