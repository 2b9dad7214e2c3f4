package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size of the master key and of derived keys.
	KeySize = 32

	// hkdfInfo separates tenant secret keys from any other use of the master key.
	hkdfInfo = "storekit-tenant-secrets-v1"
)

// Config holds the master key, base64 encoded.
type Config struct {
	MasterKey string `env:"SECRETS_MASTER_KEY,required"`
}

// Box encrypts tenant data with keys derived from one master key.
// Every tenant gets its own AES-256-GCM key: HKDF-SHA-256 over the master key
// salted with the tenant ID. The tenant ID is also bound as additional data,
// so a ciphertext copied to another tenant's row does not decrypt.
type Box struct {
	master []byte
}

// New creates a Box. The key is copied.
func New(masterKey []byte) (*Box, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidMasterKey
	}
	return &Box{master: append([]byte(nil), masterKey...)}, nil
}

// NewFromConfig decodes the base64 master key from cfg.
func NewFromConfig(cfg Config) (*Box, error) {
	key, err := base64.StdEncoding.DecodeString(cfg.MasterKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidMasterKey, err)
	}
	return New(key)
}

// Seal encrypts data for tenantID. The output is nonce + ciphertext + tag.
func (b *Box) Seal(tenantID uuid.UUID, data []byte) ([]byte, error) {
	aead, err := b.aead(tenantID)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aead.Seal(nonce, nonce, data, tenantID[:]), nil
}

// Open decrypts a value produced by Seal for the same tenant.
func (b *Box) Open(tenantID uuid.UUID, ciphertext []byte) ([]byte, error) {
	aead, err := b.aead(tenantID)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, sealed, tenantID[:])
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// SealString encrypts a string and returns it base64 encoded.
func (b *Box) SealString(tenantID uuid.UUID, plaintext string) (string, error) {
	ct, err := b.Seal(tenantID, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// OpenString reverses SealString.
func (b *Box) OpenString(tenantID uuid.UUID, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	pt, err := b.Open(tenantID, raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func (b *Box) aead(tenantID uuid.UUID) (cipher.AEAD, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenant
	}

	key, err := b.deriveKey(tenantID)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (b *Box) deriveKey(tenantID uuid.UUID) ([]byte, error) {
	r := hkdf.New(sha256.New, b.master, tenantID[:], []byte(hkdfInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// GenerateKey creates a new random 32-byte key suitable as a master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
