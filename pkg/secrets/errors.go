package secrets

import "errors"

var (
	ErrInvalidMasterKey = errors.New("invalid master key: must be 32 bytes")
	ErrInvalidTenant    = errors.New("invalid tenant id")

	ErrEncryptionFailed  = errors.New("encryption failed")
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	ErrKeyDerivationFailed = errors.New("key derivation failed")
)
