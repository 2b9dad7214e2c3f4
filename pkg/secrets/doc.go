// Package secrets encrypts tenant-owned data at rest.
//
// A Box holds one 32-byte master key. For each tenant it derives a separate
// AES-256-GCM key with HKDF-SHA-256 (salt: the tenant UUID), so compromising
// one derived key exposes one tenant only. The tenant UUID is also passed as
// additional authenticated data.
//
//	box, err := secrets.New(masterKey)
//	ct, err := box.Seal(tenantID, []byte("owner@acme.example"))
//	pt, err := box.Open(tenantID, ct)
//
// Errors wrap sentinel values such as ErrDecryptionFailed; match them with
// errors.Is.
package secrets
