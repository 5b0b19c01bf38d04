// Package docstore stores the off-chain certification documents referenced
// by batch certificates. Documents are content-addressed by CID; the ledger
// pins them by their SHA-512 hex digest.
package docstore

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var (
	ErrNotFound    = errors.New("docstore: not found")
	ErrInvalidCID  = errors.New("docstore: invalid cid")
	ErrCIDMismatch = errors.New("docstore: cid mismatch")
	ErrImmutable   = errors.New("docstore: immutable object mismatch")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is a minimal content-addressable document store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored documents MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type Store interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// DocumentCID returns the CIDv1 (raw + sha2-256) derived from data.
func DocumentCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CertificateHash returns the 128-hex-character SHA-512 digest recorded on
// chain for a certification document.
func CertificateHash(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}
