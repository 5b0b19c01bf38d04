// Package keys provides the secp256k1 signer identities pinned by the
// ledger.
//
// Public keys travel as 66-character lowercase hex strings (compressed curve
// point); signatures as hex DER over sha256(message).
package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// GeneratePrivateKey returns a fresh secp256k1 private key.
func GeneratePrivateKey() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// PublicKeyHex returns the 66-character hex compressed public key.
func PublicKeyHex(priv *secp256k1.PrivateKey) string {
	return hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

// ParsePublicKeyHex parses a 66-character hex compressed public key.
func ParsePublicKeyHex(s string) (*secp256k1.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid public key hex: %w", err)
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return pub, nil
}

// PrivateKeyHex returns the hex serialization of a private key.
func PrivateKeyHex(priv *secp256k1.PrivateKey) string {
	return hex.EncodeToString(priv.Serialize())
}

// ParsePrivateKeyHex parses a hex-serialized private key.
func ParsePrivateKeyHex(s string) (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return secp256k1.PrivKeyFromBytes(b), nil
}
