package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ErrBadSignature is returned when a signature does not verify.
var ErrBadSignature = errors.New("signature verification failed")

// Sign returns a hex DER ECDSA signature over sha256(message).
func Sign(priv *secp256k1.PrivateKey, message []byte) string {
	digest := sha256.Sum256(message)
	sig := ecdsa.Sign(priv, digest[:])
	return hex.EncodeToString(sig.Serialize())
}

// Verify checks a hex DER signature by publicKeyHex over sha256(message).
func Verify(publicKeyHex string, message []byte, signatureHex string) error {
	pub, err := ParsePublicKeyHex(publicKeyHex)
	if err != nil {
		return err
	}
	b, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("invalid signature hex: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(b)
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	digest := sha256.Sum256(message)
	if !sig.Verify(digest[:], pub) {
		return ErrBadSignature
	}
	return nil
}
