// Package addressing maps logical ledger identities to fixed-length state
// addresses.
//
// Every address is a 70-char hex string: a 6-char family namespace, a 4-char
// kind prefix and a 60-char digest (the Company, Field and Batch kinds spend
// the prefix budget differently, see below). The mapping is pure and
// deterministic: the same identity always yields the same address, and the
// per-kind prefixes keep distinct kinds collision-free even for adversarial
// identity strings.
package addressing

import (
	"crypto/sha512"
	"encoding/hex"
	"regexp"
	"strings"
)

// FamilyName identifies the transaction family on the ledger.
const FamilyName = "AgriLedger"

// FamilyVersion is the transaction family version handled by this core.
const FamilyVersion = "1.0"

// AddressLength is the exact hex length of every state address.
const AddressLength = 70

// State object prefixes, two hex chars each.
const (
	PrefixUsers   = "00"
	PrefixTypes   = "01"
	PrefixCompany = "02"
	PrefixField   = "03"
	PrefixBatch   = "04"
)

// User sub-prefixes under PrefixUsers.
const (
	PrefixSystemAdmin            = "10"
	PrefixCompanyAdmin           = "11"
	PrefixOperator               = "12"
	PrefixCertificationAuthority = "13"
)

// Type sub-prefixes under PrefixTypes.
const (
	PrefixTaskType           = "20"
	PrefixProductType        = "21"
	PrefixEventParameterType = "22"
	PrefixEventType          = "23"
	PrefixPropertyType       = "24"
)

// Namespace is the 6-char hex namespace shared by every address of the family.
var Namespace = HashAndSlice(FamilyName, 6)

var addressRe = regexp.MustCompile("^" + Namespace + "[0-9a-f]{64}$")

// HashAndSlice returns the first n chars of the lowercase hex SHA-512 of input.
func HashAndSlice(input string, n int) string {
	sum := sha512.Sum512([]byte(input))
	return hex.EncodeToString(sum[:])[:n]
}

// SystemAdminAddress returns the fixed singleton address of the System Admin.
// It is constant, not hash-derived, so it is discoverable without any input.
func SystemAdminAddress() string {
	return Namespace + PrefixUsers + PrefixSystemAdmin + strings.Repeat("0", 60)
}

// CompanyAdminAddress returns the state address of a Company Admin.
func CompanyAdminAddress(publicKey string) string {
	return userAddress(PrefixCompanyAdmin, publicKey)
}

// OperatorAddress returns the state address of an Operator.
func OperatorAddress(publicKey string) string {
	return userAddress(PrefixOperator, publicKey)
}

// CertificationAuthorityAddress returns the state address of a Certification Authority.
func CertificationAuthorityAddress(publicKey string) string {
	return userAddress(PrefixCertificationAuthority, publicKey)
}

// TaskTypeAddress returns the state address of a Task Type.
func TaskTypeAddress(id string) string {
	return typeAddress(PrefixTaskType, id)
}

// ProductTypeAddress returns the state address of a Product Type.
func ProductTypeAddress(id string) string {
	return typeAddress(PrefixProductType, id)
}

// EventParameterTypeAddress returns the state address of an Event Parameter Type.
func EventParameterTypeAddress(id string) string {
	return typeAddress(PrefixEventParameterType, id)
}

// EventTypeAddress returns the state address of an Event Type.
func EventTypeAddress(id string) string {
	return typeAddress(PrefixEventType, id)
}

// PropertyTypeAddress returns the state address of a Property Type.
func PropertyTypeAddress(id string) string {
	return typeAddress(PrefixPropertyType, id)
}

// CompanyAddress returns the state address of a Company.
func CompanyAddress(id string) string {
	return Namespace + PrefixCompany + HashAndSlice(id, 62)
}

// FieldAddress returns the state address of a Field. Field identifiers are
// only unique within the owning Company, so the address concatenates two
// independently truncated digests.
func FieldAddress(id, company string) string {
	return Namespace + PrefixField + HashAndSlice(id, 42) + HashAndSlice(company, 20)
}

// BatchAddress returns the state address of a Batch.
func BatchAddress(id string) string {
	return Namespace + PrefixBatch + HashAndSlice(id, 62)
}

// CompanyID derives the permanent Company identifier from the Company Admin's
// public key, binding the company identity to its admin.
func CompanyID(adminPublicKey string) string {
	return HashAndSlice(adminPublicKey, 10)
}

// IsValidAddress reports whether address is a well-formed state address of
// this family: the family namespace followed by exactly 64 hex chars.
func IsValidAddress(address string) bool {
	return addressRe.MatchString(address)
}

func userAddress(prefix, publicKey string) string {
	return Namespace + PrefixUsers + prefix + HashAndSlice(publicKey, 60)
}

func typeAddress(prefix, id string) string {
	return Namespace + PrefixTypes + prefix + HashAndSlice(id, 60)
}
