package handler

import (
	"context"
	"regexp"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

var (
	publicKeyRe = regexp.MustCompile(`^[0-9A-Fa-f]{66}$`)
	sha512Re    = regexp.MustCompile(`^[0-9A-Fa-f]{128}$`)
)

func isValidPublicKey(publicKey string) bool {
	return publicKeyRe.MatchString(publicKey)
}

func isValidSHA512(hash string) bool {
	return sha512Re.MatchString(hash)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// requireEntry returns the record stored at address, rejecting when it is
// absent. Every referential-integrity check funnels through here.
func requireEntry(st map[string][]byte, address, object string) ([]byte, error) {
	b := st[address]
	if len(b) == 0 {
		return nil, reject(CodeNotFound, "specified %s does not exist: %s", object, address)
	}
	return b, nil
}

// checkTypeIDs resolves each id through addr and rejects unless every
// resulting registry address holds a record.
func checkTypeIDs(ctx context.Context, led state.Context, ids []string, addr func(string) string, object string) error {
	if len(ids) == 0 {
		return nil
	}
	addresses := make([]string, len(ids))
	for i, id := range ids {
		if id == "" {
			return reject(CodeMissingField, "empty %s id", object)
		}
		addresses[i] = addr(id)
	}
	st, err := led.GetState(ctx, addresses)
	if err != nil {
		return err
	}
	for i, a := range addresses {
		if len(st[a]) == 0 {
			return reject(CodeNotFound, "specified %s does not exist: %s", object, ids[i])
		}
	}
	return nil
}

// checkPublicKeyUnused rejects when publicKey is already registered under any
// identity role. Identity namespaces are mutually exclusive.
func checkPublicKeyUnused(ctx context.Context, led state.Context, publicKey string) error {
	systemAdminAddress := addressing.SystemAdminAddress()
	companyAdminAddress := addressing.CompanyAdminAddress(publicKey)
	operatorAddress := addressing.OperatorAddress(publicKey)
	authorityAddress := addressing.CertificationAuthorityAddress(publicKey)

	st, err := led.GetState(ctx, []string{
		systemAdminAddress,
		companyAdminAddress,
		operatorAddress,
		authorityAddress,
	})
	if err != nil {
		return err
	}

	systemAdmin, err := entity.Decode[entity.SystemAdmin](st[systemAdminAddress])
	if err != nil {
		return err
	}
	if systemAdmin.PublicKey == publicKey {
		return reject(CodeRule, "the public key belongs to the current System Admin")
	}
	if len(st[companyAdminAddress]) > 0 {
		return reject(CodeRule, "the public key belongs to a Company Admin")
	}
	if len(st[operatorAddress]) > 0 {
		return reject(CodeRule, "the public key belongs to an Operator")
	}
	if len(st[authorityAddress]) > 0 {
		return reject(CodeRule, "the public key belongs to a Certification Authority")
	}
	return nil
}

// requireSystemAdmin rejects unless signer is the current System Admin.
func requireSystemAdmin(ctx context.Context, led state.Context, signer string) error {
	address := addressing.SystemAdminAddress()
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	systemAdmin, err := entity.Decode[entity.SystemAdmin](st[address])
	if err != nil {
		return err
	}
	if systemAdmin.PublicKey != signer {
		return reject(CodeUnauthorized, "the signer is not the System Admin")
	}
	return nil
}

// requireOperator returns the Operator record of signer, rejecting unless one
// exists.
func requireOperator(ctx context.Context, led state.Context, signer string) (entity.Operator, error) {
	address := addressing.OperatorAddress(signer)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return entity.Operator{}, err
	}
	operator, err := entity.Decode[entity.Operator](st[address])
	if err != nil {
		return entity.Operator{}, err
	}
	if operator.PublicKey != signer {
		return entity.Operator{}, reject(CodeUnauthorized, "the signer is not an Operator")
	}
	return operator, nil
}

// requireCompanyAdmin returns the CompanyAdmin record of signer and its
// Company, rejecting unless both exist.
func requireCompanyAdmin(ctx context.Context, led state.Context, signer string) (entity.CompanyAdmin, entity.Company, error) {
	adminAddress := addressing.CompanyAdminAddress(signer)
	st, err := led.GetState(ctx, []string{adminAddress})
	if err != nil {
		return entity.CompanyAdmin{}, entity.Company{}, err
	}
	admin, err := entity.Decode[entity.CompanyAdmin](st[adminAddress])
	if err != nil {
		return entity.CompanyAdmin{}, entity.Company{}, err
	}
	if admin.PublicKey != signer {
		return entity.CompanyAdmin{}, entity.Company{}, reject(CodeUnauthorized, "you must be a Company Admin with a Company")
	}

	companyAddress := addressing.CompanyAddress(admin.Company)
	st, err = led.GetState(ctx, []string{companyAddress})
	if err != nil {
		return entity.CompanyAdmin{}, entity.Company{}, err
	}
	if _, err := requireEntry(st, companyAddress, "Company"); err != nil {
		return entity.CompanyAdmin{}, entity.Company{}, reject(CodeUnauthorized, "you must be a Company Admin with a Company")
	}
	company, err := entity.Decode[entity.Company](st[companyAddress])
	if err != nil {
		return entity.CompanyAdmin{}, entity.Company{}, err
	}
	return admin, company, nil
}

// getCompany reads and decodes the Company with the given id, rejecting when
// it does not exist.
func getCompany(ctx context.Context, led state.Context, id, object string) (entity.Company, error) {
	address := addressing.CompanyAddress(id)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return entity.Company{}, err
	}
	if _, err := requireEntry(st, address, object); err != nil {
		return entity.Company{}, reject(CodeNotFound, "specified %s does not exist: %s", object, id)
	}
	return entity.Decode[entity.Company](st[address])
}
