package handler

import (
	"context"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

// createCompany records a new Company together with its Company Admin. The
// Company id is derived from the admin's public key, permanently binding the
// two.
func createCompany(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *CreateCompany) error {
	if p.Name == "" {
		return reject(CodeMissingField, "no name specified")
	}
	if p.Description == "" {
		return reject(CodeMissingField, "no description specified")
	}
	if p.Website == "" {
		return reject(CodeMissingField, "no website specified")
	}
	if !isValidPublicKey(p.Admin) {
		return reject(CodeMalformed, "the admin field doesn't contain a valid public key")
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}
	if err := checkPublicKeyUnused(ctx, led, p.Admin); err != nil {
		return err
	}
	if err := checkTypeIDs(ctx, led, p.EnabledProductTypes, addressing.ProductTypeAddress, "Product Type"); err != nil {
		return err
	}

	id := addressing.CompanyID(p.Admin)

	return led.SetState(ctx, map[string][]byte{
		addressing.CompanyAdminAddress(p.Admin): entity.MustEncode(entity.CompanyAdmin{
			PublicKey: p.Admin,
			Company:   id,
			Timestamp: timestamp,
		}),
		addressing.CompanyAddress(id): entity.MustEncode(entity.Company{
			ID:                  id,
			Name:                p.Name,
			Description:         p.Description,
			Website:             p.Website,
			AdminPublicKey:      p.Admin,
			EnabledProductTypes: p.EnabledProductTypes,
			Fields:              []string{},
			Operators:           []string{},
			Batches:             []string{},
			Timestamp:           timestamp,
		}),
	})
}

// createField records a new Field and appends it to the signer Company's
// field list.
func createField(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *CreateField) error {
	if p.ID == "" {
		return reject(CodeMissingField, "no id specified")
	}
	if p.Description == "" {
		return reject(CodeMissingField, "no description specified")
	}
	if p.Product == "" {
		return reject(CodeMissingField, "no product specified")
	}
	if p.Location == nil {
		return reject(CodeMissingField, "no location specified")
	}

	admin, company, err := requireCompanyAdmin(ctx, led, signer)
	if err != nil {
		return err
	}
	if err := checkTypeIDs(ctx, led, []string{p.Product}, addressing.ProductTypeAddress, "Product Type"); err != nil {
		return err
	}
	if !contains(company.EnabledProductTypes, p.Product) {
		return reject(CodeRule, "product %s is not an enabled Company Product Type", p.Product)
	}
	if p.Quantity <= 0 {
		return reject(CodeRule, "specified quantity is not greater than zero: %v", p.Quantity)
	}

	fieldAddress := addressing.FieldAddress(p.ID, admin.Company)
	st, err := led.GetState(ctx, []string{fieldAddress})
	if err != nil {
		return err
	}
	if len(st[fieldAddress]) > 0 {
		return reject(CodeRule, "the id %s belongs to another company Field", p.ID)
	}

	company.Fields = append(company.Fields, fieldAddress)

	return led.SetState(ctx, map[string][]byte{
		fieldAddress: entity.MustEncode(entity.Field{
			ID:          p.ID,
			Description: p.Description,
			Company:     admin.Company,
			Product:     p.Product,
			Quantity:    p.Quantity,
			Location:    *p.Location,
			Events:      []entity.Event{},
		}),
		addressing.CompanyAddress(admin.Company): entity.MustEncode(company),
	})
}

// createOperator records a new Operator and appends its public key to the
// signer Company's operator list.
func createOperator(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *CreateOperator) error {
	if !isValidPublicKey(p.PublicKey) {
		return reject(CodeMalformed, "the public key field doesn't contain a valid public key")
	}
	if p.Task == "" {
		return reject(CodeMissingField, "no task specified")
	}

	admin, company, err := requireCompanyAdmin(ctx, led, signer)
	if err != nil {
		return err
	}
	if err := checkTypeIDs(ctx, led, []string{p.Task}, addressing.TaskTypeAddress, "Task Type"); err != nil {
		return err
	}
	if err := checkPublicKeyUnused(ctx, led, p.PublicKey); err != nil {
		return err
	}

	company.Operators = append(company.Operators, p.PublicKey)

	return led.SetState(ctx, map[string][]byte{
		addressing.OperatorAddress(p.PublicKey): entity.MustEncode(entity.Operator{
			PublicKey: p.PublicKey,
			Company:   admin.Company,
			Task:      p.Task,
			Timestamp: timestamp,
		}),
		addressing.CompanyAddress(admin.Company): entity.MustEncode(company),
	})
}

// createCertificationAuthority records a new Certification Authority.
func createCertificationAuthority(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *CreateCertificationAuthority) error {
	if !isValidPublicKey(p.PublicKey) {
		return reject(CodeMalformed, "the public key field doesn't contain a valid public key")
	}
	if p.Name == "" {
		return reject(CodeMissingField, "no name specified")
	}
	if p.Website == "" {
		return reject(CodeMissingField, "no website specified")
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}
	if err := checkPublicKeyUnused(ctx, led, p.PublicKey); err != nil {
		return err
	}
	if err := checkTypeIDs(ctx, led, p.EnabledProductTypes, addressing.ProductTypeAddress, "Product Type"); err != nil {
		return err
	}

	return led.SetState(ctx, map[string][]byte{
		addressing.CertificationAuthorityAddress(p.PublicKey): entity.MustEncode(entity.CertificationAuthority{
			PublicKey:           p.PublicKey,
			Name:                p.Name,
			Website:             p.Website,
			EnabledProductTypes: p.EnabledProductTypes,
			Timestamp:           timestamp,
		}),
	})
}
