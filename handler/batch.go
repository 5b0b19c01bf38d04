package handler

import (
	"context"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

// getBatch reads and decodes the Batch with the given id, rejecting when it
// does not exist.
func getBatch(ctx context.Context, led state.Context, id string) (entity.Batch, error) {
	if id == "" {
		return entity.Batch{}, reject(CodeMissingField, "no batch specified")
	}
	address := addressing.BatchAddress(id)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return entity.Batch{}, err
	}
	if _, err := requireEntry(st, address, "Batch"); err != nil {
		return entity.Batch{}, reject(CodeNotFound, "specified Batch does not exist: %s", id)
	}
	return entity.Decode[entity.Batch](st[address])
}

// addBatchCertificate appends a Certificate issued by the signing
// Certification Authority to a Batch.
func addBatchCertificate(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *AddBatchCertificate) error {
	if p.Company == "" {
		return reject(CodeMissingField, "no company specified")
	}
	if p.Link == "" {
		return reject(CodeMissingField, "no link specified")
	}
	if !isValidSHA512(p.Hash) {
		return reject(CodeMalformed, "provided hash doesn't contain a valid SHA-512 value")
	}

	authorityAddress := addressing.CertificationAuthorityAddress(signer)
	st, err := led.GetState(ctx, []string{authorityAddress})
	if err != nil {
		return err
	}
	authority, err := entity.Decode[entity.CertificationAuthority](st[authorityAddress])
	if err != nil {
		return err
	}
	if authority.PublicKey != signer {
		return reject(CodeUnauthorized, "the signer is not a Certification Authority")
	}

	if _, err := getCompany(ctx, led, p.Company, "Company"); err != nil {
		return err
	}
	batch, err := getBatch(ctx, led, p.Batch)
	if err != nil {
		return err
	}
	if batch.Company != p.Company {
		return reject(CodeRule, "batch %s doesn't belong to company %s", p.Batch, p.Company)
	}
	if batch.Finalization != nil {
		return reject(CodeRule, "batch %s is finalized", p.Batch)
	}
	if !contains(authority.EnabledProductTypes, batch.Product) {
		return reject(CodeRule, "batch product %s is not enabled for the Certification Authority", batch.Product)
	}

	batch.Certificates = append(batch.Certificates, entity.Certificate{
		Authority: signer,
		Link:      p.Link,
		Hash:      p.Hash,
		Timestamp: timestamp,
	})
	return led.SetState(ctx, map[string][]byte{
		addressing.BatchAddress(p.Batch): entity.MustEncode(batch),
	})
}

// recordBatchProperty appends a Property Value to the named property of a
// Batch, creating the property entry on first use.
func recordBatchProperty(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *RecordBatchProperty) error {
	if p.PropertyTypeID == "" {
		return reject(CodeMissingField, "no property type specified")
	}

	operator, err := requireOperator(ctx, led, signer)
	if err != nil {
		return err
	}
	batch, err := getBatch(ctx, led, p.Batch)
	if err != nil {
		return err
	}
	if batch.Company != operator.Company {
		return reject(CodeUnauthorized, "batch %s doesn't belong to the operator company", p.Batch)
	}
	if batch.Finalization != nil {
		return reject(CodeRule, "batch %s is finalized", p.Batch)
	}

	propertyTypeAddress := addressing.PropertyTypeAddress(p.PropertyTypeID)
	st, err := led.GetState(ctx, []string{propertyTypeAddress})
	if err != nil {
		return err
	}
	b, err := requireEntry(st, propertyTypeAddress, "Property Type")
	if err != nil {
		return reject(CodeNotFound, "specified Property Type does not exist: %s", p.PropertyTypeID)
	}
	propertyType, err := entity.Decode[entity.PropertyType](b)
	if err != nil {
		return err
	}
	if !contains(propertyType.EnabledTaskTypes, operator.Task) {
		return reject(CodeRule, "operator task %s is not enabled for property type %s", operator.Task, p.PropertyTypeID)
	}
	if !contains(propertyType.EnabledProductTypes, batch.Product) {
		return reject(CodeRule, "batch product %s is not enabled for property type %s", batch.Product, p.PropertyTypeID)
	}

	value := p.Value
	value.Timestamp = timestamp
	switch propertyType.DataType {
	case entity.DataTypeNumber:
		if value.NumberValue == 0 {
			return reject(CodeMissingField, "no number value specified")
		}
	case entity.DataTypeString:
		if value.StringValue == "" {
			return reject(CodeMissingField, "no string value specified")
		}
	case entity.DataTypeBytes:
		if len(value.BytesValue) == 0 {
			return reject(CodeMissingField, "no bytes value specified")
		}
	case entity.DataTypeLocation:
		if value.LocationValue == nil {
			return reject(CodeMissingField, "no location value specified")
		}
	}

	appended := false
	for i := range batch.Properties {
		if batch.Properties[i].PropertyType == p.PropertyTypeID {
			batch.Properties[i].Values = append(batch.Properties[i].Values, value)
			appended = true
			break
		}
	}
	if !appended {
		batch.Properties = append(batch.Properties, entity.Property{
			PropertyType: p.PropertyTypeID,
			Values:       []entity.PropertyValue{value},
		})
	}

	return led.SetState(ctx, map[string][]byte{
		addressing.BatchAddress(p.Batch): entity.MustEncode(batch),
	})
}

// createProposal issues a transfer Proposal for a Batch from the operator's
// Company to a receiver Company.
func createProposal(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *CreateProposal) error {
	if p.ReceiverCompany == "" {
		return reject(CodeMissingField, "no receiver company specified")
	}

	operator, err := requireOperator(ctx, led, signer)
	if err != nil {
		return err
	}
	if p.ReceiverCompany == operator.Company {
		return reject(CodeRule, "the receiver company is the sender company")
	}
	batch, err := getBatch(ctx, led, p.Batch)
	if err != nil {
		return err
	}
	if batch.Company != operator.Company {
		return reject(CodeUnauthorized, "batch %s doesn't belong to the operator company", p.Batch)
	}
	if batch.Finalization != nil {
		return reject(CodeRule, "batch %s is finalized", p.Batch)
	}
	if batch.HasIssuedProposal() {
		return reject(CodeRule, "batch %s already carries an issued Proposal", p.Batch)
	}
	receiver, err := getCompany(ctx, led, p.ReceiverCompany, "receiver Company")
	if err != nil {
		return err
	}
	if !contains(receiver.EnabledProductTypes, batch.Product) {
		return reject(CodeRule, "batch product %s is not enabled for the receiver company", batch.Product)
	}

	batch.Proposals = append(batch.Proposals, entity.Proposal{
		SenderCompany:   operator.Company,
		ReceiverCompany: p.ReceiverCompany,
		Status:          entity.ProposalIssued,
		Notes:           p.Notes,
		Timestamp:       timestamp,
	})
	return led.SetState(ctx, map[string][]byte{
		addressing.BatchAddress(p.Batch): entity.MustEncode(batch),
	})
}

// answerProposal resolves the issued Proposal of a Batch. Cancellation comes
// from the sender's side, acceptance and rejection from the receiver's. On
// acceptance the Batch changes owner: its company field and both companies'
// batch lists update together.
func answerProposal(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *AnswerProposal) error {
	if p.SenderCompany == "" {
		return reject(CodeMissingField, "no sender company specified")
	}
	if p.ReceiverCompany == "" {
		return reject(CodeMissingField, "no receiver company specified")
	}
	switch p.Response {
	case entity.ProposalAccepted, entity.ProposalRejected, entity.ProposalCanceled:
	default:
		return reject(CodeMalformed, "response doesn't match any possible value: %s", p.Response)
	}

	operator, err := requireOperator(ctx, led, signer)
	if err != nil {
		return err
	}
	if p.Response == entity.ProposalCanceled {
		if operator.Company != p.SenderCompany {
			return reject(CodeUnauthorized, "only the sender company can cancel a Proposal")
		}
	} else {
		if operator.Company != p.ReceiverCompany {
			return reject(CodeUnauthorized, "only the receiver company can accept or reject a Proposal")
		}
	}

	batch, err := getBatch(ctx, led, p.Batch)
	if err != nil {
		return err
	}
	proposal := batch.IssuedProposal()
	if proposal == nil || proposal.SenderCompany != p.SenderCompany || proposal.ReceiverCompany != p.ReceiverCompany {
		return reject(CodeNotFound, "no issued Proposal from %s to %s on batch %s", p.SenderCompany, p.ReceiverCompany, p.Batch)
	}

	proposal.Status = p.Response
	proposal.Motivation = p.Motivation

	batchAddress := addressing.BatchAddress(p.Batch)
	updates := map[string][]byte{}

	if p.Response == entity.ProposalAccepted {
		sender, err := getCompany(ctx, led, p.SenderCompany, "sender Company")
		if err != nil {
			return err
		}
		receiver, err := getCompany(ctx, led, p.ReceiverCompany, "receiver Company")
		if err != nil {
			return err
		}
		kept := sender.Batches[:0]
		for _, a := range sender.Batches {
			if a != batchAddress {
				kept = append(kept, a)
			}
		}
		sender.Batches = kept
		receiver.Batches = append(receiver.Batches, batchAddress)
		batch.Company = p.ReceiverCompany
		updates[addressing.CompanyAddress(p.SenderCompany)] = entity.MustEncode(sender)
		updates[addressing.CompanyAddress(p.ReceiverCompany)] = entity.MustEncode(receiver)
	}

	updates[batchAddress] = entity.MustEncode(batch)
	return led.SetState(ctx, updates)
}

// finalizeBatch closes a Batch with a terminal Finalization record.
func finalizeBatch(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *FinalizeBatch) error {
	valid := false
	for _, r := range entity.FinalizationReasons {
		if r == p.Reason {
			valid = true
			break
		}
	}
	if !valid {
		return reject(CodeMalformed, "reason doesn't match any possible value: %s", p.Reason)
	}

	operator, err := requireOperator(ctx, led, signer)
	if err != nil {
		return err
	}
	batch, err := getBatch(ctx, led, p.Batch)
	if err != nil {
		return err
	}
	if batch.Company != operator.Company {
		return reject(CodeUnauthorized, "batch %s doesn't belong to the operator company", p.Batch)
	}
	if batch.Finalization != nil {
		return reject(CodeRule, "batch %s is already finalized", p.Batch)
	}
	if batch.HasIssuedProposal() {
		return reject(CodeRule, "batch %s carries an issued Proposal", p.Batch)
	}

	batch.Finalization = &entity.Finalization{
		Reason:      p.Reason,
		Reporter:    signer,
		Explanation: p.Explanation,
	}
	return led.SetState(ctx, map[string][]byte{
		addressing.BatchAddress(p.Batch): entity.MustEncode(batch),
	})
}
