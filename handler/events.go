package handler

import (
	"context"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

// getEventType reads and validates the Event Type shared by both event
// handlers: it must exist, carry the wanted typology and enable the
// operator's task.
func getEventType(ctx context.Context, led state.Context, id string, typology entity.Typology, operator entity.Operator) (entity.EventType, error) {
	if id == "" {
		return entity.EventType{}, reject(CodeMissingField, "no event type specified")
	}
	address := addressing.EventTypeAddress(id)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return entity.EventType{}, err
	}
	if _, err := requireEntry(st, address, "Event Type"); err != nil {
		return entity.EventType{}, reject(CodeNotFound, "specified Event Type does not exist: %s", id)
	}
	eventType, err := entity.Decode[entity.EventType](st[address])
	if err != nil {
		return entity.EventType{}, err
	}
	if eventType.Typology != typology {
		return entity.EventType{}, reject(CodeRule, "event type %s doesn't match typology %s", id, typology)
	}
	if !contains(eventType.EnabledTaskTypes, operator.Task) {
		return entity.EventType{}, reject(CodeRule, "operator task %s is not enabled for event type %s", operator.Task, id)
	}
	return eventType, nil
}

// checkParameterValues validates supplied parameter values against the Event
// Type's declared parameters. The value count must equal the number of
// required parameters, every value must match a declared parameter, and each
// value must satisfy its parameter's range or length constraint.
func checkParameterValues(ctx context.Context, led state.Context, eventType entity.EventType, values []entity.ParameterValue) error {
	required := 0
	params := make(map[string]entity.Parameter, len(eventType.Parameters))
	for _, p := range eventType.Parameters {
		params[p.ParameterTypeID] = p
		if p.Required {
			required++
		}
	}
	if len(values) != required {
		return reject(CodeRule, "supplied %d parameter values, event type requires %d", len(values), required)
	}
	supplied := make(map[string]bool, len(values))
	for _, v := range values {
		if _, ok := params[v.ParameterTypeID]; !ok {
			return reject(CodeRule, "parameter %s is not declared on the event type", v.ParameterTypeID)
		}
		supplied[v.ParameterTypeID] = true
	}
	for id, p := range params {
		if p.Required && !supplied[id] {
			return reject(CodeMissingField, "no value supplied for required parameter %s", id)
		}
	}

	addresses := make([]string, len(values))
	for i, v := range values {
		addresses[i] = addressing.EventParameterTypeAddress(v.ParameterTypeID)
	}
	st, err := led.GetState(ctx, addresses)
	if err != nil {
		return err
	}
	for i, v := range values {
		b, err := requireEntry(st, addresses[i], "Event Parameter Type")
		if err != nil {
			return err
		}
		parameterType, err := entity.Decode[entity.EventParameterType](b)
		if err != nil {
			return err
		}
		if err := checkValueConstraint(parameterType.DataType, params[v.ParameterTypeID], v); err != nil {
			return err
		}
	}
	return nil
}

func checkValueConstraint(dataType entity.DataType, p entity.Parameter, v entity.ParameterValue) error {
	switch dataType {
	case entity.DataTypeNumber:
		if p.MinValue != 0 && v.NumberValue < p.MinValue {
			return reject(CodeRule, "parameter %s value %v is lower than the minimum %v", v.ParameterTypeID, v.NumberValue, p.MinValue)
		}
		if p.MaxValue != 0 && v.NumberValue > p.MaxValue {
			return reject(CodeRule, "parameter %s value %v is greater than the maximum %v", v.ParameterTypeID, v.NumberValue, p.MaxValue)
		}
	case entity.DataTypeString:
		n := len(v.StringValue)
		if p.MinLength > 0 && n < p.MinLength {
			return reject(CodeRule, "parameter %s value is shorter than %d characters", v.ParameterTypeID, p.MinLength)
		}
		if p.MaxLength > 0 && n > p.MaxLength {
			return reject(CodeRule, "parameter %s value is longer than %d characters", v.ParameterTypeID, p.MaxLength)
		}
	case entity.DataTypeBytes:
		if len(v.BytesValue) == 0 {
			return reject(CodeMissingField, "parameter %s bytes value is empty", v.ParameterTypeID)
		}
	case entity.DataTypeLocation:
		if v.LocationValue == nil {
			return reject(CodeMissingField, "parameter %s location value is missing", v.ParameterTypeID)
		}
	}
	return nil
}

// createDescriptionEvent appends a description Event to exactly one target,
// a Field or a Batch of the operator's Company. No quantity changes.
func createDescriptionEvent(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *CreateDescriptionEvent) error {
	if p.Batch == "" && p.Field == "" {
		return reject(CodeMissingField, "no batch or field specified")
	}
	if p.Batch != "" && p.Field != "" {
		return reject(CodeRule, "either a batch or a field must be specified, not both")
	}

	operator, err := requireOperator(ctx, led, signer)
	if err != nil {
		return err
	}
	eventType, err := getEventType(ctx, led, p.EventTypeID, entity.TypologyDescription, operator)
	if err != nil {
		return err
	}

	event := entity.Event{
		EventType: eventType.ID,
		Reporter:  signer,
		Values:    p.Values,
		Timestamp: timestamp,
	}

	if p.Field != "" {
		address := addressing.FieldAddress(p.Field, operator.Company)
		st, err := led.GetState(ctx, []string{address})
		if err != nil {
			return err
		}
		if _, err := requireEntry(st, address, "company Field"); err != nil {
			return reject(CodeNotFound, "specified company Field does not exist: %s", p.Field)
		}
		field, err := entity.Decode[entity.Field](st[address])
		if err != nil {
			return err
		}
		if !contains(eventType.EnabledProductTypes, field.Product) {
			return reject(CodeRule, "field product %s is not enabled for event type %s", field.Product, eventType.ID)
		}
		if err := checkParameterValues(ctx, led, eventType, p.Values); err != nil {
			return err
		}
		field.Events = append(field.Events, event)
		return led.SetState(ctx, map[string][]byte{address: entity.MustEncode(field)})
	}

	address := addressing.BatchAddress(p.Batch)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if _, err := requireEntry(st, address, "Batch"); err != nil {
		return reject(CodeNotFound, "specified Batch does not exist: %s", p.Batch)
	}
	batch, err := entity.Decode[entity.Batch](st[address])
	if err != nil {
		return err
	}
	if batch.Company != operator.Company {
		return reject(CodeUnauthorized, "batch %s doesn't belong to the operator company", p.Batch)
	}
	if batch.Finalization != nil {
		return reject(CodeRule, "batch %s is finalized", p.Batch)
	}
	if !contains(eventType.EnabledProductTypes, batch.Product) {
		return reject(CodeRule, "batch product %s is not enabled for event type %s", batch.Product, eventType.ID)
	}
	if err := checkParameterValues(ctx, led, eventType, p.Values); err != nil {
		return err
	}
	batch.Events = append(batch.Events, event)
	return led.SetState(ctx, map[string][]byte{address: entity.MustEncode(batch)})
}

// createTransformationEvent consumes quantities from input Fields or Batches
// of the operator's Company and produces a new output Batch of a derived
// product. Input debits, input event records, the output Batch and the
// Company batch list update commit together.
func createTransformationEvent(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *CreateTransformationEvent) error {
	if len(p.Batches) == 0 && len(p.Fields) == 0 {
		return reject(CodeMissingField, "no input batches or fields specified")
	}
	if len(p.Batches) > 0 && len(p.Fields) > 0 {
		return reject(CodeRule, "either batches or fields must be specified, not both")
	}
	inputs := p.Fields
	fromFields := true
	if len(p.Batches) > 0 {
		inputs = p.Batches
		fromFields = false
	}
	if len(p.Quantities) != len(inputs) {
		return reject(CodeRule, "quantities count %d doesn't match inputs count %d", len(p.Quantities), len(inputs))
	}
	for _, q := range p.Quantities {
		if q <= 0 {
			return reject(CodeRule, "specified quantity is not greater than zero: %v", q)
		}
	}
	if p.DerivedProduct == "" {
		return reject(CodeMissingField, "no derived product specified")
	}
	if p.OutputBatchID == "" {
		return reject(CodeMissingField, "no output batch id specified")
	}

	operator, err := requireOperator(ctx, led, signer)
	if err != nil {
		return err
	}
	eventType, err := getEventType(ctx, led, p.EventTypeID, entity.TypologyTransformation, operator)
	if err != nil {
		return err
	}
	if !contains(eventType.EnabledDerivedProductTypes, p.DerivedProduct) {
		return reject(CodeRule, "derived product %s is not enabled for event type %s", p.DerivedProduct, eventType.ID)
	}

	company, err := getCompany(ctx, led, operator.Company, "operator Company")
	if err != nil {
		return err
	}
	if !contains(company.EnabledProductTypes, p.DerivedProduct) {
		return reject(CodeRule, "derived product %s is not an enabled Company Product Type", p.DerivedProduct)
	}

	addresses := make([]string, len(inputs))
	for i, id := range inputs {
		if id == "" {
			return reject(CodeMissingField, "empty input id")
		}
		if fromFields {
			addresses[i] = addressing.FieldAddress(id, operator.Company)
		} else {
			addresses[i] = addressing.BatchAddress(id)
		}
	}
	outputAddress := addressing.BatchAddress(p.OutputBatchID)

	st, err := led.GetState(ctx, append(append([]string{}, addresses...), outputAddress))
	if err != nil {
		return err
	}
	if len(st[outputAddress]) > 0 {
		return reject(CodeRule, "the id %s belongs to another Batch", p.OutputBatchID)
	}

	// Decode every input and establish the single shared product type.
	product := ""
	fields := make([]entity.Field, len(inputs))
	batches := make([]entity.Batch, len(inputs))
	for i, id := range inputs {
		object := "Batch"
		if fromFields {
			object = "company Field"
		}
		b, err := requireEntry(st, addresses[i], object)
		if err != nil {
			return reject(CodeNotFound, "specified %s does not exist: %s", object, id)
		}
		var inputProduct string
		if fromFields {
			field, err := entity.Decode[entity.Field](b)
			if err != nil {
				return err
			}
			fields[i] = field
			inputProduct = field.Product
		} else {
			batch, err := entity.Decode[entity.Batch](b)
			if err != nil {
				return err
			}
			if batch.Company != operator.Company {
				return reject(CodeUnauthorized, "batch %s doesn't belong to the operator company", id)
			}
			if batch.Finalization != nil {
				return reject(CodeRule, "batch %s is finalized", id)
			}
			batches[i] = batch
			inputProduct = batch.Product
		}
		if product == "" {
			product = inputProduct
		} else if product != inputProduct {
			return reject(CodeRule, "inputs don't share a common product type")
		}
		var have float64
		if fromFields {
			have = fields[i].Quantity
		} else {
			have = batches[i].Quantity
		}
		if p.Quantities[i] > have {
			return reject(CodeRule, "requested quantity %v exceeds the available %v for %s", p.Quantities[i], have, id)
		}
	}

	if !contains(eventType.EnabledProductTypes, product) {
		return reject(CodeRule, "input product %s is not enabled for event type %s", product, eventType.ID)
	}
	if !contains(company.EnabledProductTypes, product) {
		return reject(CodeRule, "input product %s is not an enabled Company Product Type", product)
	}

	rate, err := conversionRate(ctx, led, product, p.DerivedProduct)
	if err != nil {
		return err
	}

	updates := make(map[string][]byte, len(inputs)+2)
	total := 0.0
	for i := range inputs {
		event := entity.Event{
			EventType: eventType.ID,
			Reporter:  signer,
			Quantity:  p.Quantities[i],
			Timestamp: timestamp,
		}
		total += p.Quantities[i]
		if fromFields {
			fields[i].Quantity -= p.Quantities[i]
			fields[i].Events = append(fields[i].Events, event)
			updates[addresses[i]] = entity.MustEncode(fields[i])
		} else {
			batches[i].Quantity -= p.Quantities[i]
			batches[i].Events = append(batches[i].Events, event)
			updates[addresses[i]] = entity.MustEncode(batches[i])
		}
	}

	output := entity.Batch{
		ID:            p.OutputBatchID,
		Company:       operator.Company,
		Product:       p.DerivedProduct,
		Quantity:      total * rate,
		ParentFields:  []string{},
		ParentBatches: []string{},
		Events:        []entity.Event{},
		Certificates:  []entity.Certificate{},
		Properties:    []entity.Property{},
		Proposals:     []entity.Proposal{},
		Timestamp:     timestamp,
	}
	if fromFields {
		output.ParentFields = append(output.ParentFields, addresses...)
	} else {
		output.ParentBatches = append(output.ParentBatches, addresses...)
	}
	updates[outputAddress] = entity.MustEncode(output)

	company.Batches = append(company.Batches, outputAddress)
	updates[addressing.CompanyAddress(company.ID)] = entity.MustEncode(company)

	return led.SetState(ctx, updates)
}

// conversionRate resolves the multiplier from the input product's derived
// registry. Zero or multiple matching entries is a fatal rejection.
func conversionRate(ctx context.Context, led state.Context, product, derived string) (float64, error) {
	address := addressing.ProductTypeAddress(product)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return 0, err
	}
	b, err := requireEntry(st, address, "Product Type")
	if err != nil {
		return 0, reject(CodeNotFound, "specified Product Type does not exist: %s", product)
	}
	productType, err := entity.Decode[entity.ProductType](b)
	if err != nil {
		return 0, err
	}
	rate := 0.0
	matches := 0
	for _, d := range productType.DerivedProductTypes {
		if d.ProductTypeID == derived {
			rate = d.ConversionRate
			matches++
		}
	}
	if matches != 1 {
		return 0, reject(CodeRule, "no unique conversion rate from %s to %s", product, derived)
	}
	return rate, nil
}
