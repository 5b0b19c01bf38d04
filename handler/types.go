package handler

import (
	"context"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

// The type registry handlers share one shape: only the System Admin may
// create entries, an id is unique within its own kind's namespace (sibling
// kinds may reuse ids freely, addressing is kind-scoped), and entries are
// immutable after creation.

func createTaskType(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *CreateTaskType) error {
	if p.ID == "" {
		return reject(CodeMissingField, "no id specified")
	}
	if p.Task == "" {
		return reject(CodeMissingField, "no task specified")
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}

	address := addressing.TaskTypeAddress(p.ID)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if len(st[address]) > 0 {
		return reject(CodeRule, "the id %s belongs to another Task Type", p.ID)
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.TaskType{ID: p.ID, Task: p.Task}),
	})
}

func createProductType(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *CreateProductType) error {
	if p.ID == "" {
		return reject(CodeMissingField, "no id specified")
	}
	if p.Name == "" {
		return reject(CodeMissingField, "no name specified")
	}
	if !validUnitOfMeasure(p.Measure) {
		return reject(CodeMalformed, "measure doesn't match any possible value: %s", p.Measure)
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}

	address := addressing.ProductTypeAddress(p.ID)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if len(st[address]) > 0 {
		return reject(CodeRule, "the id %s belongs to another Product Type", p.ID)
	}

	derivedIDs := make([]string, len(p.DerivedProductTypes))
	for i, d := range p.DerivedProductTypes {
		if d.ConversionRate <= 0 {
			return reject(CodeRule, "specified conversion rate is not greater than zero: %v", d.ConversionRate)
		}
		derivedIDs[i] = d.ProductTypeID
	}
	if err := checkTypeIDs(ctx, led, derivedIDs, addressing.ProductTypeAddress, "derived Product Type"); err != nil {
		return err
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.ProductType{
			ID:                  p.ID,
			Name:                p.Name,
			Description:         p.Description,
			Measure:             p.Measure,
			DerivedProductTypes: p.DerivedProductTypes,
		}),
	})
}

func createEventParameterType(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *CreateEventParameterType) error {
	if p.ID == "" {
		return reject(CodeMissingField, "no id specified")
	}
	if p.Name == "" {
		return reject(CodeMissingField, "no name specified")
	}
	if !validDataType(p.DataType) {
		return reject(CodeMalformed, "data type doesn't match any possible value: %s", p.DataType)
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}

	address := addressing.EventParameterTypeAddress(p.ID)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if len(st[address]) > 0 {
		return reject(CodeRule, "the id %s belongs to another Event Parameter Type", p.ID)
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.EventParameterType{
			ID:       p.ID,
			Name:     p.Name,
			DataType: p.DataType,
		}),
	})
}

func createEventType(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *CreateEventType) error {
	if p.ID == "" {
		return reject(CodeMissingField, "no id specified")
	}
	if !validTypology(p.Typology) {
		return reject(CodeMalformed, "typology doesn't match any possible value: %s", p.Typology)
	}
	if p.Name == "" {
		return reject(CodeMissingField, "no name specified")
	}
	if p.Description == "" {
		return reject(CodeMissingField, "no description specified")
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}

	address := addressing.EventTypeAddress(p.ID)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if len(st[address]) > 0 {
		return reject(CodeRule, "the id %s belongs to another Event Type", p.ID)
	}

	if err := checkTypeIDs(ctx, led, p.EnabledTaskTypes, addressing.TaskTypeAddress, "Task Type"); err != nil {
		return err
	}
	if err := checkTypeIDs(ctx, led, p.EnabledProductTypes, addressing.ProductTypeAddress, "Product Type"); err != nil {
		return err
	}
	parameterIDs := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		parameterIDs[i] = param.ParameterTypeID
	}
	if err := checkTypeIDs(ctx, led, parameterIDs, addressing.EventParameterTypeAddress, "Event Parameter Type"); err != nil {
		return err
	}

	switch p.Typology {
	case entity.TypologyTransformation:
		if len(p.EnabledDerivedProductTypes) == 0 {
			return reject(CodeMissingField, "no derived products for transformation event typology")
		}
	default:
		if len(p.EnabledDerivedProductTypes) > 0 {
			return reject(CodeRule, "derived products specified for a description event typology")
		}
	}

	if err := checkTypeIDs(ctx, led, p.EnabledDerivedProductTypes, addressing.ProductTypeAddress, "derived Product Type"); err != nil {
		return err
	}

	// Each declared derived product must be reachable from at least one
	// enabled product's conversion registry.
	if len(p.EnabledDerivedProductTypes) > 0 {
		reachable := make(map[string]bool)
		addresses := make([]string, len(p.EnabledProductTypes))
		for i, id := range p.EnabledProductTypes {
			addresses[i] = addressing.ProductTypeAddress(id)
		}
		st, err := led.GetState(ctx, addresses)
		if err != nil {
			return err
		}
		for _, a := range addresses {
			product, err := entity.Decode[entity.ProductType](st[a])
			if err != nil {
				return err
			}
			for _, d := range product.DerivedProductTypes {
				reachable[d.ProductTypeID] = true
			}
		}
		for _, id := range p.EnabledDerivedProductTypes {
			if !reachable[id] {
				return reject(CodeRule, "derived Product Type %s does not match a valid derived product for enabled Product Types", id)
			}
		}
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.EventType{
			ID:                         p.ID,
			Typology:                   p.Typology,
			Name:                       p.Name,
			Description:                p.Description,
			EnabledTaskTypes:           p.EnabledTaskTypes,
			EnabledProductTypes:        p.EnabledProductTypes,
			Parameters:                 p.Parameters,
			EnabledDerivedProductTypes: p.EnabledDerivedProductTypes,
		}),
	})
}

func createPropertyType(ctx context.Context, led state.Context, signer string, _ entity.Timestamp, p *CreatePropertyType) error {
	if p.ID == "" {
		return reject(CodeMissingField, "no id specified")
	}
	if p.Name == "" {
		return reject(CodeMissingField, "no name specified")
	}
	if !validDataType(p.DataType) {
		return reject(CodeMalformed, "data type doesn't match any possible value: %s", p.DataType)
	}
	if err := requireSystemAdmin(ctx, led, signer); err != nil {
		return err
	}

	address := addressing.PropertyTypeAddress(p.ID)
	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if len(st[address]) > 0 {
		return reject(CodeRule, "the id %s belongs to another Property Type", p.ID)
	}

	if err := checkTypeIDs(ctx, led, p.EnabledTaskTypes, addressing.TaskTypeAddress, "Task Type"); err != nil {
		return err
	}
	if err := checkTypeIDs(ctx, led, p.EnabledProductTypes, addressing.ProductTypeAddress, "Product Type"); err != nil {
		return err
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.PropertyType{
			ID:                  p.ID,
			Name:                p.Name,
			DataType:            p.DataType,
			EnabledTaskTypes:    p.EnabledTaskTypes,
			EnabledProductTypes: p.EnabledProductTypes,
		}),
	})
}

func validTypology(t entity.Typology) bool {
	for _, v := range entity.Typologies {
		if v == t {
			return true
		}
	}
	return false
}

func validDataType(t entity.DataType) bool {
	for _, v := range entity.DataTypes {
		if v == t {
			return true
		}
	}
	return false
}

func validUnitOfMeasure(u entity.UnitOfMeasure) bool {
	for _, v := range entity.UnitsOfMeasure {
		if v == u {
			return true
		}
	}
	return false
}
