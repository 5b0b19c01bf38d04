package handler

import (
	"context"
	"testing"

	"agriledger/addressing"
	"agriledger/entity"
)

func TestCreateTaskType(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()

	mustOK(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{ID: "harvester", Task: "Harvesting"}))

	got := getEntity[entity.TaskType](t, led, addressing.TaskTypeAddress("harvester"))
	if got.ID != "harvester" || got.Task != "Harvesting" {
		t.Fatalf("stored task type = %+v", got)
	}

	mustReject(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{ID: "harvester", Task: "Other"}), CodeRule)
	mustReject(t, createTaskType(ctx, led, adminKey, ts(2), &CreateTaskType{ID: "x", Task: "y"}), CodeUnauthorized)
	mustReject(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{Task: "y"}), CodeMissingField)
	mustReject(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{ID: "x"}), CodeMissingField)
}

func TestCreateProductType(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()

	mustOK(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
		ID: "flour", Name: "Flour", Measure: entity.UnitKilos,
	}))
	mustOK(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
		ID: "wheat", Name: "Wheat", Measure: entity.UnitKilos,
		DerivedProductTypes: []entity.DerivedProductType{{ProductTypeID: "flour", ConversionRate: 2}},
	}))

	got := getEntity[entity.ProductType](t, led, addressing.ProductTypeAddress("wheat"))
	if len(got.DerivedProductTypes) != 1 || got.DerivedProductTypes[0].ConversionRate != 2 {
		t.Fatalf("stored product type = %+v", got)
	}

	t.Run("invalidMeasure", func(t *testing.T) {
		mustReject(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
			ID: "milk", Name: "Milk", Measure: "GALLONS",
		}), CodeMalformed)
	})

	t.Run("nonPositiveConversionRate", func(t *testing.T) {
		mustReject(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
			ID: "rye", Name: "Rye", Measure: entity.UnitKilos,
			DerivedProductTypes: []entity.DerivedProductType{{ProductTypeID: "flour", ConversionRate: 0}},
		}), CodeRule)
	})

	t.Run("unknownDerived", func(t *testing.T) {
		mustReject(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
			ID: "barley", Name: "Barley", Measure: entity.UnitKilos,
			DerivedProductTypes: []entity.DerivedProductType{{ProductTypeID: "malt", ConversionRate: 1}},
		}), CodeNotFound)
	})
}

func TestCreateEventParameterType(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()

	mustOK(t, createEventParameterType(ctx, led, saKey, ts(2), &CreateEventParameterType{
		ID: "moisture", Name: "Moisture", DataType: entity.DataTypeNumber,
	}))
	mustReject(t, createEventParameterType(ctx, led, saKey, ts(2), &CreateEventParameterType{
		ID: "bad", Name: "Bad", DataType: "FLOAT",
	}), CodeMalformed)
}

func TestCreateEventType(t *testing.T) {
	led := newLedger(t)
	seedTypes(t, led)
	ctx := context.Background()

	t.Run("transformationNeedsDerived", func(t *testing.T) {
		mustReject(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
			ID: "t1", Typology: entity.TypologyTransformation,
			Name: "T", Description: "d",
			EnabledTaskTypes:    []string{"miller"},
			EnabledProductTypes: []string{"wheat"},
		}), CodeMissingField)
	})

	t.Run("descriptionForbidsDerived", func(t *testing.T) {
		mustReject(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
			ID: "d1", Typology: entity.TypologyDescription,
			Name: "D", Description: "d",
			EnabledTaskTypes:           []string{"miller"},
			EnabledProductTypes:        []string{"wheat"},
			EnabledDerivedProductTypes: []string{"flour"},
		}), CodeRule)
	})

	t.Run("derivedMustBeReachable", func(t *testing.T) {
		// flour has no derived entries, so flour -> flour is not a valid
		// conversion for any enabled product.
		mustReject(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
			ID: "t2", Typology: entity.TypologyTransformation,
			Name: "T", Description: "d",
			EnabledTaskTypes:           []string{"miller"},
			EnabledProductTypes:        []string{"flour"},
			EnabledDerivedProductTypes: []string{"flour"},
		}), CodeRule)
	})

	t.Run("unknownTask", func(t *testing.T) {
		mustReject(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
			ID: "d2", Typology: entity.TypologyDescription,
			Name: "D", Description: "d",
			EnabledTaskTypes:    []string{"pilot"},
			EnabledProductTypes: []string{"wheat"},
		}), CodeNotFound)
	})

	t.Run("invalidTypology", func(t *testing.T) {
		mustReject(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
			ID: "d3", Typology: "MUTATION", Name: "D", Description: "d",
		}), CodeMalformed)
	})
}

func TestCreatePropertyType(t *testing.T) {
	led := newLedger(t)
	seedTypes(t, led)
	ctx := context.Background()

	got := getEntity[entity.PropertyType](t, led, addressing.PropertyTypeAddress("weight"))
	if got.DataType != entity.DataTypeNumber {
		t.Fatalf("stored property type = %+v", got)
	}

	mustReject(t, createPropertyType(ctx, led, saKey, ts(2), &CreatePropertyType{
		ID: "weight", Name: "Weight", DataType: entity.DataTypeNumber,
	}), CodeRule)
}

// Sibling kinds may reuse an id freely: addressing is kind-scoped.
func TestTypeIDsAreKindScoped(t *testing.T) {
	led := newLedger(t)
	ctx := context.Background()

	mustOK(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{ID: "shared", Task: "T"}))
	mustOK(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
		ID: "shared", Name: "P", Measure: entity.UnitUnits,
	}))
	mustOK(t, createEventParameterType(ctx, led, saKey, ts(2), &CreateEventParameterType{
		ID: "shared", Name: "E", DataType: entity.DataTypeString,
	}))
	mustOK(t, createPropertyType(ctx, led, saKey, ts(2), &CreatePropertyType{
		ID: "shared", Name: "Pr", DataType: entity.DataTypeString,
	}))
}
