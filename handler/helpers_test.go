package handler

import (
	"context"
	"fmt"
	"testing"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

// Deterministic 66-hex-char test keys.
func testKey(n int) string {
	return fmt.Sprintf("02%064x", n)
}

var (
	saKey       = testKey(1)
	adminKey    = testKey(2)
	operatorKey = testKey(3)
	caKey       = testKey(4)
	admin2Key   = testKey(5)
	op2Key      = testKey(6)
)

func ts(seconds int64) entity.Timestamp {
	return entity.Timestamp{Seconds: seconds}
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func mustReject(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected rejection with code %s, got nil", code)
	}
	if got := RejectionCode(err); got != code {
		t.Fatalf("rejection code = %q (%v), want %s", got, err, code)
	}
}

func getEntity[T any](t *testing.T, led state.Context, address string) T {
	t.Helper()
	st, err := led.GetState(context.Background(), []string{address})
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	v, err := entity.Decode[T](st[address])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return v
}

// newLedger returns a fresh ledger with the System Admin recorded.
func newLedger(t *testing.T) *state.MemLedger {
	t.Helper()
	led := state.NewMemLedger()
	mustOK(t, createSystemAdmin(context.Background(), led, saKey, ts(1)))
	return led
}

// seedTypes registers the registry entries shared by the lifecycle tests:
// tasks harvester and miller, products wheat (derives flour at rate 2) and
// flour, a moisture parameter, description and transformation event types,
// and a weight property.
func seedTypes(t *testing.T, led state.Context) {
	t.Helper()
	ctx := context.Background()

	mustOK(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{ID: "harvester", Task: "Harvesting"}))
	mustOK(t, createTaskType(ctx, led, saKey, ts(2), &CreateTaskType{ID: "miller", Task: "Milling"}))

	mustOK(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
		ID: "flour", Name: "Flour", Measure: entity.UnitKilos,
	}))
	mustOK(t, createProductType(ctx, led, saKey, ts(2), &CreateProductType{
		ID: "wheat", Name: "Wheat", Measure: entity.UnitKilos,
		DerivedProductTypes: []entity.DerivedProductType{{ProductTypeID: "flour", ConversionRate: 2}},
	}))

	mustOK(t, createEventParameterType(ctx, led, saKey, ts(2), &CreateEventParameterType{
		ID: "moisture", Name: "Moisture", DataType: entity.DataTypeNumber,
	}))
	mustOK(t, createEventParameterType(ctx, led, saKey, ts(2), &CreateEventParameterType{
		ID: "note", Name: "Note", DataType: entity.DataTypeString,
	}))

	mustOK(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
		ID: "inspection", Typology: entity.TypologyDescription,
		Name: "Inspection", Description: "Field or batch inspection",
		EnabledTaskTypes:    []string{"harvester", "miller"},
		EnabledProductTypes: []string{"wheat", "flour"},
		Parameters: []entity.Parameter{
			{ParameterTypeID: "moisture", Required: true, MinValue: 1, MaxValue: 100},
			{ParameterTypeID: "note", Required: true, MinLength: 2, MaxLength: 10},
		},
	}))
	mustOK(t, createEventType(ctx, led, saKey, ts(2), &CreateEventType{
		ID: "milling", Typology: entity.TypologyTransformation,
		Name: "Milling", Description: "Wheat to flour",
		EnabledTaskTypes:           []string{"miller"},
		EnabledProductTypes:        []string{"wheat"},
		EnabledDerivedProductTypes: []string{"flour"},
	}))

	mustOK(t, createPropertyType(ctx, led, saKey, ts(2), &CreatePropertyType{
		ID: "weight", Name: "Weight", DataType: entity.DataTypeNumber,
		EnabledTaskTypes:    []string{"miller"},
		EnabledProductTypes: []string{"flour", "wheat"},
	}))
}

// seedCompany creates a Company for admin with the given enabled products and
// returns its id.
func seedCompany(t *testing.T, led state.Context, admin string, products ...string) string {
	t.Helper()
	mustOK(t, createCompany(context.Background(), led, saKey, ts(3), &CreateCompany{
		Name:                "Company " + admin[:8],
		Description:         "test company",
		Website:             "https://example.com",
		Admin:               admin,
		EnabledProductTypes: products,
	}))
	return addressing.CompanyID(admin)
}

func seedOperator(t *testing.T, led state.Context, admin, key, task string) {
	t.Helper()
	mustOK(t, createOperator(context.Background(), led, admin, ts(4), &CreateOperator{
		PublicKey: key,
		Task:      task,
	}))
}

func seedField(t *testing.T, led state.Context, admin, id, product string, quantity float64) {
	t.Helper()
	mustOK(t, createField(context.Background(), led, admin, ts(4), &CreateField{
		ID:          id,
		Description: "test field",
		Product:     product,
		Quantity:    quantity,
		Location:    &entity.Location{Latitude: 45.0, Longitude: 7.6},
	}))
}

// putBatch writes a Batch record directly and appends it to the owning
// Company's batch list, bypassing the transformation pipeline. Fixture only.
func putBatch(t *testing.T, led state.Context, b entity.Batch) {
	t.Helper()
	ctx := context.Background()
	address := addressing.BatchAddress(b.ID)
	company := getEntity[entity.Company](t, led, addressing.CompanyAddress(b.Company))
	company.Batches = append(company.Batches, address)
	err := led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(b),
		addressing.CompanyAddress(b.Company): entity.MustEncode(company),
	})
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}
}
