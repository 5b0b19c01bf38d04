package handler

import (
	"context"
	"testing"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

func TestApplyRejectsUnsetTimestamp(t *testing.T) {
	led := state.NewMemLedger()
	err := Apply(context.Background(), led, saKey, Payload{Action: ActionCreateSystemAdmin})
	mustReject(t, err, CodeMissingField)
}

func TestApplyRejectsUnknownAction(t *testing.T) {
	led := state.NewMemLedger()
	err := Apply(context.Background(), led, saKey, Payload{Action: "DESTROY_LEDGER", Timestamp: ts(1)})
	mustReject(t, err, CodeUnknownAction)
}

func TestApplyRejectsMissingSubPayload(t *testing.T) {
	led := newLedger(t)
	err := Apply(context.Background(), led, saKey, Payload{Action: ActionCreateTaskType, Timestamp: ts(1)})
	mustReject(t, err, CodeMissingField)
}

func TestApplyRoutesToHandler(t *testing.T) {
	led := state.NewMemLedger()
	ctx := context.Background()

	mustOK(t, Apply(ctx, led, saKey, Payload{Action: ActionCreateSystemAdmin, Timestamp: ts(1)}))
	mustOK(t, Apply(ctx, led, saKey, Payload{
		Action:         ActionCreateTaskType,
		Timestamp:      ts(2),
		CreateTaskType: &CreateTaskType{ID: "harvester", Task: "Harvesting"},
	}))

	admin := getEntity[entity.SystemAdmin](t, led, addressing.SystemAdminAddress())
	if admin.PublicKey != saKey {
		t.Fatalf("system admin = %+v", admin)
	}
	task := getEntity[entity.TaskType](t, led, addressing.TaskTypeAddress("harvester"))
	if task.Task != "Harvesting" {
		t.Fatalf("task type = %+v", task)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	in := Payload{
		Action:    ActionCreateProposal,
		Timestamp: ts(9),
		CreateProposal: &CreateProposal{
			Batch:           "batch-1",
			ReceiverCompany: "0123456789",
			Notes:           "ship it",
		},
	}
	b, err := EncodePayload(in)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	out, err := DecodePayload(b)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if out.Action != in.Action || out.Timestamp != in.Timestamp {
		t.Fatalf("envelope mismatch: %+v", out)
	}
	if out.CreateProposal == nil || *out.CreateProposal != *in.CreateProposal {
		t.Fatalf("sub-payload mismatch: %+v", out.CreateProposal)
	}
	if out.AnswerProposal != nil || out.CreateField != nil {
		t.Fatalf("unrelated sub-payloads should stay nil")
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	if _, err := DecodePayload(nil); err == nil {
		t.Fatalf("empty payload should be rejected")
	}
	if _, err := DecodePayload([]byte("{broken")); err == nil {
		t.Fatalf("malformed payload should be rejected")
	}
}

// A rejected transaction must leave no partial writes.
func TestRejectedTransactionHasNoSideEffects(t *testing.T) {
	led := newLedger(t)
	seedTypes(t, led)
	seedCompany(t, led, adminKey, "wheat", "flour")
	seedOperator(t, led, adminKey, operatorKey, "miller")
	seedField(t, led, adminKey, "field-1", "wheat", 100)
	ctx := context.Background()

	before := led.Snapshot()

	err := Apply(ctx, led, operatorKey, Payload{
		Action:    ActionCreateTransformationEvent,
		Timestamp: ts(20),
		CreateTransformationEvent: &CreateTransformationEvent{
			EventTypeID:    "milling",
			Fields:         []string{"field-1"},
			Quantities:     []float64{1000},
			DerivedProduct: "flour",
			OutputBatchID:  "out",
		},
	})
	mustReject(t, err, CodeRule)

	after := led.Snapshot()
	if len(before) != len(after) {
		t.Fatalf("state size changed on rejection: %d -> %d", len(before), len(after))
	}
	for addr, b := range before {
		if string(after[addr]) != string(b) {
			t.Fatalf("record at %s changed on rejection", addr)
		}
	}
}
