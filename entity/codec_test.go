package entity

import (
	"reflect"
	"testing"
)

func TestRoundTripBatch(t *testing.T) {
	in := Batch{
		ID:            "b1",
		Company:       "c1",
		Product:       "flour",
		Quantity:      80,
		ParentFields:  []string{"addr-f1"},
		ParentBatches: []string{},
		Events: []Event{{
			EventType: "e1",
			Reporter:  "key",
			Values: []ParameterValue{{
				ParameterTypeID: "p1",
				NumberValue:     7,
			}},
			Quantity:  40,
			Timestamp: Timestamp{Seconds: 100},
		}},
		Certificates: []Certificate{{
			Authority: "ca",
			Link:      "https://example.com/doc",
			Hash:      "ab",
			Timestamp: Timestamp{Seconds: 101},
		}},
		Properties: []Property{{
			PropertyType: "pt1",
			Values: []PropertyValue{{
				NumberValue: 3.5,
				Timestamp:   Timestamp{Seconds: 102},
			}},
		}},
		Proposals: []Proposal{{
			SenderCompany:   "c1",
			ReceiverCompany: "c2",
			Status:          ProposalIssued,
			Notes:           "please",
			Timestamp:       Timestamp{Seconds: 103},
		}},
		Finalization: &Finalization{
			Reason:   ReasonSold,
			Reporter: "key",
		},
		Timestamp: Timestamp{Seconds: 99},
	}

	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode[Batch](b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestRoundTripCompany(t *testing.T) {
	in := Company{
		ID:                  "c1",
		Name:                "Mill Co",
		Description:         "flour mill",
		Website:             "https://mill.example",
		AdminPublicKey:      "02ab",
		EnabledProductTypes: []string{"wheat", "flour"},
		Fields:              []string{"addr-f1"},
		Operators:           []string{"02cd"},
		Batches:             []string{},
		Timestamp:           Timestamp{Seconds: 1},
	}
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode[Company](b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestRoundTripEventType(t *testing.T) {
	in := EventType{
		ID:                  "e1",
		Typology:            TypologyTransformation,
		Name:                "milling",
		Description:         "wheat to flour",
		EnabledTaskTypes:    []string{"miller"},
		EnabledProductTypes: []string{"wheat"},
		Parameters: []Parameter{{
			ParameterTypeID: "moisture",
			Required:        true,
			MinValue:        1,
			MaxValue:        100,
		}},
		EnabledDerivedProductTypes: []string{"flour"},
	}
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode[EventType](b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

// Decoding empty bytes yields the zero value. This is the canonical absence
// test every handler relies on.
func TestDecodeEmptyYieldsZeroValue(t *testing.T) {
	admin, err := Decode[SystemAdmin](nil)
	if err != nil {
		t.Fatalf("Decode[SystemAdmin](nil): %v", err)
	}
	if admin.PublicKey != "" || !admin.Timestamp.IsZero() {
		t.Fatalf("expected zero SystemAdmin, got %+v", admin)
	}

	batch, err := Decode[Batch]([]byte{})
	if err != nil {
		t.Fatalf("Decode[Batch](empty): %v", err)
	}
	if batch.ID != "" || batch.Quantity != 0 || len(batch.Events) != 0 || batch.Finalization != nil {
		t.Fatalf("expected zero Batch, got %+v", batch)
	}

	company, err := Decode[Company](nil)
	if err != nil {
		t.Fatalf("Decode[Company](nil): %v", err)
	}
	if company.ID != "" || len(company.EnabledProductTypes) != 0 {
		t.Fatalf("expected zero Company, got %+v", company)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode[Batch]([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed bytes")
	}
}

func TestTimestampIsZero(t *testing.T) {
	if !(Timestamp{}).IsZero() {
		t.Fatalf("zero timestamp should be unset")
	}
	if (Timestamp{Seconds: 1}).IsZero() {
		t.Fatalf("seconds-only timestamp should be set")
	}
	if (Timestamp{Nanos: 1}).IsZero() {
		t.Fatalf("nanos-only timestamp should be set")
	}
}

func TestIssuedProposalLookup(t *testing.T) {
	b := &Batch{Proposals: []Proposal{
		{SenderCompany: "c1", ReceiverCompany: "c2", Status: ProposalRejected},
		{SenderCompany: "c1", ReceiverCompany: "c3", Status: ProposalIssued},
	}}
	if !b.HasIssuedProposal() {
		t.Fatalf("expected an issued proposal")
	}
	p := b.IssuedProposal()
	if p == nil || p.ReceiverCompany != "c3" {
		t.Fatalf("IssuedProposal returned %+v", p)
	}

	p.Status = ProposalAccepted
	if b.HasIssuedProposal() {
		t.Fatalf("status change through the pointer should clear the issued state")
	}
}
