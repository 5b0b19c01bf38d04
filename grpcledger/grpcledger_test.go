package grpcledger

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"agriledger/addressing"
	"agriledger/docstore"
	"agriledger/entity"
	"agriledger/handler"
	"agriledger/keys"
	"agriledger/state"
)

func dialTestServer(t *testing.T, srv *Server) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	gs := grpc.NewServer()
	RegisterLedgerServer(gs, srv)

	go func() {
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewLedgerClient(cc), Timeout: 2 * time.Second}
}

func TestApplyMutatesServerState(t *testing.T) {
	led := state.NewMemLedger()
	client := dialTestServer(t, &Server{Ledger: led})
	ctx := context.Background()

	priv, err := keys.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	signer := keys.PublicKeyHex(priv)

	payload, err := handler.EncodePayload(handler.Payload{
		Action:    handler.ActionCreateSystemAdmin,
		Timestamp: entity.Timestamp{Seconds: 1},
	})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	action, err := client.Apply(ctx, Transaction{Signer: signer, Payload: payload})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if action != string(handler.ActionCreateSystemAdmin) {
		t.Fatalf("applied action = %s", action)
	}

	b, err := client.GetState(ctx, addressing.SystemAdminAddress())
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	admin, err := entity.Decode[entity.SystemAdmin](b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if admin.PublicKey != signer {
		t.Fatalf("system admin = %s, want %s", admin.PublicKey, signer)
	}
}

func TestRejectionSurvivesTheWire(t *testing.T) {
	led := state.NewMemLedger()
	client := dialTestServer(t, &Server{Ledger: led})
	ctx := context.Background()

	priv, err := keys.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	signer := keys.PublicKeyHex(priv)

	payload, err := handler.EncodePayload(handler.Payload{
		Action:    handler.ActionCreateTaskType,
		Timestamp: entity.Timestamp{Seconds: 1},
		CreateTaskType: &handler.CreateTaskType{
			ID: "harvester", Task: "Harvesting",
		},
	})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	// No System Admin recorded yet, so this signer lacks the role.
	_, err = client.Apply(ctx, Transaction{Signer: signer, Payload: payload})
	if err == nil {
		t.Fatalf("expected a rejection")
	}
	if handler.RejectionCode(err) != handler.CodeUnauthorized {
		t.Fatalf("rejection code = %q (%v)", handler.RejectionCode(err), err)
	}
}

func TestSignatureEnforcement(t *testing.T) {
	led := state.NewMemLedger()
	client := dialTestServer(t, &Server{Ledger: led, RequireSignatures: true})
	ctx := context.Background()

	priv, err := keys.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey: %v", err)
	}
	signer := keys.PublicKeyHex(priv)

	payload, err := handler.EncodePayload(handler.Payload{
		Action:    handler.ActionCreateSystemAdmin,
		Timestamp: entity.Timestamp{Seconds: 1},
	})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	if _, err := client.Apply(ctx, Transaction{Signer: signer, Payload: payload}); err == nil {
		t.Fatalf("unsigned transaction should be refused")
	}

	tx := Transaction{
		Signer:    signer,
		Signature: keys.Sign(priv, payload),
		Payload:   payload,
	}
	if _, err := client.Apply(ctx, tx); err != nil {
		t.Fatalf("signed Apply: %v", err)
	}
}

func TestGetStateValidatesAddress(t *testing.T) {
	led := state.NewMemLedger()
	client := dialTestServer(t, &Server{Ledger: led})

	if _, err := client.GetState(context.Background(), "not-an-address"); err == nil {
		t.Fatalf("invalid address should be refused")
	}

	// A valid address with no record reads as empty bytes.
	b, err := client.GetState(context.Background(), addressing.BatchAddress("missing"))
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(b) != 0 {
		t.Fatalf("absent record should be empty, got %q", b)
	}
}

func TestDocsServiceRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	gs := grpc.NewServer()
	RegisterDocsServer(gs, &DocsServer{Store: docstore.NewMemory()})

	go func() {
		_ = gs.Serve(lis)
	}()
	defer gs.Stop()

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	defer cc.Close()

	client := NewDocsClient(cc)
	ctx := context.Background()
	doc := []byte("organic certification, 2026 season")

	put, err := client.Put(ctx, wrapperspb.Bytes(doc))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := client.Get(ctx, put)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.GetValue()) != string(doc) {
		t.Fatalf("document mismatch")
	}
	has, err := client.Has(ctx, put)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !has.GetValue() {
		t.Fatalf("Has: expected true")
	}
}
