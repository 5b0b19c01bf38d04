// Package grpcledger exposes the ledger core over a small gRPC service:
// transaction submission plus raw state reads.
package grpcledger

import (
	"context"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"agriledger/addressing"
	"agriledger/handler"
	"agriledger/keys"
	"agriledger/state"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Transaction is the wire envelope submitted to Apply: the signer identity,
// an optional signature over the payload bytes, and the serialized action
// payload.
type Transaction struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature,omitempty"`
	Payload   []byte `json:"payload"`
}

// EncodeTransaction serializes a Transaction for submission.
func EncodeTransaction(tx Transaction) ([]byte, error) {
	return codec.Marshal(tx)
}

// Server exposes a state.Context plus the action dispatcher over the Ledger
// gRPC service. Transactions apply one at a time, in arrival order.
type Server struct {
	UnimplementedLedgerServer
	Ledger state.Context

	// RequireSignatures makes Apply verify each transaction's signature
	// against its signer key before dispatching.
	RequireSignatures bool

	mu sync.Mutex
}

func (s *Server) Apply(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.Ledger == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing ledger")
	}

	var tx Transaction
	if err := codec.Unmarshal(in.GetValue(), &tx); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed transaction")
	}
	signer := strings.ToLower(tx.Signer)
	if _, err := keys.ParsePublicKeyHex(signer); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid signer public key")
	}
	if s.RequireSignatures {
		if err := keys.Verify(signer, tx.Payload, tx.Signature); err != nil {
			return nil, status.Error(codes.Unauthenticated, "signature verification failed")
		}
	}

	payload, err := handler.DecodePayload(tx.Payload)
	if err != nil {
		return nil, mapErr(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := handler.Apply(ctx, s.Ledger, signer, payload); err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.String(string(payload.Action)), nil
}

func (s *Server) GetState(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Ledger == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing ledger")
	}
	address := in.GetValue()
	if !addressing.IsValidAddress(address) {
		return nil, status.Error(codes.InvalidArgument, "invalid state address")
	}
	st, err := s.Ledger.GetState(ctx, []string{address})
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(st[address]), nil
}
