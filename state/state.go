// Package state defines the ledger context a handler reads from and writes
// to, and an in-memory implementation of it.
package state

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned by a ledger whose backing context is gone.
	ErrClosed = errors.New("state: ledger closed")
)

// Context is the batched key-value accessor the surrounding ledger exposes to
// a handler.
//
// Contract:
//   - GetState MUST return an entry for every requested address; absent
//     records are present in the result map as empty byte slices.
//   - SetState MUST apply the whole update map atomically or not at all.
//   - The surrounding layer serializes handler invocations: no other writer
//     is observed between one handler's GetState and its SetState.
type Context interface {
	GetState(ctx context.Context, addresses []string) (map[string][]byte, error)
	SetState(ctx context.Context, updates map[string][]byte) error
}
