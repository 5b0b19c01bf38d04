package handler

import (
	"context"

	"agriledger/addressing"
	"agriledger/entity"
	"agriledger/state"
)

// createSystemAdmin records the transaction signer as the singleton System
// Admin. Rejected once a System Admin exists.
func createSystemAdmin(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp) error {
	address := addressing.SystemAdminAddress()

	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	if len(st[address]) > 0 {
		return reject(CodeRule, "the System Admin is already recorded")
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.SystemAdmin{
			PublicKey: signer,
			Timestamp: timestamp,
		}),
	})
}

// updateSystemAdmin reassigns the singleton System Admin to a new public key.
func updateSystemAdmin(ctx context.Context, led state.Context, signer string, timestamp entity.Timestamp, p *UpdateSystemAdmin) error {
	if !isValidPublicKey(p.PublicKey) {
		return reject(CodeMalformed, "the public key field doesn't contain a valid public key")
	}

	address := addressing.SystemAdminAddress()

	st, err := led.GetState(ctx, []string{address})
	if err != nil {
		return err
	}
	systemAdmin, err := entity.Decode[entity.SystemAdmin](st[address])
	if err != nil {
		return err
	}
	if systemAdmin.PublicKey == "" {
		return reject(CodeNotFound, "no System Admin recorded")
	}
	if systemAdmin.PublicKey != signer {
		return reject(CodeUnauthorized, "the signer is not the System Admin")
	}

	// Also catches the no-op case: the current key is registered as the
	// System Admin itself.
	if err := checkPublicKeyUnused(ctx, led, p.PublicKey); err != nil {
		return err
	}

	return led.SetState(ctx, map[string][]byte{
		address: entity.MustEncode(entity.SystemAdmin{
			PublicKey: p.PublicKey,
			Timestamp: timestamp,
		}),
	})
}
