package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chimpdao/nfcauth/internal/apperrors"
	"github.com/chimpdao/nfcauth/internal/chip"
	"github.com/chimpdao/nfcauth/internal/nonce"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "read the presented chip's identity and nonce, without signing or submitting anything",
		Action: runStatusCommand,
	}
}

func runStatusCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	sess, err := a.readers.Open(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	handler := chip.New(sess.Card(), a.cfg.KeyIndex, &a.log.Logger)
	auth, err := handler.ReadPublicKey(ctx)
	if err != nil {
		_ = sess.Invalidate("chip public key read failed")
		return err
	}
	if auth.PublicKey[0] != 0x04 {
		_ = sess.Invalidate("chip public key has unexpected prefix")
		return apperrors.New(apperrors.ChipProtocol, "chip public key record has wrong prefix byte")
	}

	n, err := nonce.NextNonce(ctx, a.client, auth.PublicKey[:], &a.log.Logger)
	if err != nil {
		_ = sess.Invalidate("nonce lookup failed")
		return err
	}

	a.log.Info().
		Str("public_key", hex.EncodeToString(auth.PublicKey[:])).
		Uint32("global_counter", auth.GlobalCounter).
		Uint32("key_counter", auth.KeyCounter).
		Uint32("next_nonce", n).
		Msg("chip status")
	fmt.Printf("public_key=%s global_counter=%d key_counter=%d next_nonce=%d\n",
		hex.EncodeToString(auth.PublicKey[:]), auth.GlobalCounter, auth.KeyCounter, n)
	return nil
}
