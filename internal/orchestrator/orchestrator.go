// Package orchestrator drives the three chip-authorized operation
// pipelines — mint, claim, transfer — each binding a reader session, the
// chip command handler, the SEP-53 message builder, the signature-shaping
// primitives, the recovery-id resolver, and the contract invoker into one
// sequenced call. Every public method follows the same public/private
// method-pair shape: open the resource, delegate to an unexported pipeline,
// and guarantee the resource is released on every exit path.
package orchestrator

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stellar/go/xdr"

	"github.com/chimpdao/nfcauth/internal/apperrors"
	"github.com/chimpdao/nfcauth/internal/chip"
	"github.com/chimpdao/nfcauth/internal/contract"
	"github.com/chimpdao/nfcauth/internal/curve"
	"github.com/chimpdao/nfcauth/internal/keystore"
	"github.com/chimpdao/nfcauth/internal/nonce"
	"github.com/chimpdao/nfcauth/internal/reader"
	"github.com/chimpdao/nfcauth/internal/recovery"
	"github.com/chimpdao/nfcauth/internal/sep53"
)

// Result is what every operation returns on success: the correlation id
// assigned at the start of the pipeline, the chip's public key and
// counters as read for this operation, the resolved recovery id, the
// nonce the contract call carried, and the terminal invocation result
// (e.g. a freshly minted token id, decoded by the caller from
// Invocation.ReturnValue).
type Result struct {
	CorrelationID string
	PublicKey     [65]byte
	GlobalCounter uint32
	KeyCounter    uint32
	RecoveryID    byte
	Nonce         uint32
	Invocation    contract.InvokeResult
}

// Orchestrator wires one reader, one chip key slot, one contract client,
// and one submitter key source into the three operation pipelines. A
// single instance is built once at startup and reused across operations —
// the at-most-one-active-session invariant is enforced by the
// reader.Manager it holds, not by this type.
type Orchestrator struct {
	readers  *reader.Manager
	keyIndex byte
	contract *contract.Client
	keys     keystore.Store
	log      *zerolog.Logger
}

// New constructs an Orchestrator. keyIndex selects which chip key slot
// every operation reads and signs with. log may be nil; each call to run
// derives a per-operation child logger carrying that run's correlation id,
// which is then threaded into the chip handler and contract client so
// every Debug line for one pipeline run shares the same correlation_id.
func New(readers *reader.Manager, keyIndex byte, contractClient *contract.Client, keys keystore.Store, log *zerolog.Logger) *Orchestrator {
	return &Orchestrator{readers: readers, keyIndex: keyIndex, contract: contractClient, keys: keys, log: log}
}

// buildArgs produces one operation's typed contract argument vector from
// the pipeline's shared auth tuple (message, signature, recovery id, chip
// public key, nonce).
type buildArgs func(message, sig64 []byte, rid uint32, pubKey65 []byte, nonce uint32) ([]xdr.ScVal, error)

// Mint runs the chip-authorized mint pipeline: a freshly read chip
// identity is bound to `to` as the new token's owner.
func (o *Orchestrator) Mint(ctx context.Context, to string) (Result, error) {
	return o.run(ctx, contract.FnMint, sep53.FunctionMint, []string{to}, func(message, sig64 []byte, rid uint32, pubKey65 []byte, n uint32) ([]xdr.ScVal, error) {
		return contract.MintArgs(to, message, sig64, rid, pubKey65, n)
	})
}

// Claim runs the chip-authorized claim pipeline: the chip identity read
// this session claims on behalf of claimant.
func (o *Orchestrator) Claim(ctx context.Context, claimant string) (Result, error) {
	return o.run(ctx, contract.FnClaim, sep53.FunctionClaim, []string{claimant}, func(message, sig64 []byte, rid uint32, pubKey65 []byte, n uint32) ([]xdr.ScVal, error) {
		return contract.ClaimArgs(claimant, message, sig64, rid, pubKey65, n)
	})
}

// Transfer runs the chip-authorized transfer pipeline: token tokenID moves
// from from to to, authorized by the chip identity bound to from.
func (o *Orchestrator) Transfer(ctx context.Context, from, to string, tokenID uint64) (Result, error) {
	args := []string{from, to, uint64Decimal(tokenID)}
	return o.run(ctx, contract.FnTransfer, sep53.FunctionTransfer, args, func(message, sig64 []byte, rid uint32, pubKey65 []byte, n uint32) ([]xdr.ScVal, error) {
		return contract.TransferArgs(from, to, tokenID, message, sig64, rid, pubKey65, n)
	})
}

// run is the common pipeline every operation follows (spec §4.10 steps
// 1-9): open a reader session, read the chip's public key, resolve the
// next nonce, build the SEP-53 message, request a chip signature,
// normalize it, resolve the recovery id against the key read in step 2,
// and hand off to the contract invoker. The session is closed on every
// exit path.
func (o *Orchestrator) run(ctx context.Context, fnName string, sepFn sep53.FunctionName, args []string, build buildArgs) (Result, error) {
	correlationID := uuid.NewString()
	opLog := logOrNop(o.log).With().Str("correlation_id", correlationID).Str("fn", fnName).Logger()
	contractClient := o.contract.WithLogger(&opLog)
	opLog.Debug().Msg("starting operation")

	sess, err := o.readers.Open(ctx)
	if err != nil {
		return Result{}, err
	}
	sess.SetLogger(&opLog)
	defer sess.Close()

	handler := chip.New(sess.Card(), o.keyIndex, &opLog)

	auth, err := handler.ReadPublicKey(ctx)
	if err != nil {
		_ = sess.Invalidate("chip public key read failed")
		return Result{}, err
	}
	if auth.PublicKey[0] != 0x04 {
		_ = sess.Invalidate("chip public key has unexpected prefix")
		return Result{}, apperrors.New(apperrors.ChipProtocol, "chip public key record has wrong prefix byte")
	}

	n, err := nonce.NextNonce(ctx, contractClient, auth.PublicKey[:], &opLog)
	if err != nil {
		_ = sess.Invalidate("nonce lookup failed")
		return Result{}, err
	}

	built, err := sep53.Build(contractClient.NetworkPassphrase(), contractClient.ContractIDHex(), sepFn, args, n)
	if err != nil {
		_ = sess.Invalidate("message construction failed")
		return Result{}, apperrors.Wrap(err, apperrors.Sep53, "building authorization message")
	}

	signed, err := handler.Sign(ctx, built.Hash[:])
	if err != nil {
		_ = sess.Invalidate("chip signature request failed")
		return Result{}, err
	}
	// Proceed even if key_counter==0 on a successful signature — the chip
	// has signed once, which is all step 6 of §4.10 requires.

	normS, err := curve.NormalizeS(signed.S[:])
	if err != nil {
		_ = sess.Invalidate("signature normalization failed")
		return Result{}, apperrors.Wrap(err, apperrors.Curve, "normalizing signature s")
	}

	sig64 := make([]byte, 64)
	copy(sig64[:32], signed.R[:])
	copy(sig64[32:], normS)

	rid, err := recovery.Resolve(built.Hash[:], signed.R[:], normS, auth.PublicKey[:])
	if err != nil {
		// determine_rid failing is a correctness failure, not a network
		// one: the session is invalidated and nothing is submitted.
		_ = sess.Invalidate("recovery id resolution failed")
		return Result{}, err
	}

	submitter, err := o.keys.Submitter()
	if err != nil {
		_ = sess.Invalidate("submitter key unavailable")
		return Result{}, err
	}

	scArgs, err := build(built.Message, sig64, uint32(rid), auth.PublicKey[:], n)
	if err != nil {
		_ = sess.Invalidate("argument vector construction failed")
		return Result{}, err
	}

	inv, err := contractClient.Invoke(ctx, submitter, fnName, scArgs)
	if err != nil {
		return Result{}, err
	}
	opLog.Debug().Int64("ledger", inv.Ledger).Msg("operation succeeded")

	return Result{
		CorrelationID: correlationID,
		PublicKey:     auth.PublicKey,
		GlobalCounter: auth.GlobalCounter,
		KeyCounter:    auth.KeyCounter,
		RecoveryID:    rid,
		Nonce:         n,
		Invocation:    inv,
	}, nil
}

func uint64Decimal(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// logOrNop returns a disabled logger when log is nil.
func logOrNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}
