// Package nonce coordinates the replay-nonce read the orchestrator needs
// before building a new authorization message. The contract, not the
// host, owns nonce state — this package only ever reads it.
package nonce

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stellar/go/xdr"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

const getNonceFn = "get_nonce"

// Reader is the subset of *contract.Client this package depends on, kept
// narrow so NextNonce can be tested against a fake.
type Reader interface {
	SimulateOnly(ctx context.Context, fn string, args []xdr.ScVal) (xdr.ScVal, error)
}

// NextNonce reads the contract's stored nonce for a 65-byte uncompressed
// chip public key and returns the nonce the next operation must carry.
// get_nonce has no typed error variant of its own to distinguish "unknown
// key" from any other simulation failure, so a ContractSimulation error —
// meaning the RPC call itself succeeded but the contract's own simulation
// rejected the read — is read as "key not seen" and bootstraps at 0. Any
// other kind (Transport, Validation, ...) means the read itself never
// reached a verdict and propagates instead of laundering into a nonce.
func NextNonce(ctx context.Context, r Reader, pubKey65 []byte, log *zerolog.Logger) (uint32, error) {
	if len(pubKey65) != 65 {
		return 0, apperrors.New(apperrors.Validation, "public key must be 65 bytes")
	}
	l := logOrNop(log)

	arg, err := xdr.NewScVal(xdr.ScValTypeScvBytes, xdr.ScBytes(pubKey65))
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.Validation, "encoding public key argument")
	}

	ret, err := r.SimulateOnly(ctx, getNonceFn, []xdr.ScVal{arg})
	if err != nil {
		if !apperrors.Is(err, apperrors.ContractSimulation) {
			return 0, err
		}
		l.Debug().Msg("get_nonce: key not seen, bootstrapping at nonce 0")
		return 0, nil
	}

	stored, ok := ret.GetU32()
	if !ok {
		return 0, apperrors.New(apperrors.ContractSimulation, "get_nonce returned a non-u32 value")
	}
	next := uint32(stored) + 1
	l.Debug().Uint32("stored_nonce", uint32(stored)).Uint32("next_nonce", next).Msg("resolved nonce")
	return next, nil
}

// logOrNop returns a disabled logger when log is nil.
func logOrNop(log *zerolog.Logger) zerolog.Logger {
	if log == nil {
		return zerolog.Nop()
	}
	return *log
}
