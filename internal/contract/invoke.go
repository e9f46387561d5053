package contract

import (
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stellar/stellar-rpc/protocol"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// invokeOp builds the single InvokeHostFunction operation every write or
// simulate-only call in this package issues.
func invokeOp(contractID, fn string, args []xdr.ScVal) (*txnbuild.InvokeHostFunction, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Validation, "decoding contract id")
	}
	var hash xdr.Hash
	copy(hash[:], raw)

	argVec := xdr.ScVec(args)
	hostFn := xdr.HostFunction{
		Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
		InvokeContract: &xdr.InvokeContractArgs{
			ContractAddress: xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &hash},
			FunctionName:    xdr.ScSymbol(fn),
			Args:            argVec,
		},
	}

	return &txnbuild.InvokeHostFunction{HostFunction: hostFn}, nil
}

// assembleWithFootprint applies the simulation's resource footprint and
// fee to an unsigned transaction, the step between simulate and sign every
// Soroban invocation needs. The high-level builder has no one-call
// equivalent, so this manipulates the transaction envelope directly —
// the same level the rest of the Soroban tooling operates at.
func assembleWithFootprint(tx *txnbuild.Transaction, sorobanDataXDR string, minResourceFee int64) (*txnbuild.Transaction, error) {
	envelopeB64, err := tx.Base64()
	if err != nil {
		return nil, err
	}

	var envelope xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(envelopeB64, &envelope); err != nil {
		return nil, err
	}
	if envelope.V1 == nil {
		return nil, apperrors.New(apperrors.ContractSimulation, "expected a V1 transaction envelope")
	}

	var sorobanData xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sorobanDataXDR, &sorobanData); err != nil {
		return nil, err
	}

	envelope.V1.Tx.Ext = xdr.TransactionExt{V: 1, SorobanData: &sorobanData}
	envelope.V1.Tx.Fee += xdr.Uint32(minResourceFee)

	assembledB64, err := xdr.MarshalBase64(envelope)
	if err != nil {
		return nil, err
	}

	generic, err := txnbuild.TransactionFromXDR(assembledB64)
	if err != nil {
		return nil, err
	}
	assembled, ok := generic.Transaction()
	if !ok {
		return nil, apperrors.New(apperrors.ContractSimulation, "assembled envelope is not a simple transaction")
	}
	return assembled, nil
}

// Contract error codes from errors.rs (NonFungibleTokenError), plus
// ReplayNonce which this ABI's nonce scheme requires and which the original
// contract's error enum has no slot for.
const (
	ErrNonExistentToken    uint32 = 200
	ErrIncorrectOwner      uint32 = 201
	ErrTokenIDsAreDepleted uint32 = 206
	ErrTokenAlreadyMinted  uint32 = 210
	ErrTokenAlreadyClaimed uint32 = 212
	ErrInvalidSignature    uint32 = 214
	ErrTokenNotClaimed     uint32 = 215
	ErrReplayNonce         uint32 = 220
)

// kindForContractCode maps a contract error code to a more specific Kind
// than the default ContractExecution, for the codes C12 calls out by name
// (spec.md §7: "already claimed" vs "bad signature" must be distinguishable).
func kindForContractCode(code uint32) (apperrors.Kind, bool) {
	switch code {
	case ErrReplayNonce:
		return apperrors.ReplayNonce, true
	default:
		return "", false
	}
}

// extractContractErrorCode scans a failed invocation's diagnostic events
// for the contract's own numeric error code (errors.rs), so C12 can tag a
// ContractExecution failure with e.g. "already claimed" rather than a bare
// trap.
func extractContractErrorCode(resp protocol.GetTransactionResponse) (uint32, bool) {
	for _, raw := range resp.DiagnosticEventsXDR {
		var ev xdr.DiagnosticEvent
		if err := xdr.SafeUnmarshalBase64(raw, &ev); err != nil {
			continue
		}
		body, ok := ev.Event.Body.GetV0()
		if !ok {
			continue
		}
		if body.Data.Type != xdr.ScValTypeScvError {
			continue
		}
		scErr, ok := body.Data.GetError()
		if !ok || scErr.Type != xdr.ScErrorTypeSctContract {
			continue
		}
		code, ok := scErr.GetContractCode()
		if !ok {
			continue
		}
		return uint32(code), true
	}
	return 0, false
}
