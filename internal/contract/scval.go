package contract

import (
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// addressScVal builds an xdr.ScVal for a G.../C... StrKey address, the
// typed Address argument every write method in this ABI takes at least
// once.
func addressScVal(strKeyAddr string) (xdr.ScVal, error) {
	switch {
	case strkey.IsValidEd25519PublicKey(strKeyAddr):
		var pk xdr.AccountId
		if err := pk.SetAddress(strKeyAddr); err != nil {
			return xdr.ScVal{}, apperrors.Wrap(err, apperrors.Validation, "parsing account address")
		}
		addr := xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &pk}
		return xdr.NewScVal(xdr.ScValTypeScvAddress, addr)
	case strkey.IsValidContractAddress(strKeyAddr):
		raw, err := strkey.Decode(strkey.VersionByteContract, strKeyAddr)
		if err != nil {
			return xdr.ScVal{}, apperrors.Wrap(err, apperrors.Validation, "parsing contract address")
		}
		var hash xdr.Hash
		copy(hash[:], raw)
		addr := xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &hash}
		return xdr.NewScVal(xdr.ScValTypeScvAddress, addr)
	default:
		return xdr.ScVal{}, apperrors.New(apperrors.Validation, fmt.Sprintf("address %q is neither a G... nor C... StrKey", strKeyAddr))
	}
}

// bytesScVal builds a ScvBytes argument of exactly wantLen bytes.
func bytesScVal(b []byte, wantLen int) (xdr.ScVal, error) {
	if wantLen > 0 && len(b) != wantLen {
		return xdr.ScVal{}, apperrors.New(apperrors.Validation, fmt.Sprintf("expected %d bytes, got %d", wantLen, len(b)))
	}
	return xdr.NewScVal(xdr.ScValTypeScvBytes, xdr.ScBytes(b))
}

func u32ScVal(v uint32) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvU32, xdr.Uint32(v))
}

func u64ScVal(v uint64) (xdr.ScVal, error) {
	return xdr.NewScVal(xdr.ScValTypeScvU64, xdr.Uint64(v))
}

// decodeAddress renders an ScAddress back to its canonical StrKey string.
// Per the design decision recorded for this package, contract addresses
// are always decoded to the G.../C... string form rather than left as
// opaque bytes.
func decodeAddress(v xdr.ScVal) (string, error) {
	addr, ok := v.GetAddress()
	if !ok {
		return "", apperrors.New(apperrors.ContractExecution, "expected an Address-typed return value")
	}
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		return addr.AccountId.Address(), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		return strkey.Encode(strkey.VersionByteContract, addr.ContractId[:])
	default:
		return "", apperrors.New(apperrors.ContractExecution, "unsupported ScAddress type")
	}
}

func decodeU32(v xdr.ScVal) (uint32, bool) {
	u, ok := v.GetU32()
	return uint32(u), ok
}

func decodeU64(v xdr.ScVal) (uint64, bool) {
	u, ok := v.GetU64()
	return uint64(u), ok
}

// DecodeTokenID reads a u64 token id out of an invocation's return value —
// mint and claim both hand the caller the token id this way.
func DecodeTokenID(v xdr.ScVal) (uint64, bool) {
	return decodeU64(v)
}

func decodeString(v xdr.ScVal) (string, bool) {
	if s, ok := v.GetStr(); ok {
		return string(s), true
	}
	if b, ok := v.GetBytes(); ok {
		return string(b), true
	}
	return "", false
}

func decodeBytes(v xdr.ScVal) ([]byte, bool) {
	b, ok := v.GetBytes()
	return []byte(b), ok
}
