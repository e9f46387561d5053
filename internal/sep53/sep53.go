// Package sep53 builds the deterministic off-chain-signed authorization
// message the chip signs and the contract reconstructs independently:
// network hash || contract id || function name || json(args) || nonce.
package sep53

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/chimpdao/nfcauth/internal/hexutil"
)

// FunctionName enumerates the only function names this builder will ever
// sign for. A message built for anything else would have no corresponding
// contract-side verification path.
type FunctionName string

const (
	FunctionMint     FunctionName = "mint"
	FunctionClaim    FunctionName = "claim"
	FunctionTransfer FunctionName = "transfer"
)

func (fn FunctionName) valid() bool {
	switch fn {
	case FunctionMint, FunctionClaim, FunctionTransfer:
		return true
	default:
		return false
	}
}

// Built holds the constructed message and its hash. Message is kept around
// because C11 submits it verbatim as the `message` argument; Hash is what
// the chip actually signs.
type Built struct {
	Message []byte
	Hash    [32]byte
}

// Build constructs the SEP-53 message for one operation.
//
// contractIDHex is the canonical 32-byte Soroban contract id, hex-encoded
// (with or without a 0x prefix). args is a flat ordered list of address
// strings or decimal-string-encoded integers, encoded as a minimal JSON
// array of strings — no whitespace, no reordering, never a nested shape.
func Build(networkPassphrase string, contractIDHex string, fn FunctionName, args []string, nonce uint32) (Built, error) {
	if !fn.valid() {
		return Built{}, fmt.Errorf("sep53: unknown function name %q", fn)
	}

	hNet := sha256.Sum256([]byte(networkPassphrase))
	if len(hNet) != 32 {
		return Built{}, fmt.Errorf("sep53: network hash is %d bytes, want 32", len(hNet))
	}

	cid, err := hexutil.DecodeHex(contractIDHex)
	if err != nil {
		return Built{}, fmt.Errorf("sep53: contract id: %w", err)
	}
	if len(cid) != 32 {
		return Built{}, fmt.Errorf("sep53: contract id is %d bytes, want 32", len(cid))
	}

	js, err := encodeArgs(args)
	if err != nil {
		return Built{}, fmt.Errorf("sep53: %w", err)
	}

	nb := hexutil.BEUint32ToBytes(nonce)

	message := make([]byte, 0, len(hNet)+len(cid)+len(fn)+len(js)+len(nb))
	message = append(message, hNet[:]...)
	message = append(message, cid...)
	message = append(message, []byte(fn)...)
	message = append(message, js...)
	message = append(message, nb...)

	hash := sha256.Sum256(message)
	if len(hash) != 32 {
		return Built{}, fmt.Errorf("sep53: message hash is %d bytes, want 32", len(hash))
	}

	return Built{Message: message, Hash: hash}, nil
}

// encodeArgs produces the minimal JSON array-of-strings form: no
// whitespace, no key reordering (there are no keys — arrays only).
func encodeArgs(args []string) ([]byte, error) {
	if args == nil {
		args = []string{}
	}
	js, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encoding args: %w", err)
	}
	return js, nil
}
