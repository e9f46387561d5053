// Package curve implements the secp256k1 primitives the signing pipeline
// needs off the chip: low-S normalization and public-key recovery. Built on
// the same btcec/decred stack the teacher's session-key derivation
// (generateSharedSecret) and signature verification (check.go, read.go)
// already use, rather than hand-rolling field arithmetic.
package curve

import (
	"errors"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// N is the secp256k1 group order.
var N, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

// HalfN is floor(N/2), the low-S threshold: normalized signatures satisfy
// s <= HalfN.
var HalfN = new(big.Int).Rsh(N, 1)

// NormalizeS enforces low-S form on a 32-byte big-endian scalar: if s > n/2
// it returns n - s, otherwise s unchanged. Rejects s outside [1, n-1].
func NormalizeS(s []byte) ([]byte, error) {
	if len(s) != 32 {
		return nil, errors.New("curve: s must be 32 bytes")
	}

	sv := new(big.Int).SetBytes(s)
	if sv.Sign() == 0 || sv.Cmp(N) >= 0 {
		return nil, errors.New("curve: s out of range [1, n-1]")
	}

	if sv.Cmp(HalfN) > 0 {
		sv.Sub(N, sv)
	}

	out := make([]byte, 32)
	sv.FillBytes(out)
	return out, nil
}

// IsLowS reports whether a 32-byte big-endian scalar is already in low-S
// form (s <= n/2). A malformed (wrong-length or out-of-range) scalar is
// reported as not low-S.
func IsLowS(s []byte) bool {
	if len(s) != 32 {
		return false
	}
	sv := new(big.Int).SetBytes(s)
	return sv.Sign() > 0 && sv.Cmp(N) < 0 && sv.Cmp(HalfN) <= 0
}

// Recover performs ECDSA public-key recovery on secp256k1 for one candidate
// recovery id. msgHash, r and s must each be exactly 32 bytes; rid must be
// in [0,3].
//
// A degenerate candidate (out-of-range r/s, point at infinity, or any other
// input btcec's compact recovery rejects) is reported as (nil, nil) rather
// than an error: trying all four rids and discarding the ones that don't
// recover is the normal operation of the resolver built on top of this
// function, not a failure of Recover itself.
func Recover(msgHash, r, s []byte, rid byte) (*btcec.PublicKey, error) {
	if len(msgHash) != 32 {
		return nil, errors.New("curve: msgHash must be 32 bytes")
	}
	if len(r) != 32 || len(s) != 32 {
		return nil, errors.New("curve: r and s must each be 32 bytes")
	}
	if rid > 3 {
		return nil, errors.New("curve: rid must be in [0,3]")
	}

	// ecdsa.RecoverCompact expects [recoveryByte || r(32) || s(32)] with
	// recoveryByte = 27 + rid (the same shape the teacher's
	// signatureToPublicKey builds in utils.go before calling RecoverCompact).
	compact := make([]byte, 65)
	compact[0] = 27 + rid
	copy(compact[1:33], r)
	copy(compact[33:65], s)

	pub, _, err := ecdsa.RecoverCompact(compact, msgHash)
	if err != nil {
		return nil, nil
	}
	return pub, nil
}

// Uncompressed65 serializes pub as 0x04 || X(32) || Y(32).
func Uncompressed65(pub *btcec.PublicKey) [65]byte {
	var out [65]byte
	copy(out[:], pub.SerializeUncompressed())
	return out
}

// ParseUncompressed65 validates and parses a 65-byte uncompressed public key
// (leading byte must be 0x04).
func ParseUncompressed65(b []byte) (*btcec.PublicKey, error) {
	if len(b) != 65 {
		return nil, errors.New("curve: expected a 65-byte public key")
	}
	if b[0] != 0x04 {
		return nil, errors.New("curve: expected uncompressed key prefix 0x04")
	}
	return btcec.ParsePubKey(b)
}
