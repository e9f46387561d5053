// Package recovery resolves the ECDSA recovery id the chip never tells the
// host: try all four candidates, recover a public key for each, and return
// the one that constant-time-matches the chip's known key. The chip wire
// protocol carries no rid field, so this is the single authoritative place
// that derives it — the rest of the pipeline must never assume a fixed rid.
package recovery

import (
	"github.com/chimpdao/nfcauth/internal/apperrors"
	"github.com/chimpdao/nfcauth/internal/curve"
	"github.com/chimpdao/nfcauth/internal/hexutil"
)

// Resolve tries rid in [0,3] and returns the first one whose recovered
// public key matches expectedPubKey65. expectedPubKey65 must be a 65-byte
// uncompressed key (0x04 || X || Y).
//
// Per the chip's own contract, at most one rid can match a given
// (msgHash, r, s, pubkey); this stops at the first match rather than
// verifying uniqueness, and never caches a result across calls.
func Resolve(msgHash, r, s, expectedPubKey65 []byte) (byte, error) {
	if len(expectedPubKey65) != 65 {
		return 0, apperrors.New(apperrors.Validation, "expected public key must be 65 bytes")
	}

	for rid := byte(0); rid < 4; rid++ {
		pub, err := curve.Recover(msgHash, r, s, rid)
		if err != nil {
			return 0, apperrors.Wrap(err, apperrors.Curve, "recovering candidate public key")
		}
		if pub == nil {
			continue
		}
		candidate := curve.Uncompressed65(pub)
		if hexutil.ConstEq(candidate[:], expectedPubKey65) {
			return rid, nil
		}
	}

	return 0, apperrors.New(apperrors.RecoveryIDUnmatched, "signature does not match chip key")
}
