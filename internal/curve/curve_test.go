package curve

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestNormalizeSVector(t *testing.T) {
	// n-1, the largest valid scalar, normalizes to 1.
	nMinus1 := mustHex(t, "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364140")
	got, err := NormalizeS(nMinus1)
	require.NoError(t, err)
	want := make([]byte, 32)
	want[31] = 1
	require.Equal(t, want, got)
}

func TestNormalizeSIdempotent(t *testing.T) {
	s := mustHex(t, "000000000000000000000000000000000000000000000000000000000000002a")
	once, err := NormalizeS(s)
	require.NoError(t, err)
	twice, err := NormalizeS(once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestNormalizeSRejectsOutOfRange(t *testing.T) {
	zero := make([]byte, 32)
	_, err := NormalizeS(zero)
	require.Error(t, err)

	nBytes := make([]byte, 32)
	N.FillBytes(nBytes)
	_, err = NormalizeS(nBytes)
	require.Error(t, err)

	_, err = NormalizeS(make([]byte, 31))
	require.Error(t, err)
}

func TestIsLowS(t *testing.T) {
	low := make([]byte, 32)
	low[31] = 1
	require.True(t, IsLowS(low))

	high := make([]byte, 32)
	HalfN.FillBytes(high) // == HalfN exactly, still low-S (boundary inclusive)
	require.True(t, IsLowS(high))
}

func TestRecoverRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg := []byte("nfc-authenticated mint")
	hash := sha256.Sum256(msg)

	sig, err := ecdsa.SignCompact(priv, hash[:], false)
	require.NoError(t, err)
	// SignCompact returns [recoveryByte || r(32) || s(32)]; recoveryByte
	// encodes rid as 27+rid (compressed-hint bits unset since compressed=false).
	rid := sig[0] - 27
	r, s := sig[1:33], sig[33:65]

	pub, err := Recover(hash[:], r, s, rid)
	require.NoError(t, err)
	require.NotNil(t, pub)

	require.Equal(t, priv.PubKey().SerializeUncompressed(), pub.SerializeUncompressed())
}

func TestRecoverWrongRidMisses(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	msg := []byte("nfc-authenticated claim")
	hash := sha256.Sum256(msg)

	sig, err := ecdsa.SignCompact(priv, hash[:], false)
	require.NoError(t, err)
	rid := sig[0] - 27
	r, s := sig[1:33], sig[33:65]
	want := priv.PubKey().SerializeUncompressed()

	matches := 0
	for cand := byte(0); cand < 4; cand++ {
		pub, err := Recover(hash[:], r, s, cand)
		require.NoError(t, err)
		if pub == nil {
			continue
		}
		if string(pub.SerializeUncompressed()) == string(want) {
			matches++
			require.Equal(t, rid, cand, "candidate rid matched but signer used a different rid")
		}
	}
	require.Equal(t, 1, matches)
}

func TestRecoverRejectsBadLengths(t *testing.T) {
	good := make([]byte, 32)
	_, err := Recover(make([]byte, 31), good, good, 0)
	require.Error(t, err)

	_, err = Recover(good, make([]byte, 10), good, 0)
	require.Error(t, err)

	_, err = Recover(good, good, good, 4)
	require.Error(t, err)
}

func TestUncompressed65RoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	enc := Uncompressed65(priv.PubKey())
	require.Equal(t, byte(0x04), enc[0])

	pub, err := ParseUncompressed65(enc[:])
	require.NoError(t, err)
	require.Equal(t, enc[:], pub.SerializeUncompressed())
}

func TestParseUncompressed65RejectsBadPrefix(t *testing.T) {
	b := make([]byte, 65)
	b[0] = 0x02
	_, err := ParseUncompressed65(b)
	require.Error(t, err)
}
