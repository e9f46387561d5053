package recovery

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/chimpdao/nfcauth/internal/apperrors"
	"github.com/chimpdao/nfcauth/internal/curve"
)

func signForTest(t *testing.T, priv *btcec.PrivateKey, msg []byte) (hash, r, s []byte, rid byte) {
	t.Helper()
	h := sha256.Sum256(msg)
	sig, err := ecdsa.SignCompact(priv, h[:], false)
	require.NoError(t, err)
	return h[:], sig[1:33], sig[33:65], sig[0] - 27
}

func TestResolveFindsCorrectRid(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash, r, s, wantRid := signForTest(t, priv, []byte("mint to GA..."))

	pub65 := curve.Uncompressed65(priv.PubKey())
	gotRid, err := Resolve(hash, r, s, pub65[:])
	require.NoError(t, err)
	require.Equal(t, wantRid, gotRid)
}

func TestResolveNoMatchForDifferentKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash, r, s, _ := signForTest(t, priv, []byte("claim token 1"))

	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	otherPub65 := curve.Uncompressed65(other.PubKey())

	_, err = Resolve(hash, r, s, otherPub65[:])
	require.True(t, apperrors.Is(err, apperrors.RecoveryIDUnmatched))
}

func TestResolveRejectsBadKeyLength(t *testing.T) {
	_, err := Resolve(make([]byte, 32), make([]byte, 32), make([]byte, 32), make([]byte, 64))
	require.True(t, apperrors.Is(err, apperrors.Validation))
}
