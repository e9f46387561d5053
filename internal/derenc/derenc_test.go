package derenc

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// S2 from the signature fixtures: leading-zero-padded R and S strip cleanly.
func TestParseLeadingZeroPadding(t *testing.T) {
	der := mustHex(t,
		"3046"+
			"0221"+"00"+"FEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFE"+
			"0221"+"00"+"7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F")

	r, s, err := Parse(der)
	require.NoError(t, err)
	require.Len(t, r, 32)
	require.Len(t, s, 32)
	wantR := mustHex(t, "FEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFEFE")
	wantS := mustHex(t, "7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F7F")
	require.Equal(t, wantR, r)
	require.Equal(t, wantS, s)
}

func TestParseRejectsWrongOuterTag(t *testing.T) {
	der := mustHex(t, "3146020101020101")
	_, _, err := Parse(der)
	require.Error(t, err)
}

func TestParseRejectsWrongInnerTag(t *testing.T) {
	// second INTEGER tag swapped for OCTET STRING (0x04)
	der := mustHex(t, "3006"+"020101"+"040101")
	_, _, err := Parse(der)
	require.Error(t, err)
}

func TestParseRejectsLengthOverrun(t *testing.T) {
	der := mustHex(t, "3046020101020101")
	_, _, err := Parse(der)
	require.Error(t, err)
}

func TestParseRejectsTrailingBytes(t *testing.T) {
	der := mustHex(t, "3006020101020101"+"ff")
	_, _, err := Parse(der)
	require.Error(t, err)
}

func TestParseRejectsOversizedInteger(t *testing.T) {
	big33 := append([]byte{0x01}, bytes.Repeat([]byte{0xff}, 32)...) // 33 bytes, no leading zero to strip
	body := append(append([]byte{tagInteger, byte(len(big33))}, big33...), tagInteger, 0x01, 0x01)
	der := append(encodeLength(tagSequence, len(body)), body...)
	_, _, err := Parse(der)
	require.Error(t, err)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	n, _ := new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)

	for i := 0; i < 200; i++ {
		r := randScalar(t, n)
		s := randScalar(t, n)

		der, err := Encode(r, s)
		require.NoError(t, err)
		gotR, gotS, err := Parse(der)
		require.NoError(t, err)
		require.Equal(t, r, gotR)
		require.Equal(t, s, gotS)
	}
}

func randScalar(t *testing.T, n *big.Int) []byte {
	t.Helper()
	for {
		buf := make([]byte, 32)
		_, err := rand.Read(buf)
		require.NoError(t, err)
		v := new(big.Int).SetBytes(buf)
		if v.Sign() > 0 && v.Cmp(n) < 0 {
			return buf
		}
	}
}

func TestEncodeRejectsWrongLength(t *testing.T) {
	_, err := Encode(make([]byte, 31), make([]byte, 32))
	require.Error(t, err)
}
