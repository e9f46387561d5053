package hexutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeHexPrefix(t *testing.T) {
	cases := []string{"0xdeadbeef", "0XDEADBEEF", "deadbeef"}
	for _, c := range cases {
		b, err := DecodeHex(c)
		require.NoError(t, err)
		require.Equal(t, "deadbeef", EncodeHex(b))
	}
}

func TestDecodeHexOddLength(t *testing.T) {
	_, err := DecodeHex("0xabc")
	require.Error(t, err)
}

func TestDecodeHexInvalidChar(t *testing.T) {
	_, err := DecodeHex("0xzz")
	require.Error(t, err)
}

func TestConstEq(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}
	require.True(t, ConstEq(a, b))
	require.False(t, ConstEq(a, c))
	require.False(t, ConstEq(a, []byte{1, 2}))
}

func TestBEUint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xdeadbeef, 0xffffffff} {
		b := BEUint32ToBytes(v)
		got, err := BytesToBEUint32(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestPad32(t *testing.T) {
	out, err := Pad32([]byte{0x01, 0x02})
	require.NoError(t, err)
	require.Len(t, out, 32)
	require.Equal(t, byte(0x01), out[30])
	require.Equal(t, byte(0x02), out[31])

	_, err = Pad32(make([]byte, 33))
	require.Error(t, err)
}
