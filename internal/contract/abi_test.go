package contract

import (
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) string {
	t.Helper()
	kp, err := keypair.Random()
	require.NoError(t, err)
	return kp.Address()
}

func TestMintArgsShape(t *testing.T) {
	to := testAddress(t)
	args, err := MintArgs(to, []byte("msg"), make([]byte, 64), 1, make([]byte, 65), 7)
	require.NoError(t, err)
	require.Len(t, args, 6)

	got, err := decodeAddress(args[0])
	require.NoError(t, err)
	require.Equal(t, to, got)
}

func TestMintArgsRejectsBadSignatureLength(t *testing.T) {
	to := testAddress(t)
	_, err := MintArgs(to, []byte("msg"), make([]byte, 10), 1, make([]byte, 65), 7)
	require.Error(t, err)
}

func TestClaimArgsShape(t *testing.T) {
	claimant := testAddress(t)
	args, err := ClaimArgs(claimant, []byte("msg"), make([]byte, 64), 2, make([]byte, 65), 1)
	require.NoError(t, err)
	require.Len(t, args, 6)
}

func TestTransferArgsShape(t *testing.T) {
	from, to := testAddress(t), testAddress(t)
	args, err := TransferArgs(from, to, 42, []byte("msg"), make([]byte, 64), 3, make([]byte, 65), 9)
	require.NoError(t, err)
	require.Len(t, args, 8)

	tokenID, ok := decodeU64(args[2])
	require.True(t, ok)
	require.EqualValues(t, 42, tokenID)
}

func TestTransferArgsRejectsBadPublicKeyLength(t *testing.T) {
	from, to := testAddress(t), testAddress(t)
	_, err := TransferArgs(from, to, 42, []byte("msg"), make([]byte, 64), 3, make([]byte, 10), 9)
	require.Error(t, err)
}
