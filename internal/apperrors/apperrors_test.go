package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(Curve, "recovery failed")
	require.Equal(t, Curve, err.Kind)
	require.Contains(t, err.Error(), "recovery failed")
}

func TestWrapPreservesCause(t *testing.T) {
	base := errors.New("sw=0x6a88")
	wrapped := Wrap(base, Transport, "select app failed")
	require.Equal(t, base, wrapped.Unwrap())
	require.True(t, errors.Is(wrapped, base))
}

func TestWrapNilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(nil, Transport, "x"))
}

func TestWithMetadataIsImmutable(t *testing.T) {
	base := New(Validation, "bad arg")
	withMeta := base.WithMetadata(map[string]string{"field": "nonce"})
	require.Empty(t, base.Metadata)
	require.Equal(t, "nonce", withMeta.Metadata["field"])
}

func TestWithContractCode(t *testing.T) {
	err := New(ContractExecution, "already claimed").WithContractCode(212)
	require.NotNil(t, err.ContractCode)
	require.EqualValues(t, 212, *err.ContractCode)
	require.Contains(t, err.Error(), "contract_code=212")
}

func TestIsMatchesKind(t *testing.T) {
	err := New(ReplayNonce, "nonce too low")
	require.True(t, Is(err, ReplayNonce))
	require.False(t, Is(err, Curve))
}

func TestFromLeavesExistingErrorAlone(t *testing.T) {
	orig := New(Timeout, "poll exhausted")
	require.Same(t, orig, From(orig))

	wrapped := From(errors.New("plain"))
	require.Equal(t, Validation, wrapped.Kind)
}
