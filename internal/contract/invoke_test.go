package contract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

func TestKindForContractCodeMapsReplayNonce(t *testing.T) {
	kind, ok := kindForContractCode(ErrReplayNonce)
	require.True(t, ok)
	require.Equal(t, apperrors.ReplayNonce, kind)
}

func TestKindForContractCodeDefaultsUnmapped(t *testing.T) {
	_, ok := kindForContractCode(ErrTokenAlreadyClaimed)
	require.False(t, ok)
}
