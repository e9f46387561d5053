package keystore

import (
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/require"
)

func TestEnvStoreSubmitter(t *testing.T) {
	kp, err := keypair.Random()
	require.NoError(t, err)

	t.Setenv("NFCAUTH_TEST_SECRET", kp.Seed())

	store := NewEnvStore("NFCAUTH_TEST_SECRET")
	got, err := store.Submitter()
	require.NoError(t, err)
	require.Equal(t, kp.Address(), got.Address())
}

func TestEnvStoreMissing(t *testing.T) {
	store := NewEnvStore("NFCAUTH_TEST_SECRET_UNSET")
	_, err := store.Submitter()
	require.Error(t, err)
}

func TestNewEnvStoreDefaultsVarName(t *testing.T) {
	store := NewEnvStore("")
	require.Equal(t, "NFCAUTH_SUBMITTER_SECRET", store.EnvVar)
}
