package appconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	cfg      Config
	err      error
	watchCB  func()
	watchErr error
}

func (f *fakeLoader) Load(target any) error {
	if f.err != nil {
		return f.err
	}
	*(target.(*Config)) = f.cfg
	return nil
}

func (f *fakeLoader) Watch(callback func()) error {
	f.watchCB = callback
	return f.watchErr
}

func validConfig() Config {
	return Config{
		Network:            "testnet",
		HorizonURL:         "https://horizon-testnet.stellar.org",
		RPCURL:             "https://soroban-testnet.stellar.org",
		ContractID:         "CAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		SubmitterSecretEnv: "NFCAUTH_SUBMITTER_SECRET",
		LogLevel:           "info",
	}
}

func TestLoadPopulatesTarget(t *testing.T) {
	want := validConfig()
	c := New(WithLoader(&fakeLoader{cfg: want}))
	require.NoError(t, c.Load())
	require.Equal(t, want, c.Get())
}

func TestWatchReloadsOnChange(t *testing.T) {
	loader := &fakeLoader{cfg: validConfig()}
	c := New(WithLoader(loader))
	require.NoError(t, c.Load())

	var reloaded Config
	require.NoError(t, c.Watch(func(cfg Config) { reloaded = cfg }, nil))

	loader.cfg.LogLevel = "debug"
	loader.watchCB()

	require.Equal(t, "debug", reloaded.LogLevel)
	require.Equal(t, "debug", c.Get().LogLevel)
}

func TestWatchReportsLoadError(t *testing.T) {
	loader := &fakeLoader{cfg: validConfig()}
	c := New(WithLoader(loader))
	require.NoError(t, c.Load())

	var gotErr error
	require.NoError(t, c.Watch(nil, func(err error) { gotErr = err }))

	loader.err = errStub{}
	loader.watchCB()

	require.Error(t, gotErr)
	require.Equal(t, "info", c.Get().LogLevel)
}

type errStub struct{}

func (errStub) Error() string { return "load failed" }
