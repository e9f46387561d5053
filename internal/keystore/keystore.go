// Package keystore defines the submitter-key lookup interface the
// orchestrator depends on. The submitter's secret lives in an OS-provided
// secure store out of scope for this module; Store is the seam that
// collaborator implements, with EnvStore as a local/dev stand-in.
package keystore

import (
	"os"

	"github.com/stellar/go/keypair"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// Store resolves the submitter's signing key. Implementations must not
// cache the resolved key across operations — it is read once per
// operation, at the point C11 needs it to sign, the same way a label:tag
// secure-enclave reference is resolved lazily rather than held.
type Store interface {
	Submitter() (*keypair.Full, error)
}

// EnvStore reads the submitter secret from an environment variable.
type EnvStore struct {
	EnvVar string
}

// NewEnvStore builds an EnvStore. An empty envVar defaults to
// NFCAUTH_SUBMITTER_SECRET.
func NewEnvStore(envVar string) *EnvStore {
	if envVar == "" {
		envVar = "NFCAUTH_SUBMITTER_SECRET"
	}
	return &EnvStore{EnvVar: envVar}
}

// Submitter parses the current value of the configured environment
// variable as a Stellar secret seed.
func (s *EnvStore) Submitter() (*keypair.Full, error) {
	secret := os.Getenv(s.EnvVar)
	if secret == "" {
		return nil, apperrors.New(apperrors.Validation, "submitter secret not set in "+s.EnvVar)
	}
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Validation, "parsing submitter secret")
	}
	return kp, nil
}
