package reader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chimpdao/nfcauth/internal/apperrors"
)

// TestSingleSessionInvariant exercises the invariant without a tag present:
// a second Open while the slot is held fails immediately with Validation.
// After the slot is handed back, the unexported open (which does not touch
// the slot) is called with a 10ms deadline and must fail, since no tag can
// be connected in that time.
func TestSingleSessionInvariant(t *testing.T) {
	m := NewManager(nil)

	select {
	case <-m.active:
	default:
		t.Fatal("expected manager to start with a free slot")
	}

	_, err := m.Open(context.Background())
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.Validation))

	m.active <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = m.open(ctx)
	require.Error(t, err)
}

func TestOpenFailsFastWhenAlreadyActive(t *testing.T) {
	m := NewManager(nil)
	<-m.active // simulate an in-flight session holding the slot

	_, err := m.Open(context.Background())
	require.True(t, apperrors.Is(err, apperrors.Validation))
}
