package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint64Decimal(t *testing.T) {
	cases := map[uint64]string{
		0:          "0",
		42:         "42",
		1844674407: "1844674407",
	}
	for in, want := range cases {
		require.Equal(t, want, uint64Decimal(in))
	}
}
