package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestStatusCommandShape(t *testing.T) {
	cmd := statusCommand()
	require.Equal(t, "status", cmd.Name)
	require.Empty(t, cmd.Flags)
}

func TestMintCommandShape(t *testing.T) {
	cmd := mintCommand()
	require.NotNil(t, cmd)
	require.Equal(t, "mint", cmd.Name)
	require.NotEmpty(t, cmd.Usage)

	var hasTo bool
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == "to" {
			hasTo = true
			require.True(t, f.Required)
		}
	}
	require.True(t, hasTo)
}

func TestClaimCommandShape(t *testing.T) {
	cmd := claimCommand()
	require.Equal(t, "claim", cmd.Name)
	require.Len(t, cmd.Flags, 1)
}

func TestTransferCommandShape(t *testing.T) {
	cmd := transferCommand()
	require.Equal(t, "transfer", cmd.Name)
	require.Len(t, cmd.Flags, 3)

	var hasFrom, hasTo, hasTokenID bool
	for _, flag := range cmd.Flags {
		f, ok := flag.(*cli.StringFlag)
		if !ok {
			continue
		}
		switch f.Name {
		case "from":
			hasFrom = true
		case "to":
			hasTo = true
		case "token-id":
			hasTokenID = true
		}
	}
	require.True(t, hasFrom)
	require.True(t, hasTo)
	require.True(t, hasTokenID)
}

func TestOwnerAndURICommandShape(t *testing.T) {
	require.Equal(t, "owner", ownerCommand().Name)
	require.Equal(t, "uri", uriCommand().Name)
}
