package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chimpdao/nfcauth/internal/contract"
)

func mintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "bind the chip presented to the reader as a new token's owner",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Usage:    "recipient address (G... or C...)",
				Required: true,
			},
		},
		Action: runMintCommand,
	}
}

func runMintCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	to := cmd.String("to")
	a.log.Info().Str("to", to).Msg("waiting for chip")

	result, err := a.orch.Mint(ctx, to)
	if err != nil {
		a.log.Error().Err(err).Msg("mint failed")
		return err
	}

	tokenID, ok := contract.DecodeTokenID(result.Invocation.ReturnValue)

	event := a.log.Info().
		Str("correlation_id", result.CorrelationID).
		Int64("ledger", result.Invocation.Ledger)
	if ok {
		event = event.Uint64("token_id", tokenID)
	}
	event.Msg("mint succeeded")

	if ok {
		fmt.Printf("minted: correlation_id=%s ledger=%d token_id=%d\n", result.CorrelationID, result.Invocation.Ledger, tokenID)
	} else {
		fmt.Printf("minted: correlation_id=%s ledger=%d\n", result.CorrelationID, result.Invocation.Ledger)
	}
	return nil
}
