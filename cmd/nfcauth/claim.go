package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/chimpdao/nfcauth/internal/contract"
)

func claimCommand() *cli.Command {
	return &cli.Command{
		Name:  "claim",
		Usage: "claim the token already bound to the chip presented to the reader",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "claimant",
				Usage:    "claimant address (G... or C...)",
				Required: true,
			},
		},
		Action: runClaimCommand,
	}
}

func runClaimCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	claimant := cmd.String("claimant")
	a.log.Info().Str("claimant", claimant).Msg("waiting for chip")

	result, err := a.orch.Claim(ctx, claimant)
	if err != nil {
		a.log.Error().Err(err).Msg("claim failed")
		return err
	}

	tokenID, ok := contract.DecodeTokenID(result.Invocation.ReturnValue)

	event := a.log.Info().
		Str("correlation_id", result.CorrelationID).
		Int64("ledger", result.Invocation.Ledger)
	if ok {
		event = event.Uint64("token_id", tokenID)
	}
	event.Msg("claim succeeded")

	if ok {
		fmt.Printf("claimed: correlation_id=%s ledger=%d token_id=%d\n", result.CorrelationID, result.Invocation.Ledger, tokenID)
	} else {
		fmt.Printf("claimed: correlation_id=%s ledger=%d\n", result.CorrelationID, result.Invocation.Ledger)
	}
	return nil
}
