package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "transfer a token, authorized by the chip bound to its current owner",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "current owner address (must match the chip presented to the reader)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "recipient address (G... or C...)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "token-id",
				Usage:    "token id to transfer",
				Required: true,
			},
		},
		Action: runTransferCommand,
	}
}

func runTransferCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	from := cmd.String("from")
	to := cmd.String("to")
	tokenID, err := strconv.ParseUint(cmd.String("token-id"), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing --token-id: %w", err)
	}

	a.log.Info().Str("from", from).Str("to", to).Uint64("token_id", tokenID).Msg("waiting for chip")

	result, err := a.orch.Transfer(ctx, from, to, tokenID)
	if err != nil {
		a.log.Error().Err(err).Msg("transfer failed")
		return err
	}

	a.log.Info().
		Str("correlation_id", result.CorrelationID).
		Int64("ledger", result.Invocation.Ledger).
		Msg("transfer succeeded")
	fmt.Printf("transferred: correlation_id=%s ledger=%d\n", result.CorrelationID, result.Invocation.Ledger)
	return nil
}
