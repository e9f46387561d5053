package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

func ownerCommand() *cli.Command {
	return &cli.Command{
		Name:  "owner",
		Usage: "look up a token's current owner",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token-id",
				Required: true,
			},
		},
		Action: runOwnerCommand,
	}
}

func runOwnerCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	tokenID, err := strconv.ParseUint(cmd.String("token-id"), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing --token-id: %w", err)
	}

	owner, err := a.client.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}

	fmt.Println(owner)
	return nil
}
