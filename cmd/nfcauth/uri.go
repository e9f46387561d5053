package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

func uriCommand() *cli.Command {
	return &cli.Command{
		Name:  "uri",
		Usage: "look up a token's metadata URI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token-id",
				Required: true,
			},
		},
		Action: runURICommand,
	}
}

func runURICommand(ctx context.Context, cmd *cli.Command) error {
	a, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	tokenID, err := strconv.ParseUint(cmd.String("token-id"), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing --token-id: %w", err)
	}

	uri, err := a.client.TokenURI(ctx, tokenID)
	if err != nil {
		return err
	}

	fmt.Println(uri)
	return nil
}
