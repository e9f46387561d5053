package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "nfcauth",
		Usage: "mint, claim, and transfer NFC chip-authenticated NFTs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to nfcauth.yaml",
				Value: "nfcauth.yaml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace|debug|info|warn|error",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			statusCommand(),
			mintCommand(),
			claimCommand(),
			transferCommand(),
			ownerCommand(),
			uriCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
