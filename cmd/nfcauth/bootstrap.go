package main

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/chimpdao/nfcauth/internal/appconfig"
	"github.com/chimpdao/nfcauth/internal/applog"
	"github.com/chimpdao/nfcauth/internal/contract"
	"github.com/chimpdao/nfcauth/internal/keystore"
	"github.com/chimpdao/nfcauth/internal/orchestrator"
	"github.com/chimpdao/nfcauth/internal/reader"
)

// app bundles the long-lived dependencies every subcommand's Action needs.
// Built once per invocation from --config and --log-level, never reused
// across process lifetimes.
type app struct {
	cfg     appconfig.Config
	log     *applog.Logger
	orch    *orchestrator.Orchestrator
	client  *contract.Client
	readers *reader.Manager
}

func bootstrap(cmd *cli.Command) (*app, error) {
	logger := applog.New(applog.WithLevel(applog.LevelFromString(cmd.String("log-level"))))

	cfgPath := cmd.String("config")
	ac := appconfig.New(appconfig.WithLoader(appconfig.NewFileLoader(cfgPath, []string{filepath.Dir(cfgPath)}, nil)))
	if err := ac.Load(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := ac.Get()

	client, err := contract.New(contract.Config{
		Network:           cfg.Network,
		NetworkPassphrase: cfg.NetworkPassphrase,
		HorizonURL:        cfg.HorizonURL,
		RPCURL:            cfg.RPCURL,
		ContractID:        cfg.ContractID,
	}, contract.DefaultPollPolicy, &logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("building contract client: %w", err)
	}

	keys := keystore.NewEnvStore(cfg.SubmitterSecretEnv)
	readers := reader.NewManager(&logger.Logger)
	orch := orchestrator.New(readers, cfg.KeyIndex, client, keys, &logger.Logger)

	return &app{cfg: cfg, log: logger, orch: orch, client: client, readers: readers}, nil
}
