package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Whitebeard2319/PoolKit/src"
	"github.com/Whitebeard2319/PoolKit/src/bench"
	"github.com/Whitebeard2319/PoolKit/src/cfg"
	"github.com/Whitebeard2319/PoolKit/src/pkg/utils"
)

// BenchEntrypoint wires config, logger and the workload runner for the
// bench command.
type BenchEntrypoint struct {
	ConfigPath string

	runner *bench.Runner
	log    src.Logger
	cfg    cfg.BenchConfig
}

func (e *BenchEntrypoint) Init(_ context.Context) error {
	env := mustLoadEnv()

	path := e.ConfigPath
	if path == "" {
		path = env.ConfigDir
	}

	config, err := cfg.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	e.cfg = config

	var log src.Logger
	if env.Environment == EnvDev {
		log = utils.Must(zap.NewDevelopment()).Sugar()
	} else {
		log = utils.Must(zap.NewProduction()).Sugar()
	}

	e.log = log
	e.runner = bench.NewRunner(log, config)

	return nil
}

func (e *BenchEntrypoint) Run(ctx context.Context) error {
	return e.runner.Run(ctx)
}

func (e *BenchEntrypoint) Close() (err error) {
	if e.log != nil {
		err = e.log.Sync()
	}

	return
}
