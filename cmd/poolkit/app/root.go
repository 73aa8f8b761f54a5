package app

import (
	"context"

	"github.com/Whitebeard2319/PoolKit/src/cli"
)

var rootCmd = cli.Init("poolkit")

func MustExecute(ctx context.Context) {
	initBench()
	rootCmd.MustExecute(ctx)
}
