package main

import (
	"context"

	"github.com/Whitebeard2319/PoolKit/cmd/poolkit/app"
)

func main() {
	app.MustExecute(context.Background())
}
