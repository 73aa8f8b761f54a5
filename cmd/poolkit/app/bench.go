package app

import (
	"github.com/spf13/cobra"

	poolapp "github.com/Whitebeard2319/PoolKit/src/app"
)

func initBench() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "bench",
		Short: "Runs the page-access workload against the pool core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entry := &poolapp.BenchEntrypoint{
				ConfigPath: rootCmd.Options.ConfigPath,
			}

			if err := entry.Init(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = entry.Close() }()

			return entry.Run(cmd.Context())
		},
	})
}
