package app

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type envVars struct {
	Environment string `split_words:"true"`
	ConfigDir   string `split_words:"true"`
}

func mustLoadEnv() envVars {
	var env envVars

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envconfig.MustProcess("POOLKIT", &env)

	if env.Environment != "" && env.Environment != EnvDev && env.Environment != EnvProd {
		panic("invalid environment")
	} else if env.Environment == "" {
		env.Environment = EnvDev
	}

	if env.ConfigDir == "" {
		env.ConfigDir = "."
	}

	return env
}
