package main

import (
	"os"
	"strconv"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/util"

	"github.com/joho/godotenv"
)

// Config holds the defaults for the subcommands' flags.
type Config struct {
	Strategy core.Strategy
	TraceDB  string
	LibDir   string
	Debug    bool
}

// LoadConfig reads the given .env files (default ".env") if they
// exist and then takes the defaults from the environment.
//
//	BINDTOOL_STRATEGY   default matching strategy (byNameAndTypeThenByType)
//	BINDTOOL_TRACE_DB   BoltDB file for traces
//	BINDTOOL_LIB_DIR    directory for "file://" libraries (.)
//	BINDTOOL_DEBUG      verbose logging
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, filename := range envFiles {
		if _, err := os.Stat(filename); err != nil {
			continue
		}
		if err := godotenv.Load(filename); err != nil {
			return nil, err
		}
	}

	c := &Config{
		Strategy: core.DefaultStrategy,
		TraceDB:  env("BINDTOOL_TRACE_DB", ""),
		LibDir:   env("BINDTOOL_LIB_DIR", "."),
		Debug:    envBool("BINDTOOL_DEBUG", false),
	}
	if s := env("BINDTOOL_STRATEGY", ""); s != "" {
		var err error
		if c.Strategy, err = core.ParseStrategy(s); err != nil {
			return nil, err
		}
	}
	util.Logging = c.Debug

	return c, nil
}

func env(key, def string) string {
	if v, have := os.LookupEnv(key); have {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(env(key, strconv.FormatBool(def)))
	if err != nil {
		util.Warnf("ignoring %s: %s", key, err)
		return def
	}
	return b
}
