package config

import (
	"flag"
	"log"
	"os"
	"time"
)

type Config struct {
	Address         string
	StoreFile       string
	StoreInterval   time.Duration // 0 - disable save data
	Restore         bool
	FilterCacheSize int
	Token           string
	MetricsAddress  string // empty - metrics disabled
	Development     bool
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Address:         "127.0.0.1:3200",
		StoreFile:       "db/stash.data",
		StoreInterval:   time.Second * 5,
		Restore:         true,
		FilterCacheSize: 128,
		Token:           "skipstash",
		MetricsAddress:  "",
		Development:     true,
	}
}

// NewConfig reads the command line. An environment variable with the flag's
// name overrides the flag.
func NewConfig() *Config {
	c, err := Parse(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func Parse(args []string) (*Config, error) {
	c := Default()
	fs := flag.NewFlagSet("skipstash", flag.ContinueOnError)
	fs.StringVar(&c.Address, "ADDRESS", c.Address, "grpc listen address")
	fs.StringVar(&c.StoreFile, "STORE_FILE", c.StoreFile, "store file")
	fs.DurationVar(&c.StoreInterval, "STORE_INTERVAL", c.StoreInterval, "store interval")
	fs.BoolVar(&c.Restore, "RESTORE", c.Restore, "restore DB from disk on startup")
	fs.IntVar(&c.FilterCacheSize, "FILTER_CACHE_SIZE", c.FilterCacheSize, "decoded skip scan filters kept in memory")
	fs.StringVar(&c.Token, "TOKEN", c.Token, "authorization token")
	fs.StringVar(&c.MetricsAddress, "METRICS_ADDRESS", c.MetricsAddress, "prometheus listen address")
	fs.BoolVar(&c.Development, "DEVELOPMENT", c.Development, "development logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if v, ok := os.LookupEnv(f.Name); ok && err == nil {
			err = f.Value.Set(v)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
