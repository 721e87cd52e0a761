// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// lpmbench is a profiling driver for the lpm tables. It fills a
// SyncTable with random or real world prefixes and hammers it with
// concurrent lookups.
//
//	lpmbench --backend path --prefixes prefixes.txt.gz --lookups 10000000 --cpuprofile cpu.pprof
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/benbjohnson/clock"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logLevel  string
	envPrefix = "LPMBENCH"
	opts      = defaultOptions()
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "lpmbench",
	Short: "Profile the longest-prefix-match tables with concurrent lookups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	v := viper.New()

	var cfgErr error
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		cfgErr = v.ReadInConfig()
	}

	// Read environment variables that match prefix, e.g. LPMBENCH_LOOKUPS
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bindFlags(rootCmd, v)

	initLogger()

	if cfgErr != nil {
		log.Errorf("Read config error: %v", cfgErr)
	}
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.InfoLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

// bindFlags applies the viper value to every flag not set on the command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
			log.Fatalf("can't set flag %s from config: %v", f.Name, err)
		}
	})
}

func dumpConfig(o *options) {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(o, "", "    ")
	if err != nil {
		log.Fatalf("error dumping config: %v", err)
	}
	log.Debugf("Using configuration:\n%s", b)
}

func initFlags() {
	cobra.OnInitialize(initConfig)

	fs := rootCmd.Flags()
	fs.StringVar(&cfgFile, "config", "", "config file, yaml, toml or json")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warning, error")
	fs.StringVar(&opts.Backend, "backend", opts.Backend, "trie backend: stride or path")
	fs.IntVar(&opts.Stride, "stride", opts.Stride, "stride of the stride backend: 1, 2, 4 or 8")
	fs.StringVar(&opts.Prefixes, "prefixes", opts.Prefixes, "prefix file, one CIDR per line, plain or gzip (default: random prefixes)")
	fs.IntVar(&opts.Random, "random", opts.Random, "number of random prefixes if no prefix file is given")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed, "seed of the random generator")
	fs.IntVar(&opts.Lookups, "lookups", opts.Lookups, "total number of lookups")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "number of concurrent lookup workers")
	fs.StringVar(&opts.CPUProfile, "cpuprofile", "", "write cpu profile to file")
	fs.StringVar(&opts.Namespace, "metrics-namespace", opts.Namespace, "namespace of the reported table metrics")
}

func main() {
	initFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	dumpConfig(&opts)

	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	res, err := newBench(opts, clock.New()).run(ctx)
	if err != nil {
		return err
	}

	res.log()
	return nil
}
