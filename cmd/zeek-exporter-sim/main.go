// Copyright (C) 2016 Space Monkey, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// zeek-exporter-sim runs the exporter inside a simulated Zeek host that
// replays a synthetic connection workload, and serves the resulting metrics.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ze "github.com/esnet/zeekexporter"
	"github.com/esnet/zeekexporter/internal/hostsim"
)

var envReplacer = strings.NewReplacer("-", "_")

var rootCmd = &cobra.Command{
	Use:           "zeek-exporter-sim",
	Short:         "serve Zeek exporter metrics for a simulated workload",
	RunE:          cmdRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	registerFlags(rootCmd.Flags())
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file")
	flags.String("env-file", "", "dotenv file loaded before reading the environment")
	flags.Bool("debug", false, "log at debug level")
	flags.String("node", "", "node label; empty means $"+ze.NodeEnv+" or "+ze.DefaultNode)
	flags.String("address", "0.0.0.0:9101", "address the metrics endpoint listens on")
	flags.Int("max-scrapes", 8, "maximum concurrent scrape connections")
	flags.Duration("process-interval", 15*time.Second, "how often process CPU time is sampled")
	flags.String("log-writes", "records", "what zeek_log_writes_total counts: records or fields")
	flags.String("var-size", "off", "when variable sizes are sampled: off, call or every")
	flags.Int("var-size-every", 100, "calls between variable size samples with --var-size=every")
	flags.StringArray("arg-event", nil, "function=arg[,addl] argument offsets to label calls with")
	flags.Duration("tick", time.Second, "how often a batch of simulated connections is processed")
	flags.Int("connections", 50, "simulated connections per tick")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Fatal(err)
	}
	atexit.Exit(0)
}

// settings binds the command's flags into a viper instance that also reads
// ZEEK_EXPORTER_ prefixed environment variables and the config file.
func settings(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("zeek_exporter")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, ze.ConfigError.Wrap(err)
		}
	}
	return v, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	return config.Build()
}

func buildConfig(v *viper.Viper) (ze.Config, error) {
	config := ze.DefaultConfig()
	config.Node = v.GetString("node")
	config.Address = v.GetString("address")
	config.MaxScrapes = v.GetInt("max-scrapes")
	config.ProcessInterval = v.GetDuration("process-interval")

	var err error
	if config.LogWrites, err = ze.ParseLogWriteCounting(v.GetString("log-writes")); err != nil {
		return config, err
	}
	if config.VarSize.Mode, err = ze.ParseVarSizeMode(v.GetString("var-size")); err != nil {
		return config, err
	}
	config.VarSize.Every = v.GetInt("var-size-every")

	for _, value := range v.GetStringSlice("arg-event") {
		name, offsets, err := ze.ParseArgEvent(value)
		if err != nil {
			return config, err
		}
		config.ArgEvents[name] = offsets
	}
	return config, config.Validate()
}

func cmdRun(cmd *cobra.Command, args []string) error {
	if file, _ := cmd.Flags().GetString("env-file"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return ze.ConfigError.Wrap(err)
		}
	}

	v, err := settings(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := newLogger(v.GetBool("debug"))
	if err != nil {
		return err
	}
	atexit.Register(func() { _ = log.Sync() })

	config, err := buildConfig(v)
	if err != nil {
		return err
	}
	plugin, err := ze.New(log, config)
	if err != nil {
		return err
	}
	atexit.Register(func() {
		if err := plugin.Close(); err != nil {
			log.Error("closing exporter", zap.Error(err))
		}
	})

	rt := hostsim.New()
	rt.AddPlugin(plugin)
	script := newScript(rt, v.GetInt("connections"))
	rt.Start()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return plugin.Run(ctx)
	})
	group.Go(func() error {
		return script.run(ctx, log.Named("script"), v.GetDuration("tick"))
	})
	return group.Wait()
}
