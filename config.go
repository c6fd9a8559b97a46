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

package zeekexporter

import (
	"os"
	"time"
)

// NodeEnv is the environment variable holding the cluster node name.
const NodeEnv = "CLUSTER_NODE"

// DefaultNode is the node label used outside of a cluster.
const DefaultNode = "standalone"

// LogWriteCounting says what zeek_log_writes_total counts.
type LogWriteCounting int

const (
	// CountRecords adds one per log write.
	CountRecords LogWriteCounting = iota
	// CountFields adds the number of fields in the written record.
	CountFields
)

func (c LogWriteCounting) String() string {
	if c == CountFields {
		return "fields"
	}
	return "records"
}

// ParseLogWriteCounting is the inverse of LogWriteCounting.String.
func ParseLogWriteCounting(s string) (LogWriteCounting, error) {
	switch s {
	case "records", "":
		return CountRecords, nil
	case "fields":
		return CountFields, nil
	}
	return CountRecords, ConfigError.New("unknown log write counting %q", s)
}

// Config configures a Plugin.
type Config struct {
	Node            string           `help:"node label; empty means $CLUSTER_NODE or standalone" default:""`
	Address         string           `help:"address the metrics endpoint listens on" default:"0.0.0.0:9101"`
	MaxScrapes      int              `help:"maximum concurrent scrape connections" default:"8"`
	ProcessInterval time.Duration    `help:"how often process CPU time is sampled" default:"15s"`
	LogWrites       LogWriteCounting `help:"what zeek_log_writes_total counts: records or fields" default:"records"`
	VarSize         VarSizePolicy
	ArgEvents       ArgEventSpec

	// Clock overrides the monotonic clock used for all timing.
	Clock Clock `json:"-"`
}

// DefaultConfig returns the defaults listed in the Config tags.
func DefaultConfig() Config {
	return Config{
		Address:         "0.0.0.0:9101",
		MaxScrapes:      8,
		ProcessInterval: 15 * time.Second,
		LogWrites:       CountRecords,
		ArgEvents:       ArgEventSpec{},
	}
}

// Validate checks the config for values New cannot work with.
func (c Config) Validate() error {
	if c.MaxScrapes < 0 {
		return ConfigError.New("negative max scrapes %d", c.MaxScrapes)
	}
	if c.ProcessInterval < 0 {
		return ConfigError.New("negative process interval %v", c.ProcessInterval)
	}
	if c.VarSize.Mode == VarSizeEveryN && c.VarSize.Every < 1 {
		return ConfigError.New("var size every %d: must be at least 1", c.VarSize.Every)
	}
	for name := range c.ArgEvents {
		if name == "" {
			return ConfigError.New("arg event with empty function name")
		}
	}
	return nil
}

// NodeFromEnv returns the node name found by lookup under NodeEnv, or
// DefaultNode when it is unset or empty. A nil lookup means os.LookupEnv.
func NodeFromEnv(lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if node, ok := lookup(NodeEnv); ok && node != "" {
		return node
	}
	return DefaultNode
}
