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

// Package environment samples process-wide figures, the process start time
// and the CPU time it has consumed, for the exporter's process gauges.
package environment // import "github.com/esnet/zeekexporter/environment"

import (
	"context"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the class of errors returned by this package.
var Error = errs.Class("environment")

// Sink receives process samples.
type Sink interface {
	SetProcessStart(start time.Time)
	SetProcessCPU(cpu time.Duration)
}

// Sampler reads process figures. *Process is the real one.
type Sampler interface {
	StartTime() (time.Time, error)
	CPUTime() (time.Duration, error)
}

// Register records the start time of the process into sink once, and
// returns the sampler used, for Run to keep sampling.
func Register(log *zap.Logger, sink Sink) Sampler {
	proc, err := Self()
	if err != nil {
		log.Debug("process stats unavailable, using rusage", zap.Error(err))
		fallback := rusageSampler{start: time.Now()}
		sink.SetProcessStart(fallback.start)
		return fallback
	}
	start, err := proc.StartTime()
	if err != nil {
		log.Warn("unable to read process start time", zap.Error(err))
		start = time.Now()
	}
	sink.SetProcessStart(start)
	return proc
}

// Run samples CPU time into sink every interval until ctx is done. It
// samples once immediately. A non-positive interval samples once and
// returns.
func Run(ctx context.Context, log *zap.Logger, sampler Sampler, interval time.Duration, sink Sink) error {
	sample := func() {
		cpu, err := sampler.CPUTime()
		if err != nil {
			log.Debug("unable to read process cpu time", zap.Error(err))
			return
		}
		sink.SetProcessCPU(cpu)
	}

	sample()
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sample()
		}
	}
}
