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

//go:build !windows

package environment

import (
	"syscall"
	"time"
)

// rusageCPU is the CPU time of this process according to getrusage.
func rusageCPU() (time.Duration, error) {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0, Error.Wrap(err)
	}
	return time.Duration(rusage.Utime.Nano() + rusage.Stime.Nano()), nil
}

// rusageSampler stands in when the process table cannot be read.
type rusageSampler struct {
	start time.Time
}

func (r rusageSampler) StartTime() (time.Time, error)   { return r.start, nil }
func (r rusageSampler) CPUTime() (time.Duration, error) { return rusageCPU() }
