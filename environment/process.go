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

package environment

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Process reads figures about a running process.
type Process struct {
	proc *process.Process
}

// Self returns the current process.
func Self() (*Process, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Process{proc: proc}, nil
}

// StartTime is when the process was created.
func (p *Process) StartTime() (time.Time, error) {
	ms, err := p.proc.CreateTime()
	if err != nil {
		return time.Time{}, Error.Wrap(err)
	}
	return time.UnixMilli(ms), nil
}

// CPUTime is the user plus system time the process has used.
func (p *Process) CPUTime() (time.Duration, error) {
	times, err := p.proc.Times()
	if err != nil {
		return rusageCPU()
	}
	return seconds(times.User + times.System), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
