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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every family the exporter publishes. All of them carry the
// constant node label.
type Metrics struct {
	LogWrites                  *Family
	StartTime                  *Family
	FunctionCalls              *Family
	CPUTimePerFunction         *Family
	AbsoluteCPUTimePerFunction *Family
	CPUTimePerFunctionType     *Family
	VarSizePerFunction         *Family
	VarSize                    *Family
	TotalCPUTime               *Family
	HookCPUTime                *Family
	Hooks                      *Family
}

// NewMetrics creates the families for node.
func NewMetrics(node string) *Metrics {
	nodeLabels := Labels{"node": node}
	counter := func(name, help string) *Family {
		return newFamily(name, help, prometheus.CounterValue, nodeLabels)
	}
	gauge := func(name, help string) *Family {
		return newFamily(name, help, prometheus.GaugeValue, nodeLabels)
	}
	return &Metrics{
		LogWrites: counter("zeek_log_writes_total",
			"The number of log writes per log, writer and filter."),
		StartTime: gauge("zeek_start_time_seconds",
			"The epoch timestamp of when the process was started."),
		FunctionCalls: counter("zeek_function_calls_total",
			"The number of times Zeek functions were called, by function and function_caller"),
		CPUTimePerFunction: counter("zeek_cpu_time_per_function_seconds",
			"The amount of time spent in Zeek functions. Measured in seconds."),
		AbsoluteCPUTimePerFunction: counter("zeek_absolute_cpu_time_per_function_seconds",
			"The \"absolute\" amount of time spent in Zeek functions. Note that these "+
				"measurements DO NOT include the time spent in child functions. Measured in seconds."),
		CPUTimePerFunctionType: counter("zeek_cpu_time_per_function_type_seconds",
			"The amount of time spent in Zeek functions, by function type. Measured in seconds."),
		VarSizePerFunction: gauge("zeek_var_size_per_function_bytes",
			"The amount of memory usage of variables in Zeek functions. Measured in bytes."),
		VarSize: gauge("zeek_var_size_bytes",
			"The amount of memory usage of variables. Measured in bytes."),
		TotalCPUTime: gauge("zeek_total_cpu_time_seconds",
			"The total amount of CPU time spent in this process"),
		HookCPUTime: counter("zeek_hook_cpu_time_seconds",
			"The amount of time spent in Zeek plugin hooks. Measured in seconds."),
		Hooks: counter("zeek_hooks_total",
			"The number of times Zeek plugin hooks were called."),
	}
}

// Families returns every family, in registration order.
func (m *Metrics) Families() []*Family {
	return []*Family{
		m.LogWrites,
		m.StartTime,
		m.FunctionCalls,
		m.CPUTimePerFunction,
		m.AbsoluteCPUTimePerFunction,
		m.CPUTimePerFunctionType,
		m.VarSizePerFunction,
		m.VarSize,
		m.TotalCPUTime,
		m.HookCPUTime,
		m.Hooks,
	}
}

// Register adds every family to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, f := range m.Families() {
		if err := reg.Register(f); err != nil {
			return Error.New("register %s: %v", f.Name(), err)
		}
	}
	return nil
}

// functionLabels are the labels shared by the per-function families.
func functionLabels(frame CallFrame, caller string) Labels {
	return Labels{
		"type":   frame.Type.String(),
		"name":   frame.Name,
		"caller": caller,
	}
}

// ObserveCall records one finished call. extra holds the argument labels, if
// any.
func (m *Metrics) ObserveCall(frame CallFrame, caller string, extra Labels,
	inclusive, absolute time.Duration) {
	labels := functionLabels(frame, caller)
	if len(extra) > 0 {
		labels = labels.Merge(extra)
	}
	m.FunctionCalls.Inc(labels)
	m.CPUTimePerFunction.Add(labels, inclusive.Seconds())
	m.AbsoluteCPUTimePerFunction.Add(labels, absolute.Seconds())
	m.CPUTimePerFunctionType.Add(Labels{"type": frame.Type.String()}, inclusive.Seconds())
}

// ObserveLogWrite adds n to the log write counter of writer and filter.
func (m *Metrics) ObserveLogWrite(writer, filter string, n float64) {
	m.LogWrites.Add(Labels{"writer": writer, "filter": filter}, n)
}

// ObserveHook records one run of a plugin hook.
func (m *Metrics) ObserveHook(hook HookType, elapsed time.Duration) {
	labels := Labels{"hook_type": hook.String()}
	m.Hooks.Inc(labels)
	m.HookCPUTime.Add(labels, elapsed.Seconds())
}

// SetProcessStart records when the process started.
func (m *Metrics) SetProcessStart(start time.Time) {
	m.StartTime.Set(nil, float64(start.UnixNano())/1e9)
}

// SetProcessCPU records the CPU time the process has used so far.
func (m *Metrics) SetProcessCPU(cpu time.Duration) {
	m.TotalCPUTime.Set(nil, cpu.Seconds())
}
