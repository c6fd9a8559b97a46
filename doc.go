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

/*
Package zeekexporter measures where a Zeek process spends its time and
exports the results to Prometheus.

A Plugin is attached to the host runtime's hooks. When the host is about to
dispatch a function, event or hook body it fires HookCallFunction; the plugin
takes the call over, runs it directly and times it. Calls nest, so the plugin
keeps a stack of CallFrames: when a call finishes its inclusive time is
charged to the parent frame, which lets every call report an "absolute" time
that leaves out the time spent in its children. The stack also provides the
caller used to label every per-function series.

Running the call directly makes the host fire HookCallFunction a second time
for the same call, and other plugins may do the same thing. The plugin
recognizes these re-entrant firings and passes them through, so every
logical call gets exactly one frame.

A minimal host integration looks like:

	plugin, err := zeekexporter.New(log, zeekexporter.DefaultConfig())
	if err != nil {
		return err
	}
	host.Enable(plugin.InitPreScript())
	// ... load scripts ...
	plugin.InitPostScript(host)
	go func() { _ = plugin.Run(ctx) }()

after which http://localhost:9101/metrics returns, among others:

	zeek_function_calls_total{caller="",name="zeek_init",node="standalone",type="event"} 1
	zeek_absolute_cpu_time_per_function_seconds{caller="zeek_init",name="Log::create_stream",node="standalone",type="function"} 0.000112
	zeek_log_writes_total{filter="default",node="standalone",writer="conn"} 42

Functions listed in Config.ArgEvents additionally get "arg" and "addl" labels
holding the printed value of chosen arguments.
*/
package zeekexporter // import "github.com/esnet/zeekexporter"
