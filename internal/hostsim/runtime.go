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

// Package hostsim is a small single-threaded script runtime with Zeek-style
// plugin hooks. It dispatches every call through the plugins' call hooks,
// fires the meta hooks around every hook, and re-fires the call hook when a
// plugin invokes a function directly, which is what makes the exporter's
// re-entrancy handling necessary.
package hostsim

import (
	"github.com/zeebo/errs"

	ze "github.com/esnet/zeekexporter"
)

// Error is the class of errors raised by scripts run in the simulator.
var Error = errs.Class("hostsim")

// CallHooker receives call hooks.
type CallHooker interface {
	HookCallFunction(call *ze.Call) (handled bool, result ze.Val, err error)
}

// LogHooker receives log write hooks.
type LogHooker interface {
	HookLogWrite(writer, filter string, numFields int) bool
}

// MetaHooker receives the meta hooks fired around every other hook.
type MetaHooker interface {
	MetaHookPre(hook ze.HookType, args []ze.HookArgument)
	MetaHookPost(hook ze.HookType, args []ze.HookArgument, result ze.HookArgument)
}

// Initializer is implemented by plugins that pick their hooks and want to
// know when scripts are loaded.
type Initializer interface {
	InitPreScript() []ze.HookType
	InitPostScript(host ze.Host)
}

type plugin struct {
	p       interface{}
	enabled map[ze.HookType]bool
}

func (p plugin) wants(hook ze.HookType) bool {
	return p.enabled == nil || p.enabled[hook]
}

// Runtime is the simulated host. It is not safe for concurrent use; like the
// real host it runs everything on one thread.
type Runtime struct {
	plugins []plugin
	globals *Scope
	queue   []queued

	// CallHookFirings counts every firing of the call hook.
	CallHookFirings int
	// BodyRuns counts every time a function body actually ran.
	BodyRuns int
}

type queued struct {
	fn   *Func
	args []ze.Val
}

// New returns an empty runtime.
func New() *Runtime {
	return &Runtime{globals: NewScope("global")}
}

// AddPlugin attaches p, which may implement any of the hook interfaces.
// Plugins are consulted in the order they were added.
func (r *Runtime) AddPlugin(p interface{}) {
	entry := plugin{p: p}
	if init, ok := p.(Initializer); ok {
		entry.enabled = map[ze.HookType]bool{}
		for _, hook := range init.InitPreScript() {
			entry.enabled[hook] = true
		}
	}
	r.plugins = append(r.plugins, entry)
}

// Start tells the plugins that scripts are loaded.
func (r *Runtime) Start() {
	for _, entry := range r.plugins {
		if init, ok := entry.p.(Initializer); ok {
			init.InitPostScript(r)
		}
	}
}

// Globals implements zeekexporter.Host.
func (r *Runtime) Globals() ze.Scope { return r.globals }

// SetGlobal binds a global variable.
func (r *Runtime) SetGlobal(name string, val ze.Val) { r.globals.Set(name, val) }

// UnsetGlobal removes a global variable.
func (r *Runtime) UnsetGlobal(name string) { r.globals.Delete(name) }

func (r *Runtime) metaPre(hook ze.HookType, args []ze.HookArgument) {
	for _, entry := range r.plugins {
		if m, ok := entry.p.(MetaHooker); ok {
			m.MetaHookPre(hook, args)
		}
	}
}

func (r *Runtime) metaPost(hook ze.HookType, args []ze.HookArgument, result ze.HookArgument) {
	for _, entry := range r.plugins {
		if m, ok := entry.p.(MetaHooker); ok {
			m.MetaHookPost(hook, args, result)
		}
	}
}

// dispatch is the host's call path: ask the plugins first, and run the body
// only if none of them took the call over.
func (r *Runtime) dispatch(fn *Func, frame ze.Frame, args []ze.Val) (ze.Val, error) {
	call := &ze.Call{Func: fn, Frame: frame, Args: args}
	handled, result, err := r.fireCallHook(call)
	if handled {
		return result, err
	}
	r.BodyRuns++
	return fn.body(&Frame{rt: r, fn: fn, parent: frame}, args)
}

func (r *Runtime) fireCallHook(call *ze.Call) (handled bool, result ze.Val, err error) {
	r.CallHookFirings++
	hookArgs := []ze.HookArgument{call.Func, call.Frame, call.Args}
	r.metaPre(ze.HookCallFunction, hookArgs)
	defer func() { r.metaPost(ze.HookCallFunction, hookArgs, result) }()

	for _, entry := range r.plugins {
		hooker, ok := entry.p.(CallHooker)
		if !ok || !entry.wants(ze.HookCallFunction) {
			continue
		}
		handled, result, err = hooker.HookCallFunction(call)
		if handled {
			return handled, result, err
		}
	}
	return false, nil, nil
}

// WriteLog writes a record with numFields fields to writer under filter.
// It reports whether every plugin accepted the write.
func (r *Runtime) WriteLog(writer, filter string, numFields int) (accepted bool) {
	hookArgs := []ze.HookArgument{writer, filter, numFields}
	r.metaPre(ze.HookLogWrite, hookArgs)
	defer func() { r.metaPost(ze.HookLogWrite, hookArgs, accepted) }()

	accepted = true
	for _, entry := range r.plugins {
		hooker, ok := entry.p.(LogHooker)
		if !ok || !entry.wants(ze.HookLogWrite) {
			continue
		}
		if !hooker.HookLogWrite(writer, filter, numFields) {
			accepted = false
		}
	}
	return accepted
}

// Queue schedules an event for the next Drain.
func (r *Runtime) Queue(fn *Func, args ...ze.Val) {
	r.metaPre(ze.HookQueueEvent, []ze.HookArgument{fn})
	r.queue = append(r.queue, queued{fn: fn, args: args})
	r.metaPost(ze.HookQueueEvent, []ze.HookArgument{fn}, true)
}

// Drain dispatches every queued event, including ones queued while
// draining, and returns the first error.
func (r *Runtime) Drain() (err error) {
	r.metaPre(ze.HookDrainEvents, nil)
	r.metaPost(ze.HookDrainEvents, nil, nil)

	for len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		if _, callErr := r.dispatch(next.fn, nil, next.args); callErr != nil && err == nil {
			err = callErr
		}
	}
	return err
}
