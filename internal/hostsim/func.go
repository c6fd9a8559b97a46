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

package hostsim

import (
	ze "github.com/esnet/zeekexporter"
)

// Body is a function's script code.
type Body func(frame *Frame, args []ze.Val) (ze.Val, error)

// Func is a script function, event or builtin defined in a Runtime.
type Func struct {
	rt     *Runtime
	name   string
	typ    ze.FuncType
	body   Body
	locals *Scope
}

// Define adds a function to the runtime.
func (r *Runtime) Define(name string, typ ze.FuncType, body Body) *Func {
	if body == nil {
		body = func(*Frame, []ze.Val) (ze.Val, error) { return nil, nil }
	}
	return &Func{rt: r, name: name, typ: typ, body: body}
}

func (f *Func) Name() string      { return f.name }
func (f *Func) Type() ze.FuncType { return f.typ }
func (f *Func) String() string    { return f.name }

// Scope returns the function's local variables, or nil if its body never
// bound any.
func (f *Func) Scope() ze.Scope {
	if f.locals == nil {
		return nil
	}
	return f.locals
}

// Call dispatches the function from frame, firing the call hooks.
func (f *Func) Call(frame ze.Frame, args []ze.Val) (ze.Val, error) {
	return f.rt.dispatch(f, frame, args)
}

// Frame is the execution context of a running function body.
type Frame struct {
	rt     *Runtime
	fn     *Func
	parent ze.Frame
}

// Func is the function this frame runs.
func (fr *Frame) Func() *Func { return fr.fn }

// Call calls fn from this frame.
func (fr *Frame) Call(fn *Func, args ...ze.Val) (ze.Val, error) {
	return fn.Call(fr, args)
}

// SetLocal binds a local variable of the running function.
func (fr *Frame) SetLocal(name string, val ze.Val) {
	if fr.fn.locals == nil {
		fr.fn.locals = NewScope(fr.fn.name)
	}
	fr.fn.locals.Set(name, val)
}

// Log writes a log record from this frame.
func (fr *Frame) Log(writer, filter string, numFields int) bool {
	return fr.rt.WriteLog(writer, filter, numFields)
}

// Queue schedules an event from this frame.
func (fr *Frame) Queue(fn *Func, args ...ze.Val) {
	fr.rt.Queue(fn, args...)
}
