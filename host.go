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

// FuncType is the flavor of a host function.
type FuncType int

const (
	FuncTypeFunction FuncType = iota
	FuncTypeEvent
	FuncTypeHook
	FuncTypeBuiltin
)

func (t FuncType) String() string {
	switch t {
	case FuncTypeFunction:
		return "function"
	case FuncTypeEvent:
		return "event"
	case FuncTypeHook:
		return "hook"
	case FuncTypeBuiltin:
		return "BIF"
	default:
		return "unknown"
	}
}

// Val is a script value as seen by the exporter.
type Val interface {
	// String renders the value the way the host prints it.
	String() string
	// Size estimates the memory held by the value, in bytes.
	Size() uint64
}

// Frame identifies the calling context of a function call. Implementations
// must be comparable (pointer types are), since the re-entrancy guard uses
// frames to tell a re-fired hook apart from a fresh call.
type Frame interface{}

// Func is a callable host function. Call dispatches through the host, which
// means the host fires its call hooks again before running the body.
type Func interface {
	Name() string
	Type() FuncType
	Call(frame Frame, args []Val) (Val, error)
}

// ScopedFunc is a Func whose local variables can be inspected. Variable size
// sampling walks them instead of the call's arguments.
type ScopedFunc interface {
	Func
	Scope() Scope
}

// Call is everything the host hands to the call-function hook.
type Call struct {
	Func  Func
	Frame Frame
	Args  []Val
}

// Scope is a set of named variable bindings, such as the global scope.
type Scope interface {
	Name() string
	Vars(fn func(name string, val Val))
}

// Host is what the plugin needs from the runtime once scripts are loaded.
type Host interface {
	// Globals returns the global scope, or nil if the host does not expose
	// one.
	Globals() Scope
}

// HookType enumerates the host's plugin hooks.
type HookType int

const (
	HookLoadFile HookType = iota
	HookCallFunction
	HookQueueEvent
	HookDrainEvents
	HookUpdateNetworkTime
	HookBroObjDtor
	HookSetupAnalyzerTree
	HookLogInit
	HookLogWrite
	HookReporter
)

var hookNames = [...]string{
	HookLoadFile:          "LoadFile",
	HookCallFunction:      "CallFunction",
	HookQueueEvent:        "QueueEvent",
	HookDrainEvents:       "DrainEvents",
	HookUpdateNetworkTime: "UpdateNetworkTime",
	HookBroObjDtor:        "BroObjDtor",
	HookSetupAnalyzerTree: "SetupAnalyzerTree",
	HookLogInit:           "LogInit",
	HookLogWrite:          "LogWrite",
	HookReporter:          "Reporter",
}

func (h HookType) String() string {
	if h >= 0 && int(h) < len(hookNames) {
		return hookNames[h]
	}
	return "unknown"
}

// HookArgument is an opaque argument or result passed along with a meta
// hook. The exporter only ever counts and times hooks, it never looks inside.
type HookArgument interface{}
