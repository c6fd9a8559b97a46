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

// Wrapper is a foreign plugin that, like the exporter, takes every call over
// and runs it directly, re-firing the call hook. It keeps its own record of
// the calls it is running so it passes its own re-fired hooks through.
type Wrapper struct {
	running  map[wrapKey]bool
	Firings  int
	Takeover int
}

type wrapKey struct {
	fn    ze.Func
	frame ze.Frame
}

// NewWrapper returns a Wrapper.
func NewWrapper() *Wrapper {
	return &Wrapper{running: map[wrapKey]bool{}}
}

// HookCallFunction implements CallHooker.
func (w *Wrapper) HookCallFunction(call *ze.Call) (bool, ze.Val, error) {
	w.Firings++
	key := wrapKey{fn: call.Func, frame: call.Frame}
	if w.running[key] {
		return false, nil, nil
	}
	w.running[key] = true
	defer delete(w.running, key)
	w.Takeover++
	result, err := call.Func.Call(call.Frame, call.Args)
	return true, result, err
}

// Observer is a passive plugin that only counts what it sees.
type Observer struct {
	Calls     int
	LogWrites int
	MetaPre   map[ze.HookType]int
	MetaPost  map[ze.HookType]int
}

// NewObserver returns an Observer.
func NewObserver() *Observer {
	return &Observer{
		MetaPre:  map[ze.HookType]int{},
		MetaPost: map[ze.HookType]int{},
	}
}

// HookCallFunction implements CallHooker.
func (o *Observer) HookCallFunction(call *ze.Call) (bool, ze.Val, error) {
	o.Calls++
	return false, nil, nil
}

// HookLogWrite implements LogHooker.
func (o *Observer) HookLogWrite(writer, filter string, numFields int) bool {
	o.LogWrites++
	return true
}

// MetaHookPre implements MetaHooker.
func (o *Observer) MetaHookPre(hook ze.HookType, args []ze.HookArgument) {
	o.MetaPre[hook]++
}

// MetaHookPost implements MetaHooker.
func (o *Observer) MetaHookPost(hook ze.HookType, args []ze.HookArgument, result ze.HookArgument) {
	o.MetaPost[hook]++
}
