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

// callKey is the identity of one logical call: the same function dispatched
// from the same calling frame.
type callKey struct {
	fn    Func
	frame Frame
}

// guard is the Idle/Intercepting state machine that keeps the call hook from
// measuring a call twice when the host re-fires the hook for the engine's own
// direct invocation.
type guard struct {
	current     *callKey
	ownHandler  bool
	foreignHits int64
}

// guardState is the state saved by enter and put back by exit.
type guardState struct {
	g          *guard
	current    *callKey
	ownHandler bool
}

// intercepting reports whether a call is being measured.
func (g *guard) intercepting() bool { return g.current != nil }

// enter decides what to do with a call hook firing. If it returns false the
// firing is a re-entry of the call already being measured and must be passed
// through untouched. Otherwise the caller now owns the call and must call
// exit on the returned state when the call finishes, on every path.
func (g *guard) enter(call *Call) (guardState, bool) {
	key := callKey{fn: call.Func, frame: call.Frame}
	if g.current != nil && *g.current == key {
		if g.ownHandler {
			// the firing caused by our own direct invocation
			g.ownHandler = false
		} else {
			g.foreignHits++
		}
		return guardState{}, false
	}
	saved := guardState{g: g, current: g.current, ownHandler: g.ownHandler}
	g.current = &key
	g.ownHandler = true
	return saved, true
}

func (s guardState) exit() {
	s.g.current = s.current
	s.g.ownHandler = s.ownHandler
}
