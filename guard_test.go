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
	"testing"
)

type stubFunc struct {
	name string
}

func (f *stubFunc) Name() string                   { return f.name }
func (f *stubFunc) Type() FuncType                 { return FuncTypeFunction }
func (f *stubFunc) Call(Frame, []Val) (Val, error) { return nil, nil }

type stubFrame struct{ id int }

func TestGuardReentry(t *testing.T) {
	var g guard
	a := &stubFunc{name: "a"}
	top := &stubFrame{id: 1}

	outer, ok := g.enter(&Call{Func: a, Frame: top})
	if !ok || !g.intercepting() || !g.ownHandler {
		t.Fatal("expected the first firing to be intercepted")
	}

	// our own direct invocation re-fires the hook
	if _, ok := g.enter(&Call{Func: a, Frame: top}); ok {
		t.Fatal("expected the re-fired hook to pass through")
	}
	if g.ownHandler {
		t.Fatal("expected own handler to be consumed")
	}

	// another observer re-invoking the same call
	if _, ok := g.enter(&Call{Func: a, Frame: top}); ok {
		t.Fatal("expected the foreign firing to pass through")
	}
	if g.foreignHits != 1 {
		t.Fatalf("Expected 1 foreign hit, got %d", g.foreignHits)
	}

	// a recursive call of a from a's own frame is a new logical call
	inner, ok := g.enter(&Call{Func: a, Frame: &stubFrame{id: 2}})
	if !ok {
		t.Fatal("expected the recursive call to be intercepted")
	}
	inner.exit()

	if *g.current != (callKey{fn: a, frame: top}) || g.ownHandler {
		t.Fatal("expected exit to restore the outer state")
	}
	outer.exit()
	if g.intercepting() {
		t.Fatal("expected the guard to be idle")
	}
}

func TestGuardDifferentFunction(t *testing.T) {
	var g guard
	top := &stubFrame{}

	outer, ok := g.enter(&Call{Func: &stubFunc{name: "a"}, Frame: top})
	if !ok {
		t.Fatal("expected a to be intercepted")
	}
	child, ok := g.enter(&Call{Func: &stubFunc{name: "b"}, Frame: top})
	if !ok {
		t.Fatal("expected b to be intercepted")
	}
	child.exit()
	outer.exit()
	if g.intercepting() {
		t.Fatal("expected the guard to be idle")
	}
}
