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
	"math/rand"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration      { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now += d }

func TestCallStackNested(t *testing.T) {
	clock := &fakeClock{}
	s := NewCallStack(clock.Now)

	// A runs 20ms, calls B, runs 20ms more. B does the same around C, which
	// runs 20ms. Inclusive times are A=100, B=60, C=20.
	s.Push("A", FuncTypeEvent)
	clock.Advance(20 * time.Millisecond)
	s.Push("B", FuncTypeFunction)
	clock.Advance(20 * time.Millisecond)
	s.Push("C", FuncTypeBuiltin)
	if got := s.Lineage(); len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Fatalf("unexpected lineage %v", got)
	}
	clock.Advance(20 * time.Millisecond)

	expect := func(name string, inclusive, absolute time.Duration) {
		t.Helper()
		frame, gotInclusive, gotAbsolute := s.Pop()
		s.ReportChildDuration(gotInclusive)
		if frame.Name != name || gotInclusive != inclusive || gotAbsolute != absolute {
			t.Fatalf("expected %s %v/%v, got %s %v/%v",
				name, inclusive, absolute, frame.Name, gotInclusive, gotAbsolute)
		}
	}

	expect("C", 20*time.Millisecond, 20*time.Millisecond)
	clock.Advance(20 * time.Millisecond)
	expect("B", 60*time.Millisecond, 40*time.Millisecond)
	clock.Advance(20 * time.Millisecond)
	expect("A", 100*time.Millisecond, 40*time.Millisecond)

	if s.Depth() != 0 {
		t.Errorf("Expected depth 0, got %d", s.Depth())
	}
	if s.Caller() != "" {
		t.Errorf("Expected no caller, got %q", s.Caller())
	}
}

func TestCallStackClampsNegative(t *testing.T) {
	clock := &fakeClock{now: time.Second}
	s := NewCallStack(clock.Now)

	s.Push("A", FuncTypeFunction)
	clock.Advance(time.Millisecond)
	s.ReportChildDuration(time.Minute)
	_, inclusive, absolute := s.Pop()
	if inclusive != time.Millisecond || absolute != 0 {
		t.Fatalf("expected 1ms/0, got %v/%v", inclusive, absolute)
	}

	// a clock going backwards is clamped too
	s.Push("B", FuncTypeFunction)
	clock.now -= time.Second
	_, inclusive, absolute = s.Pop()
	if inclusive != 0 || absolute != 0 {
		t.Fatalf("expected 0/0, got %v/%v", inclusive, absolute)
	}
}

func TestCallStackClampsChildren(t *testing.T) {
	clock := &fakeClock{now: time.Second}
	s := NewCallStack(clock.Now)

	s.Push("A", FuncTypeFunction)
	clock.Advance(50 * time.Millisecond)
	s.Push("B", FuncTypeFunction)
	clock.Advance(50 * time.Millisecond)
	_, childInclusive, _ := s.Pop()

	// the clock steps back before the child is charged to its parent
	clock.Advance(-80 * time.Millisecond)
	s.ReportChildDuration(childInclusive)

	frame, inclusive, absolute := s.Pop()
	if frame.Children != 20*time.Millisecond {
		t.Fatalf("expected children clamped to 20ms, got %v", frame.Children)
	}
	if frame.Children > inclusive || inclusive != 20*time.Millisecond || absolute != 0 {
		t.Fatalf("expected 20ms/0 with children %v, got %v/%v", frame.Children, inclusive, absolute)
	}
}

func TestCallStackPopEmptyPanics(t *testing.T) {
	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !StackError.Has(err) {
			t.Fatalf("expected a StackError panic, got %#v", rec)
		}
	}()
	NewCallStack(nil).Pop()
}

func TestCallStackReportAtTopLevel(t *testing.T) {
	s := NewCallStack(nil)
	s.ReportChildDuration(time.Second)
	if s.Depth() != 0 {
		t.Fatalf("Expected depth 0, got %d", s.Depth())
	}
}

// TestCallStackRandomTrees runs random call trees on a clock that moves
// forward by random steps and checks that no frame's children ever add up
// to more than the frame itself, and that the stack always unwinds.
func TestCallStackRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	clock := &fakeClock{}
	s := NewCallStack(clock.Now)

	type result struct {
		inclusive time.Duration
		absolute  time.Duration
	}

	var run func(depth int) result
	run = func(depth int) result {
		s.Push("f", FuncTypeFunction)
		var childAbsolute, childInclusive time.Duration
		clock.Advance(time.Duration(rng.Intn(1000)) * time.Microsecond)
		if depth < 6 {
			for i := rng.Intn(4); i > 0; i-- {
				child := run(depth + 1)
				childAbsolute += child.absolute
				childInclusive += child.inclusive
				clock.Advance(time.Duration(rng.Intn(1000)) * time.Microsecond)
			}
		}
		_, inclusive, absolute := s.Pop()
		s.ReportChildDuration(inclusive)

		if childAbsolute > inclusive {
			t.Fatalf("children absolute %v exceeds inclusive %v", childAbsolute, inclusive)
		}
		if absolute != inclusive-childInclusive {
			t.Fatalf("expected absolute %v, got %v", inclusive-childInclusive, absolute)
		}
		return result{inclusive: inclusive, absolute: absolute}
	}

	for i := 0; i < 200; i++ {
		run(0)
		if s.Depth() != 0 || len(s.Lineage()) != 0 {
			t.Fatalf("stack did not unwind: depth %d lineage %v", s.Depth(), s.Lineage())
		}
	}
}
