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
	"time"
)

func TestHookTimersSeparateLogWrites(t *testing.T) {
	clock := &fakeClock{}
	timers := newHookTimers(clock.Now)

	timers.For(HookCallFunction).Start(HookCallFunction)
	clock.Advance(3 * time.Millisecond)

	// a log write in the middle of the call hook
	timers.For(HookLogWrite).Start(HookLogWrite)
	clock.Advance(time.Millisecond)
	logElapsed, ok := timers.For(HookLogWrite).Stop(HookLogWrite)
	if !ok || logElapsed != time.Millisecond {
		t.Fatalf("expected 1ms log write, got %v %v", logElapsed, ok)
	}

	// a nested call hook
	timers.For(HookCallFunction).Start(HookCallFunction)
	clock.Advance(2 * time.Millisecond)
	nested, ok := timers.For(HookCallFunction).Stop(HookCallFunction)
	if !ok || nested != 2*time.Millisecond {
		t.Fatalf("expected 2ms nested hook, got %v %v", nested, ok)
	}

	clock.Advance(4 * time.Millisecond)
	timers.For(HookCallFunction).Exclude(HookCallFunction, 5*time.Millisecond)
	outer, ok := timers.For(HookCallFunction).Stop(HookCallFunction)
	if !ok || outer != 5*time.Millisecond {
		t.Fatalf("expected 5ms outer hook, got %v %v", outer, ok)
	}
}

func TestHookTimerMismatch(t *testing.T) {
	clock := &fakeClock{}
	timer := hookTimer{now: clock.Now}

	if _, ok := timer.Stop(HookQueueEvent); ok {
		t.Fatal("expected stop without start to fail")
	}

	timer.Start(HookQueueEvent)
	timer.Exclude(HookDrainEvents, time.Second)
	if _, ok := timer.Stop(HookDrainEvents); ok {
		t.Fatal("expected stop of another hook to fail")
	}
	clock.Advance(time.Millisecond)
	elapsed, ok := timer.Stop(HookQueueEvent)
	if !ok || elapsed != time.Millisecond {
		t.Fatalf("expected 1ms, got %v %v", elapsed, ok)
	}
	if timer.Depth() != 0 {
		t.Fatalf("Expected depth 0, got %d", timer.Depth())
	}
}

func TestHookTimerDropsUnpaired(t *testing.T) {
	clock := &fakeClock{}
	timer := hookTimer{now: clock.Now}

	timer.Start(HookQueueEvent)
	for i := 0; i < 3; i++ {
		// started and never stopped
		timer.Start(HookDrainEvents)
	}
	clock.Advance(time.Millisecond)
	elapsed, ok := timer.Stop(HookQueueEvent)
	if !ok || elapsed != time.Millisecond {
		t.Fatalf("expected 1ms, got %v %v", elapsed, ok)
	}
	if timer.Depth() != 0 || timer.Dropped() != 3 {
		t.Fatalf("expected depth 0 and 3 dropped, got %d and %d", timer.Depth(), timer.Dropped())
	}
}

func TestHookTypeString(t *testing.T) {
	if HookLogWrite.String() != "LogWrite" || HookCallFunction.String() != "CallFunction" {
		t.Fatal("unexpected hook names")
	}
	if HookType(-1).String() != "unknown" || HookType(100).String() != "unknown" {
		t.Fatal("expected unknown for out of range hooks")
	}
}
