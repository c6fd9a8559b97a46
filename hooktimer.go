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
)

// hookTimer times nested runs of hooks. Each start pushes an entry, each stop
// pops one, so a hook that fires inside another does not clobber the outer
// start time.
type hookTimer struct {
	now     Clock
	running []runningHook
	dropped int64
}

type runningHook struct {
	hook     HookType
	start    time.Duration
	excluded time.Duration
}

func (t *hookTimer) Start(hook HookType) {
	t.running = append(t.running, runningHook{hook: hook, start: t.now()})
}

// Exclude removes d from the innermost running hook of type hook. It does
// nothing if that hook is not the innermost one.
func (t *hookTimer) Exclude(hook HookType, d time.Duration) {
	top := len(t.running) - 1
	if top < 0 || t.running[top].hook != hook {
		return
	}
	t.running[top].excluded += d
}

// Stop ends the innermost running hook of type hook and returns how long it
// ran. Hooks started above it that never stopped are dropped. ok is false if
// nothing of type hook is running.
func (t *hookTimer) Stop(hook HookType) (elapsed time.Duration, ok bool) {
	top := len(t.running) - 1
	for top >= 0 && t.running[top].hook != hook {
		top--
	}
	if top < 0 {
		return 0, false
	}
	t.dropped += int64(len(t.running) - 1 - top)
	r := t.running[top]
	t.running = t.running[:top]
	elapsed = t.now() - r.start - r.excluded
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, true
}

func (t *hookTimer) Depth() int { return len(t.running) }

// Dropped counts hooks that were started and never stopped.
func (t *hookTimer) Dropped() int64 { return t.dropped }

// hookTimers keeps log writes apart from every other hook. A log write can
// happen in the middle of a function call and must not disturb its timing.
type hookTimers struct {
	log   hookTimer
	other hookTimer
}

func newHookTimers(now Clock) hookTimers {
	return hookTimers{
		log:   hookTimer{now: now},
		other: hookTimer{now: now},
	}
}

func (h *hookTimers) For(hook HookType) *hookTimer {
	if hook == HookLogWrite {
		return &h.log
	}
	return &h.other
}

func (h *hookTimers) dropped() int64 { return h.log.dropped + h.other.dropped }
