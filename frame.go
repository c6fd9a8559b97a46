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

// CallFrame is the timing record of one in-flight function invocation.
type CallFrame struct {
	Name     string
	Type     FuncType
	Start    time.Duration
	Children time.Duration
}

// CallStack tracks in-flight invocations and the caller lineage that goes
// with them. It is only touched from the host thread.
type CallStack struct {
	now     Clock
	frames  []CallFrame
	lineage []string
}

// NewCallStack makes an empty CallStack reading time from now. A nil clock
// means Monotonic.
func NewCallStack(now Clock) *CallStack {
	if now == nil {
		now = Monotonic
	}
	return &CallStack{now: now}
}

// Push starts a frame for fn.
func (s *CallStack) Push(name string, typ FuncType) {
	s.frames = append(s.frames, CallFrame{
		Name:  name,
		Type:  typ,
		Start: s.now(),
	})
	s.lineage = append(s.lineage, name)
}

// Pop closes the top frame. absolute is inclusive minus the time reported by
// the frame's children, and is never negative. Popping an empty stack panics.
func (s *CallStack) Pop() (frame CallFrame, inclusive, absolute time.Duration) {
	top := len(s.frames) - 1
	if top < 0 {
		panic(StackError.New("pop on empty stack"))
	}
	frame = s.frames[top]
	s.frames = s.frames[:top]
	s.lineage = s.lineage[:len(s.lineage)-1]

	inclusive = s.now() - frame.Start
	if inclusive < 0 {
		inclusive = 0
	}
	absolute = inclusive - frame.Children
	if absolute < 0 {
		absolute = 0
	}
	return frame, inclusive, absolute
}

// ReportChildDuration charges d to the frame now on top, the parent of the
// frame that was just popped. It does nothing at depth zero. The children of
// a frame never total more than the time the frame has been running.
func (s *CallStack) ReportChildDuration(d time.Duration) {
	if len(s.frames) == 0 || d <= 0 {
		return
	}
	top := &s.frames[len(s.frames)-1]
	top.Children += d
	if elapsed := s.now() - top.Start; top.Children > elapsed {
		if elapsed < 0 {
			elapsed = 0
		}
		top.Children = elapsed
	}
}

// Depth is the number of in-flight frames.
func (s *CallStack) Depth() int { return len(s.frames) }

// Caller is the name of the innermost in-flight function, or "" at top
// level.
func (s *CallStack) Caller() string {
	if len(s.lineage) == 0 {
		return ""
	}
	return s.lineage[len(s.lineage)-1]
}

// Lineage returns a copy of the caller chain, outermost first.
func (s *CallStack) Lineage() []string {
	return append([]string(nil), s.lineage...)
}
