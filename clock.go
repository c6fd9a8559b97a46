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

	"github.com/spacemonkeygo/monotime"
)

// Clock returns a monotonically increasing reading. Only differences between
// readings are meaningful.
type Clock func() time.Duration

// Monotonic is the default Clock.
func Monotonic() time.Duration { return monotime.Monotonic() }
