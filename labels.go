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
	"sort"
	"strings"
)

// Labels is a set of metric label pairs. A nil Labels is empty.
type Labels map[string]string

// With returns a copy of l with key set to value.
func (l Labels) With(key, value string) Labels {
	return l.Merge(Labels{key: value})
}

// Merge returns a copy of l with every pair of other set on it.
func (l Labels) Merge(other Labels) Labels {
	all := make(Labels, len(l)+len(other))
	for key, value := range l {
		all[key] = value
	}
	for key, value := range other {
		all[key] = value
	}
	return all
}

// Names returns the label names in sorted order.
func (l Labels) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the set as key=value pairs sorted by key, escaping the
// separators. Two sets are equal exactly when their strings are.
func (l Labels) String() string {
	var builder strings.Builder
	for i, name := range l.Names() {
		if i > 0 {
			builder.WriteByte(',')
		}
		writeLabel(&builder, name)
		builder.WriteByte('=')
		writeLabel(&builder, l[name])
	}
	return builder.String()
}

func writeLabel(builder *strings.Builder, s string) {
	if strings.IndexByte(s, ',') == -1 &&
		strings.IndexByte(s, '=') == -1 &&
		strings.IndexByte(s, '\\') == -1 {

		builder.WriteString(s)
		return
	}

	for i := 0; i < len(s); i++ {
		if s[i] == ',' ||
			s[i] == '=' ||
			s[i] == '\\' {
			builder.WriteByte('\\')
		}
		builder.WriteByte(s[i])
	}
}
