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
	"strconv"
	"strings"
)

// None marks an argument offset that should not become a label.
const None = -1

// ArgOffsets picks the positional arguments that feed the "arg" and "addl"
// labels of a call.
type ArgOffsets struct {
	Arg  int
	Addl int
}

// ArgEventSpec maps function names to the arguments worth labeling. Only
// functions with well-bounded argument values belong here, since every
// distinct value becomes its own series.
type ArgEventSpec map[string]ArgOffsets

// Labels returns the extra labels for a call to name with args. Functions
// that are not configured, offsets set to None, and offsets past the end of
// args all contribute nothing. The result is nil when there is nothing to
// add.
func (s ArgEventSpec) Labels(name string, args []Val) Labels {
	offsets, ok := s[name]
	if !ok {
		return nil
	}
	var labels Labels
	if v, ok := argAt(args, offsets.Arg); ok {
		labels = labels.With("arg", v)
	}
	if v, ok := argAt(args, offsets.Addl); ok {
		labels = labels.With("addl", v)
	}
	return labels
}

func argAt(args []Val, offset int) (string, bool) {
	if offset < 0 || offset >= len(args) || args[offset] == nil {
		return "", false
	}
	return args[offset].String(), true
}

// ParseArgEvent parses "name=arg,addl", where each offset is an integer index
// or "none" (or any negative number). "name=arg" leaves addl unset.
func ParseArgEvent(s string) (name string, offsets ArgOffsets, err error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", ArgOffsets{}, ConfigError.New("arg event %q: want name=arg[,addl]", s)
	}
	argText, addlText, _ := strings.Cut(rest, ",")
	offsets.Arg, err = parseOffset(argText)
	if err != nil {
		return "", ArgOffsets{}, ConfigError.New("arg event %q: %v", s, err)
	}
	offsets.Addl, err = parseOffset(addlText)
	if err != nil {
		return "", ArgOffsets{}, ConfigError.New("arg event %q: %v", s, err)
	}
	return name, offsets, nil
}

func parseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return None, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return None, err
	}
	if n < 0 {
		return None, nil
	}
	return n, nil
}
