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
	"fmt"
	"strings"

	ze "github.com/esnet/zeekexporter"
)

// valOverhead approximates the bookkeeping every host value carries.
const valOverhead = 16

// String is a script string.
type String string

func (s String) String() string { return string(s) }
func (s String) Size() uint64   { return valOverhead + uint64(len(s)) }

// Count is a script count.
type Count uint64

func (c Count) String() string { return fmt.Sprint(uint64(c)) }
func (c Count) Size() uint64   { return valOverhead + 8 }

// Vector is a script vector.
type Vector []ze.Val

func (v Vector) String() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v Vector) Size() uint64 {
	total := uint64(valOverhead)
	for _, e := range v {
		total += e.Size()
	}
	return total
}

// Scope is a named set of variables, kept in definition order.
type Scope struct {
	name  string
	order []string
	vars  map[string]ze.Val
}

// NewScope returns an empty scope.
func NewScope(name string) *Scope {
	return &Scope{name: name, vars: map[string]ze.Val{}}
}

func (s *Scope) Name() string { return s.name }

// Set binds name to val.
func (s *Scope) Set(name string, val ze.Val) {
	if _, exists := s.vars[name]; !exists {
		s.order = append(s.order, name)
	}
	s.vars[name] = val
}

// Delete unbinds name.
func (s *Scope) Delete(name string) {
	if _, exists := s.vars[name]; !exists {
		return
	}
	delete(s.vars, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Vars implements zeekexporter.Scope.
func (s *Scope) Vars(fn func(name string, val ze.Val)) {
	for _, name := range s.order {
		fn(name, s.vars[name])
	}
}
