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

// VarSizeMode says when variable sizes are sampled.
type VarSizeMode int

const (
	// VarSizeOff never samples.
	VarSizeOff VarSizeMode = iota
	// VarSizeEveryCall samples after every measured call.
	VarSizeEveryCall
	// VarSizeEveryN samples after every Nth measured call.
	VarSizeEveryN
)

func (m VarSizeMode) String() string {
	switch m {
	case VarSizeOff:
		return "off"
	case VarSizeEveryCall:
		return "call"
	case VarSizeEveryN:
		return "every"
	default:
		return "unknown"
	}
}

// ParseVarSizeMode is the inverse of VarSizeMode.String.
func ParseVarSizeMode(s string) (VarSizeMode, error) {
	switch s {
	case "off", "":
		return VarSizeOff, nil
	case "call":
		return VarSizeEveryCall, nil
	case "every":
		return VarSizeEveryN, nil
	}
	return VarSizeOff, ConfigError.New("unknown var size mode %q", s)
}

// VarSizePolicy is the sampling cadence for the variable size gauges.
// Walking variables costs time proportional to the number of live bindings,
// so sampling happens after the measured call has been closed and only as
// often as the policy allows.
type VarSizePolicy struct {
	Mode  VarSizeMode
	Every int
}

// varSampler counts measured calls and says when a sample is due.
type varSampler struct {
	policy VarSizePolicy
	calls  int64
}

func (v *varSampler) due() bool {
	switch v.policy.Mode {
	case VarSizeEveryCall:
		return true
	case VarSizeEveryN:
		v.calls++
		if v.policy.Every <= 1 || v.calls >= int64(v.policy.Every) {
			v.calls = 0
			return true
		}
	}
	return false
}

// callSize is the size of the variables of the called function: its local
// scope when the host exposes one, otherwise its parameter bindings.
func callSize(call *Call) uint64 {
	if scoped, ok := call.Func.(ScopedFunc); ok {
		if scope := scoped.Scope(); scope != nil {
			return scopeSizes(scope, func(string, uint64) {})
		}
	}
	return argsSize(call.Args)
}

// argsSize is the size of a call's parameter bindings.
func argsSize(args []Val) (total uint64) {
	for _, arg := range args {
		if arg != nil {
			total += arg.Size()
		}
	}
	return total
}

// scopeSizes calls cb with the size of every variable in scope and returns
// the total.
func scopeSizes(scope Scope, cb func(name string, size uint64)) (total uint64) {
	scope.Vars(func(name string, val Val) {
		var size uint64
		if val != nil {
			size = val.Size()
		}
		total += size
		cb(name, size)
	})
	return total
}
