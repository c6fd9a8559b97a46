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

	"github.com/stretchr/testify/require"
)

type stubVal string

func (v stubVal) String() string { return string(v) }
func (v stubVal) Size() uint64   { return uint64(len(v)) }

func TestArgEventSpecLabels(t *testing.T) {
	events := ArgEventSpec{
		"f":    {Arg: 1, Addl: None},
		"both": {Arg: 0, Addl: 2},
		"far":  {Arg: 7, Addl: 0},
	}
	args := []Val{stubVal("x"), stubVal("y"), stubVal("z")}

	require.Equal(t, Labels{"arg": "y"}, events.Labels("f", args))
	require.Equal(t, Labels{"arg": "x", "addl": "z"}, events.Labels("both", args))
	require.Equal(t, Labels{"addl": "x"}, events.Labels("far", args))
	require.Nil(t, events.Labels("unknown", args))
	require.Nil(t, events.Labels("f", nil))
	require.Nil(t, events.Labels("f", []Val{stubVal("x"), nil}))
}

func TestParseArgEvent(t *testing.T) {
	for _, test := range []struct {
		in      string
		name    string
		offsets ArgOffsets
		ok      bool
	}{
		{"f=1,none", "f", ArgOffsets{Arg: 1, Addl: None}, true},
		{"f=1,-1", "f", ArgOffsets{Arg: 1, Addl: None}, true},
		{"f=1", "f", ArgOffsets{Arg: 1, Addl: None}, true},
		{" Analyzer::enable = 0 , 2 ", "Analyzer::enable", ArgOffsets{Arg: 0, Addl: 2}, true},
		{"f=none,3", "f", ArgOffsets{Arg: None, Addl: 3}, true},
		{"f", "", ArgOffsets{}, false},
		{"=1,2", "", ArgOffsets{}, false},
		{"f=one,2", "", ArgOffsets{}, false},
		{"f=1,two", "", ArgOffsets{}, false},
	} {
		name, offsets, err := ParseArgEvent(test.in)
		if !test.ok {
			require.Error(t, err, test.in)
			require.True(t, ConfigError.Has(err), test.in)
			continue
		}
		require.NoError(t, err, test.in)
		require.Equal(t, test.name, name, test.in)
		require.Equal(t, test.offsets, offsets, test.in)
	}
}
