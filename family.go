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
	"sync"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
)

// Family is a metric family whose series may carry different label names,
// which prometheus' own vectors do not allow. It reports itself to a
// registry as an unchecked collector.
//
// Family is safe for concurrent use: the host thread writes while scrapes
// read.
type Family struct {
	name        string
	help        string
	kind        prometheus.ValueType
	constLabels prometheus.Labels

	mtx    sync.Mutex
	series map[string]*series
}

type series struct {
	desc   *prometheus.Desc
	names  []string
	values []string
	val    float64
}

func newFamily(name, help string, kind prometheus.ValueType, constLabels Labels) *Family {
	return &Family{
		name:        name,
		help:        help,
		kind:        kind,
		constLabels: prometheus.Labels(constLabels),
		series:      map[string]*series{},
	}
}

// Name is the fully qualified metric name.
func (f *Family) Name() string { return f.name }

// lookup returns the series for labels, creating it. Must hold f.mtx.
func (f *Family) lookup(labels Labels) *series {
	labels = validLabels(labels)
	key := labels.String()
	s, exists := f.series[key]
	if exists {
		return s
	}
	names := labels.Names()
	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, labels[name])
	}
	s = &series{
		desc:   prometheus.NewDesc(f.name, f.help, names, f.constLabels),
		names:  names,
		values: values,
	}
	f.series[key] = s
	return s
}

// Add adds delta to the series for labels. Counters ignore negative deltas.
func (f *Family) Add(labels Labels, delta float64) {
	if f.kind == prometheus.CounterValue && delta < 0 {
		return
	}
	f.mtx.Lock()
	f.lookup(labels).val += delta
	f.mtx.Unlock()
}

// Inc adds one to the series for labels.
func (f *Family) Inc(labels Labels) { f.Add(labels, 1) }

// Set sets the series for labels. Only gauges may be set.
func (f *Family) Set(labels Labels, val float64) {
	if f.kind != prometheus.GaugeValue {
		panic(Error.New("%s: set on a counter", f.name))
	}
	f.mtx.Lock()
	f.lookup(labels).val = val
	f.mtx.Unlock()
}

// Sample is one series value.
type Sample struct {
	Labels Labels
	Value  float64
}

// Replace drops every series whose labels contain all of partial, then sets
// samples. Scrapes see either the old series or the new ones. Only gauges
// may be replaced.
func (f *Family) Replace(partial Labels, samples []Sample) {
	if f.kind != prometheus.GaugeValue {
		panic(Error.New("%s: replace on a counter", f.name))
	}
	partial = validLabels(partial)
	f.mtx.Lock()
	defer f.mtx.Unlock()
	for key, s := range f.series {
		if s.matches(partial) {
			delete(f.series, key)
		}
	}
	for _, sample := range samples {
		f.lookup(sample.Labels).val = sample.Value
	}
}

func (s *series) matches(partial Labels) bool {
	for name, value := range partial {
		i := sort.SearchStrings(s.names, name)
		if i == len(s.names) || s.names[i] != name || s.values[i] != value {
			return false
		}
	}
	return true
}

// Value returns the current value of the series for labels, or zero if the
// series does not exist.
func (f *Family) Value(labels Labels) float64 {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if s, exists := f.series[validLabels(labels).String()]; exists {
		return s.val
	}
	return 0
}

// Len is the number of series in the family.
func (f *Family) Len() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.series)
}

// Series calls cb for every series, in label order.
func (f *Family) Series(cb func(labels Labels, val float64)) {
	f.mtx.Lock()
	keys := make([]string, 0, len(f.series))
	for key := range f.series {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	type entry struct {
		labels Labels
		val    float64
	}
	entries := make([]entry, 0, len(keys))
	for _, key := range keys {
		s := f.series[key]
		labels := make(Labels, len(s.values))
		for i, name := range s.names {
			labels[name] = s.values[i]
		}
		entries = append(entries, entry{labels: labels, val: s.val})
	}
	f.mtx.Unlock()
	for _, e := range entries {
		cb(e.labels, e.val)
	}
}

// Describe sends nothing, which makes the family an unchecked collector.
func (f *Family) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (f *Family) Collect(ch chan<- prometheus.Metric) {
	f.mtx.Lock()
	metrics := make([]prometheus.Metric, 0, len(f.series))
	for _, s := range f.series {
		m, err := prometheus.NewConstMetric(s.desc, f.kind, s.val, s.values...)
		if err != nil {
			m = prometheus.NewInvalidMetric(s.desc, err)
		}
		metrics = append(metrics, m)
	}
	f.mtx.Unlock()
	for _, m := range metrics {
		ch <- m
	}
}

// validLabels replaces invalid UTF-8 in label values, which host strings
// may carry and the exposition format rejects. Labels that are already valid
// are returned as is.
func validLabels(labels Labels) Labels {
	var fixed Labels
	for name, value := range labels {
		if utf8.ValidString(value) {
			continue
		}
		if fixed == nil {
			fixed = labels.Merge(nil)
		}
		fixed[name] = strings.ToValidUTF8(value, "\uFFFD")
	}
	if fixed == nil {
		return labels
	}
	return fixed
}
