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
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/esnet/zeekexporter/environment"
	"github.com/esnet/zeekexporter/present"
)

// Plugin is one exporter instance attached to a host runtime. Every hook
// method must be called from the host's single execution thread; only the
// metric families are read from elsewhere.
type Plugin struct {
	log      *zap.Logger
	config   Config
	node     string
	metrics  *Metrics
	registry *prometheus.Registry

	stack     *CallStack
	guard     guard
	hooks     hookTimers
	vars      varSampler
	argEvents ArgEventSpec
	globals   Scope

	sampler environment.Sampler
}

// New creates the metric families and registers them. The node label comes
// from config.Node, then $CLUSTER_NODE, then DefaultNode.
func New(log *zap.Logger, config Config) (*Plugin, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	now := config.Clock
	if now == nil {
		now = Monotonic
	}
	node := config.Node
	if node == "" {
		node = NodeFromEnv(nil)
	}

	p := &Plugin{
		log:       log,
		config:    config,
		node:      node,
		metrics:   NewMetrics(node),
		registry:  prometheus.NewRegistry(),
		stack:     NewCallStack(now),
		hooks:     newHookTimers(now),
		vars:      varSampler{policy: config.VarSize},
		argEvents: ArgEventSpec{},
	}
	for name, offsets := range config.ArgEvents {
		p.argEvents[name] = offsets
	}
	if err := p.metrics.Register(p.registry); err != nil {
		return nil, err
	}
	p.sampler = environment.Register(log.Named("environment"), p.metrics)
	return p, nil
}

// Node is the value of the node label.
func (p *Plugin) Node() string { return p.node }

// Metrics returns the plugin's metric families.
func (p *Plugin) Metrics() *Metrics { return p.metrics }

// Registry is the registry holding every family, for serving or gathering.
func (p *Plugin) Registry() *prometheus.Registry { return p.registry }

// Depth is the number of calls currently being measured.
func (p *Plugin) Depth() int { return p.stack.Depth() }

// Lineage is the chain of measured calls in flight, outermost first.
func (p *Plugin) Lineage() []string { return p.stack.Lineage() }

// InitPreScript returns the hooks the host must deliver to the plugin.
func (p *Plugin) InitPreScript() []HookType {
	p.log.Debug("enabling hooks", zap.String("node", p.node))
	return []HookType{HookCallFunction, HookLogWrite}
}

// InitPostScript runs once the host has loaded its scripts. It keeps the
// host's global scope for variable size sampling.
func (p *Plugin) InitPostScript(host Host) {
	if host != nil {
		p.globals = host.Globals()
	}
	p.log.Info("initialized",
		zap.String("node", p.node),
		zap.Int("arg events", len(p.argEvents)),
		zap.Stringer("log writes", p.config.LogWrites),
		zap.Stringer("var size", p.config.VarSize.Mode))
}

// AddArgEvent labels calls to name with the arguments at offsets.
func (p *Plugin) AddArgEvent(name string, offsets ArgOffsets) {
	p.argEvents[name] = offsets
}

// HookCallFunction is fired by the host before it dispatches call. The
// plugin takes the call over, runs it directly and measures it. The host
// fires the hook again for that direct invocation; that firing, and any
// further ones for the same call caused by other observers, are passed
// through so the call is measured exactly once.
//
// Errors and panics from the call propagate unchanged, after the call has
// been measured.
func (p *Plugin) HookCallFunction(call *Call) (handled bool, result Val, err error) {
	saved, ok := p.guard.enter(call)
	if !ok {
		return false, nil, nil
	}
	defer saved.exit()

	name := call.Func.Name()
	caller := p.stack.Caller()
	extra := p.argEvents.Labels(name, call.Args)

	p.stack.Push(name, call.Func.Type())
	defer func() {
		rec := recover()
		p.finishCall(call, caller, extra)
		if rec != nil {
			panic(rec)
		}
	}()

	result, err = call.Func.Call(call.Frame, call.Args)
	return true, result, err
}

// finishCall pops the frame of the call that just returned and records it.
func (p *Plugin) finishCall(call *Call, caller string, extra Labels) {
	frame, inclusive, absolute := p.stack.Pop()
	if frame.Children > inclusive {
		p.log.Debug("child time exceeds call time, clamping",
			zap.String("name", frame.Name),
			zap.Duration("inclusive", inclusive),
			zap.Duration("children", frame.Children))
	}
	p.stack.ReportChildDuration(inclusive)
	p.metrics.ObserveCall(frame, caller, extra, inclusive, absolute)
	p.hooks.For(HookCallFunction).Exclude(HookCallFunction, inclusive)

	if p.vars.due() {
		p.metrics.VarSizePerFunction.Set(functionLabels(frame, caller), float64(callSize(call)))
		if p.globals != nil {
			p.SampleScope(p.globals)
		}
	}
}

// HookLogWrite is fired for every record written to a log. It never vetoes
// the write.
func (p *Plugin) HookLogWrite(writer, filter string, numFields int) bool {
	n := 1.0
	if p.config.LogWrites == CountFields {
		n = float64(numFields)
	}
	p.metrics.ObserveLogWrite(writer, filter, n)
	return true
}

// MetaHookPre is fired by the host before any hook runs.
func (p *Plugin) MetaHookPre(hook HookType, args []HookArgument) {
	p.hooks.For(hook).Start(hook)
}

// MetaHookPost is fired by the host after any hook has run.
func (p *Plugin) MetaHookPost(hook HookType, args []HookArgument, result HookArgument) {
	elapsed, ok := p.hooks.For(hook).Stop(hook)
	if !ok {
		p.log.Debug("hook finished without starting", zap.Stringer("hook", hook))
		return
	}
	p.metrics.ObserveHook(hook, elapsed)
}

// SampleScope sets zeek_var_size_bytes for every variable in scope and
// returns the total size. Series of variables the scope no longer holds are
// dropped.
func (p *Plugin) SampleScope(scope Scope) uint64 {
	scopeName := scope.Name()
	var samples []Sample
	total := scopeSizes(scope, func(name string, size uint64) {
		samples = append(samples, Sample{
			Labels: Labels{"name": name, "scope": scopeName},
			Value:  float64(size),
		})
	})
	p.metrics.VarSize.Replace(Labels{"scope": scopeName}, samples)
	return total
}

// Run serves the registry and samples process CPU time until ctx is done.
func (p *Plugin) Run(ctx context.Context) error {
	server, err := present.NewServer(p.log.Named("present"), present.Config{
		Address:    p.config.Address,
		MaxScrapes: p.config.MaxScrapes,
	}, p.registry)
	if err != nil {
		return Error.Wrap(err)
	}
	return p.run(ctx, server)
}

func (p *Plugin) run(ctx context.Context, server *present.Server) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run(ctx)
	})
	group.Go(func() error {
		return environment.Run(ctx, p.log.Named("environment"), p.sampler, p.config.ProcessInterval, p.metrics)
	})
	return group.Wait()
}

// Close checks that every measured call was closed.
func (p *Plugin) Close() error {
	var group errs.Group
	if depth := p.stack.Depth(); depth != 0 {
		group.Add(StackError.New("%d calls still open: %v", depth, p.stack.Lineage()))
	}
	if p.guard.intercepting() {
		group.Add(StackError.New("still intercepting a call"))
	}
	if err := group.Err(); err != nil {
		return err
	}
	p.log.Info("closed",
		zap.Int64("foreign re-entries", p.guard.foreignHits),
		zap.Int64("unpaired hooks", p.hooks.dropped()))
	return nil
}
