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

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	ze "github.com/esnet/zeekexporter"
	"github.com/esnet/zeekexporter/internal/hostsim"
)

var services = []string{"http", "ssl", "dns", "ssh", "-"}

// script is a tiny stand-in for Zeek's base scripts: connections are
// created, analyzed and logged through events, script functions and
// builtins, so every kind of call and both log write paths are exercised.
type script struct {
	rt      *hostsim.Runtime
	conns   int
	pending hostsim.Vector
	seen    hostsim.Count

	newConnection   *hostsim.Func
	sslEstablished  *hostsim.Func
	stateRemove     *hostsim.Func
	setConn         *hostsim.Func
	logConn         *hostsim.Func
	finalizeSSL     *hostsim.Func
	fmtBIF          *hostsim.Func
	networkTimeBIF  *hostsim.Func
	hashBIF         *hostsim.Func
	certificateHook *hostsim.Func
}

func newScript(rt *hostsim.Runtime, conns int) *script {
	s := &script{rt: rt, conns: conns}

	s.fmtBIF = rt.Define("fmt", ze.FuncTypeBuiltin, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, arg.String())
		}
		return hostsim.String(strings.Join(parts, " ")), nil
	})
	s.networkTimeBIF = rt.Define("network_time", ze.FuncTypeBuiltin, func(*hostsim.Frame, []ze.Val) (ze.Val, error) {
		return hostsim.Count(time.Now().Unix()), nil
	})
	s.hashBIF = rt.Define("sha1_hash", ze.FuncTypeBuiltin, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		var h uint64 = 14695981039346656037
		for _, c := range args[0].String() {
			h = (h ^ uint64(c)) * 1099511628211
		}
		return hostsim.String(fmt.Sprintf("%016x", h)), nil
	})
	s.certificateHook = rt.Define("SSL::ssl_finishing", ze.FuncTypeHook, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		return frame.Call(s.hashBIF, args[0])
	})

	s.setConn = rt.Define("set_conn", ze.FuncTypeFunction, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		if _, err := frame.Call(s.networkTimeBIF); err != nil {
			return nil, err
		}
		return frame.Call(s.fmtBIF, hostsim.String("C"), args[0])
	})
	s.logConn = rt.Define("Conn::log_conn", ze.FuncTypeFunction, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		uid, err := frame.Call(s.setConn, args[0])
		if err != nil {
			return nil, err
		}
		frame.Log("conn", "default", 22)
		return uid, nil
	})
	s.finalizeSSL = rt.Define("SSL::finalize_ssl", ze.FuncTypeFunction, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		if _, err := frame.Call(s.certificateHook, args[1]); err != nil {
			return nil, err
		}
		frame.Log("ssl", "default", 18)
		return nil, nil
	})

	s.newConnection = rt.Define("new_connection", ze.FuncTypeEvent, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		s.seen++
		s.pending = append(s.pending, args[0])
		rt.SetGlobal("Conn::seen", s.seen)
		rt.SetGlobal("Conn::pending", s.pending)
		return nil, nil
	})
	s.sslEstablished = rt.Define("ssl_established", ze.FuncTypeEvent, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		_, err := frame.Call(s.finalizeSSL, args...)
		return nil, err
	})
	s.stateRemove = rt.Define("connection_state_remove", ze.FuncTypeEvent, func(frame *hostsim.Frame, args []ze.Val) (ze.Val, error) {
		if len(s.pending) > 0 {
			s.pending = s.pending[1:]
			rt.SetGlobal("Conn::pending", s.pending)
		}
		_, err := frame.Call(s.logConn, args...)
		return nil, err
	})

	rt.SetGlobal("Conn::seen", s.seen)
	rt.SetGlobal("Conn::pending", s.pending)
	return s
}

// batch queues the events of n connections and drains them.
func (s *script) batch(n int) error {
	for i := 0; i < n; i++ {
		id := hostsim.String(fmt.Sprintf("C%08x", rand.Uint32()))
		service := hostsim.String(services[rand.IntN(len(services))])
		s.rt.Queue(s.newConnection, id, service)
		if service == "ssl" {
			s.rt.Queue(s.sslEstablished, id, hostsim.String("CN=example.org"))
		}
		s.rt.Queue(s.stateRemove, id, service)
	}
	return s.rt.Drain()
}

// run processes a batch every tick until ctx is done.
func (s *script) run(ctx context.Context, log *zap.Logger, tick time.Duration) error {
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.batch(s.conns); err != nil {
				return err
			}
			log.Debug("batch processed", zap.Int("connections", s.conns))
		}
	}
}
