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

package present

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

// Error is the class of errors returned by this package.
var Error = errs.Class("present")

// Config configures a Server.
type Config struct {
	Address    string
	MaxScrapes int
}

// Server is the scrape endpoint.
type Server struct {
	log      *zap.Logger
	listener net.Listener
	server   *http.Server
}

// NewServer listens on config.Address. It does not serve until Run.
func NewServer(log *zap.Logger, config Config, g prometheus.Gatherer) (*Server, error) {
	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if config.MaxScrapes > 0 {
		listener = netutil.LimitListener(listener, config.MaxScrapes)
	}
	return &Server{
		log:      log,
		listener: listener,
		server: &http.Server{
			Handler:           HTTP(log, g),
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          zap.NewStdLog(log),
		},
	}, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Run serves until ctx is done, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return Error.Wrap(s.server.Shutdown(shutdownCtx))
	})
	group.Go(func() error {
		defer cancel()
		s.log.Info("serving metrics", zap.Stringer("address", s.Addr()))
		err := s.server.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return Error.Wrap(err)
	})
	return group.Wait()
}

// Close stops the server immediately.
func (s *Server) Close() error {
	return Error.Wrap(s.server.Close())
}
