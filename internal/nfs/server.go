// Copyright 2024 PatternFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nfs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"
	gonfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// handleCacheSize bounds the file handles the caching handler remembers.
const handleCacheSize = 65536

// Server exports a TreeFS over NFSv3.
type Server struct {
	fs       *TreeFS
	server   *gonfs.Server
	cancel   context.CancelFunc
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a server for fs. Nothing listens until Start.
func NewServer(fs *TreeFS) *Server {
	// Match go-nfs log level to ours
	if log.IsLevelEnabled(log.TraceLevel) {
		gonfs.Log.SetLevel(gonfs.TraceLevel)
	} else if log.IsLevelEnabled(log.DebugLevel) {
		gonfs.Log.SetLevel(gonfs.DebugLevel)
	}

	handler := nfshelper.NewNullAuthHandler(fs)
	cacheHelper := nfshelper.NewCachingHandler(handler, handleCacheSize)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		fs: fs,
		server: &gonfs.Server{
			Handler: cacheHelper,
			Context: ctx,
		},
		cancel: cancel,
	}
}

// Start listens on addr ("127.0.0.1:0" picks a free port) and serves in the
// background. It returns the bound address.
func (s *Server) Start(addr string) (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil, errors.New("server already started")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Warnf("[NFS] serve stopped: %v", err)
		}
	}()
	log.Infof("[NFS] serving on %s", listener.Addr())
	return listener.Addr(), nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown closes the listener and cancels in-flight handlers.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	log.Infof("[NFS] stopped")
}

// MountCommand returns the mount invocation for a server on port.
func MountCommand(host string, port int, mountPath string) string {
	return fmt.Sprintf("mount -t nfs -o port=%d,mountport=%d,nfsvers=3,tcp,nolock %s:/ %s", port, port, host, mountPath)
}
