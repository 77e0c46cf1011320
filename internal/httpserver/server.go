// Package httpserver implements the connection lifecycle controller: the
// accept loop, the per-connection request loop, keep-alive, the
// composed timeout budgets, and graceful shutdown. It is the part of
// this module that owns a socket; internal/http11 never touches net.
package httpserver

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// acceptErrorBackoff is how long the accept loop sleeps after a
// non-fatal accept error before retrying.
const acceptErrorBackoff = 50 * time.Millisecond

// ServerHandle is the handle returned by Serve. Close stops the accept
// loop; in-flight connections run to completion or their own timeouts.
// Addr and Wait report the bound address and wait for shutdown.
type ServerHandle struct {
	listener net.Listener
	closed   atomic.Bool
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// Close stops accepting new connections. It does not forcibly close
// connections already being served.
func (h *ServerHandle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	return h.listener.Close()
}

// Addr returns the listener's bound address. Useful with port 0 to
// discover the ephemeral port the OS assigned.
func (h *ServerHandle) Addr() net.Addr {
	return h.listener.Addr()
}

// Wait blocks until the accept loop and every in-flight connection's
// per-connection loop have returned; the accept loop returns only after
// Close, so Wait does not return before Close is called. Callers that want a hard deadline on shutdown should
// race Wait against their own timer and fall back to forcibly closing
// connections themselves; ServerHandle does not track individual
// sockets beyond the accept loop's WaitGroup.
func (h *ServerHandle) Wait() {
	h.wg.Wait()
}

// Serve binds a TCP listener on 127.0.0.1:port, spawns the accept
// loop, and returns immediately with a handle. Each accepted
// connection is dispatched to its own goroutine running the
// per-connection loop against handler.
func Serve(port int, handler Handler, opts ...Option) (*ServerHandle, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}

	if cfg.tuneSockets {
		if tcpLn, ok := ln.(*net.TCPListener); ok {
			if err := tuneListener(tcpLn); err != nil {
				cfg.logger.Debug("socket tuning on listener failed", zap.Error(err))
			}
		}
	}

	handle := &ServerHandle{listener: ln, logger: cfg.logger}

	var sem *semaphore.Weighted
	if cfg.maxConns > 0 {
		sem = semaphore.NewWeighted(cfg.maxConns)
	}

	handle.wg.Add(1)
	go acceptLoop(handle, ln, handler, cfg, sem)

	return handle, nil
}

func acceptLoop(handle *ServerHandle, ln net.Listener, handler Handler, cfg config, sem *semaphore.Weighted) {
	defer handle.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if handle.closed.Load() {
				return
			}
			cfg.logger.Warn("accept error, retrying", zap.Error(err))
			time.Sleep(acceptErrorBackoff)
			continue
		}

		if cfg.tuneSockets {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				if err := tuneConn(tcpConn); err != nil {
					cfg.logger.Debug("socket tuning on connection failed", zap.Error(err))
				}
			}
		}

		handle.wg.Add(1)
		go func() {
			defer handle.wg.Done()

			if sem != nil {
				if err := sem.Acquire(context.Background(), 1); err != nil {
					conn.Close()
					return
				}
				defer sem.Release(1)
			}

			serveConnection(conn, handler, cfg.logger)
		}()
	}
}

