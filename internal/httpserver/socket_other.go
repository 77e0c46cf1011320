//go:build !linux
// +build !linux

package httpserver

import "net"

// tuneListener is a no-op outside Linux; golang.org/x/sys/unix's
// socket-option constants are Linux-specific in this module.
func tuneListener(l *net.TCPListener) error { return nil }

// tuneConn is a no-op outside Linux, see tuneListener.
func tuneConn(conn *net.TCPConn) error { return nil }
