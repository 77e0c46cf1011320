//go:build linux
// +build linux

package httpserver

import (
	"net"

	"golang.org/x/sys/unix"
)

// tuneListener sets SO_REUSEADDR on the listener's file descriptor so a
// restarted server can rebind the port immediately instead of waiting
// out TIME_WAIT. Best effort: a failure here is logged by the caller,
// not fatal.
func tuneListener(l *net.TCPListener) error {
	rawConn, err := l.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// tuneConn sets TCP_NODELAY on an accepted connection, disabling
// Nagle's algorithm so small writes (status lines, chunk headers) are
// not delayed waiting to coalesce.
func tuneConn(conn *net.TCPConn) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
