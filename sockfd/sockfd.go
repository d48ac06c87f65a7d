// Package sockfd moves a listening socket across exec by descriptor number.
package sockfd

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Descriptor returns the descriptor number behind l and clears its
// close-on-exec flag, so a child started with exec finds it at the same
// number. l must stay open for as long as children are started.
func Descriptor(l net.Listener) (int, error) {
	sc, ok := l.(syscall.Conn)
	if !ok {
		return -1, fmt.Errorf("sockfd: %T has no descriptor", l)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}
	fd := -1
	var opErr error
	err = raw.Control(func(s uintptr) {
		fd = int(s)
		_, opErr = unix.FcntlInt(s, unix.F_SETFD, 0)
	})
	if err != nil {
		return -1, err
	}
	if opErr != nil {
		return -1, fmt.Errorf("sockfd: clear close-on-exec on %d: %w", fd, opErr)
	}
	return fd, nil
}

// IsListening reports whether fd is a socket in the listening state.
func IsListening(fd int) bool {
	val, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ACCEPTCONN)
	return err == nil && val != 0
}

// Listener wraps an inherited descriptor that is already bound and
// listening. Nothing is bound or listened again. fd itself is closed; the
// returned listener owns a duplicate.
func Listener(fd int) (net.Listener, error) {
	if !IsListening(fd) {
		return nil, fmt.Errorf("sockfd: descriptor %d is not a listening socket", fd)
	}
	f := os.NewFile(uintptr(fd), fmt.Sprintf("listener-%d", fd))
	defer f.Close()
	l, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("net.FileListener error: %v", err)
	}
	return l, nil
}
