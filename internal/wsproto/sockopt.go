package wsproto

import (
	"syscall"
)

// setReuseAddr sets SO_REUSEADDR on the listening socket before bind,
// matching the original implementation's
// socket.setsockopt(SOL_SOCKET, SO_REUSEADDR, 1).
func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
