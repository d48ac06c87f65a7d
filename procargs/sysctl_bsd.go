//go:build darwin || freebsd

package procargs

import (
	"golang.org/x/sys/unix"
)

// kernSysctl queries the running kernel.
type kernSysctl struct {
	name string
}

func newKernSysctl(p Platform) sysctlQuerier {
	switch p {
	case Darwin:
		return kernSysctl{name: "kern.procargs2"}
	case FreeBSD:
		return kernSysctl{name: "kern.proc.args"}
	}
	return nil
}

func (k kernSysctl) ArgMax() (int, error) {
	n, err := unix.SysctlUint32("kern.argmax")
	return int(n), err
}

func (k kernSysctl) ProcArgs(pid int, buf []byte) (int, error) {
	data, err := unix.SysctlRaw(k.name, pid)
	if err != nil {
		return 0, err
	}
	if len(data) > len(buf) {
		copy(buf, data)
		return len(buf), nil
	}
	return copy(buf, data), nil
}
