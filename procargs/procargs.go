// Package procargs recovers the original argument vector of a running
// process.
//
// Each supported operating system family exposes argv differently:
//
//	Linux    /proc/<pid>/cmdline, NUL separated
//	Solaris  /proc/<pid>/psinfo for argc and the argv address, then the
//	         raw address space in /proc/<pid>/as
//	Darwin   sysctl kern.procargs2 (argc, exec path, padded strings)
//	FreeBSD  sysctl kern.proc.args (bare NUL separated strings)
//
// The platform is resolved once; every other OS is rejected with
// ErrUnsupportedPlatform.
package procargs

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/keminar/prefork/argv"
	"golang.org/x/sys/unix"
)

// Self 当前进程
const Self = -1

// Platform is one of the supported operating system families.
type Platform int

const (
	// Linux reads procfs cmdline
	Linux Platform = iota + 1
	// Solaris reads psinfo and the process address space
	Solaris
	// FreeBSD queries kern.proc.args
	FreeBSD
	// Darwin queries kern.procargs2
	Darwin
)

var platformName = map[Platform]string{
	Linux:   "linux",
	Solaris: "solaris",
	FreeBSD: "freebsd",
	Darwin:  "darwin",
}

func (p Platform) String() string {
	if s, ok := platformName[p]; ok {
		return s
	}
	return "unknown(" + strconv.Itoa(int(p)) + ")"
}

// PlatformOf maps a GOOS value to a Platform.
func PlatformOf(goos string) (Platform, error) {
	switch goos {
	case "linux":
		return Linux, nil
	case "solaris", "illumos":
		return Solaris, nil
	case "freebsd":
		return FreeBSD, nil
	case "darwin":
		return Darwin, nil
	}
	return 0, &Error{Kind: ErrUnsupportedPlatform, Op: "resolve platform " + goos, Pid: Self}
}

// HostPlatform 当前操作系统
func HostPlatform() (Platform, error) {
	return PlatformOf(runtime.GOOS)
}

// Reader reads argument vectors on one platform.
type Reader struct {
	Platform Platform
	// ProcRoot is the procfs mount point, "/proc" unless testing.
	ProcRoot string
	// Order decodes multi-byte values read from process images.
	Order ByteOrder
	// Model is the data model of the reading process.
	Model DataModel

	getpid func() int
	sysctl sysctlQuerier
}

// NewReader returns a Reader for the host platform.
func NewReader() (*Reader, error) {
	p, err := HostPlatform()
	if err != nil {
		return nil, err
	}
	return &Reader{
		Platform: p,
		ProcRoot: "/proc",
		Order:    HostByteOrder(),
		Model:    HostDataModel(),
		getpid:   unix.Getpid,
		sysctl:   newKernSysctl(p),
	}, nil
}

// Read returns the argument vector of pid, or of the calling process when
// pid is Self.
func (r *Reader) Read(pid int) (argv.Vector, error) {
	if pid == Self {
		pid = r.getpid()
	}
	var (
		args []string
		err  error
	)
	switch r.Platform {
	case Linux:
		args, err = r.readCmdline(pid)
	case Solaris:
		args, err = r.readPsinfo(pid)
	case Darwin:
		args, err = r.readProcArgs2(pid)
	case FreeBSD:
		args, err = r.readProcArgs(pid)
	default:
		return nil, &Error{Kind: ErrUnsupportedPlatform, Op: fmt.Sprintf("read %s", r.Platform), Pid: pid}
	}
	if err != nil {
		return nil, err
	}
	return argv.Vector(args), nil
}

// Read reads the argument vector of pid on the host platform.
func Read(pid int) (argv.Vector, error) {
	r, err := NewReader()
	if err != nil {
		return nil, err
	}
	return r.Read(pid)
}

// Current 当前进程的参数
func Current() (argv.Vector, error) {
	return Read(Self)
}
