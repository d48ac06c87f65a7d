// Package daemon relaunches the current program into the background.
//
// Go cannot fork without exec, so a daemon is the same executable started
// again with a marker in its arguments. The new process sees the marker,
// calls Init and carries on as the daemon while the original exits.
package daemon

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"syscall"

	"github.com/keminar/prefork/argv"
	"github.com/keminar/prefork/procargs"
	"golang.org/x/sys/unix"
)

// DefaultPidFile 默认pid文件
const DefaultPidFile = "/var/run/daemon.pid"

// Daemonized is the value of the daemon marker.
const Daemonized = "daemonized"

// NoUmask leaves the umask alone.
const NoUmask = -1

// Spawner starts exe as a new process. syscall.ForkExec is the real one.
type Spawner interface {
	Spawn(exe string, args []string, attr *syscall.ProcAttr) (pid int, err error)
}

// SpawnFunc adapts a function to Spawner.
type SpawnFunc func(exe string, args []string, attr *syscall.ProcAttr) (int, error)

// Spawn calls f.
func (f SpawnFunc) Spawn(exe string, args []string, attr *syscall.ProcAttr) (int, error) {
	return f(exe, args, attr)
}

// ForkExec forks and execs with syscall.ForkExec.
var ForkExec Spawner = SpawnFunc(syscall.ForkExec)

// Options 后台化选项
type Options struct {
	// PidFile is written by Init when not empty.
	PidFile string
	// KeepStdio leaves standard input and output alone, for debugging.
	KeepStdio bool
	// Stdio receives standard output and error instead of /dev/null.
	Stdio *os.File
	// NoChdir keeps the working directory so relative paths stay valid.
	NoChdir bool
	// Umask is applied by Init unless it is NoUmask.
	Umask int
}

// Daemon 后台进程
type Daemon struct {
	Options

	// Args are the arguments of this process; os.Args when nil.
	Args argv.Vector
	// ReadArgs recovers the argument vector to relaunch with.
	ReadArgs func() (argv.Vector, error)
	Spawner  Spawner
	Stderr   io.Writer
	Exit     func(code int)

	exe  *exeResolver
	sys  system
	exec func(exe string, args []string, env []string) error
}

// New returns a Daemon with the default pid file and no umask change.
func New() *Daemon {
	return &Daemon{
		Options: Options{
			PidFile: DefaultPidFile,
			Umask:   NoUmask,
		},
		ReadArgs: procargs.Current,
		Spawner:  ForkExec,
		Stderr:   os.Stderr,
		Exit:     os.Exit,
		exe:      newExeResolver(),
		sys:      unixSystem{},
		exec:     unix.Exec,
	}
}

func (d *Daemon) args() argv.Vector {
	if d.Args != nil {
		return d.Args
	}
	return argv.Vector(os.Args)
}

// IsDaemonized 是否已是后台进程
func (d *Daemon) IsDaemonized() bool {
	_, ok := d.args().Marker(argv.KeyDaemon)
	return ok
}

// Executable 当前可执行文件路径
func (d *Daemon) Executable() (string, error) {
	return d.exe.Executable()
}

// Daemonize starts the executable again with the daemon marker set on
// args. The caller should exit right after it returns.
func (d *Daemon) Daemonize(args argv.Vector) error {
	if d.IsDaemonized() {
		return &Error{Kind: ErrAlreadyDaemonized, Op: "daemonize"}
	}
	args = args.Clone()
	args.SetMarker(argv.KeyDaemon, Daemonized)

	exe, err := d.Executable()
	if err != nil {
		return err
	}
	_, err = d.Spawn(exe, args, []uintptr{0, 1, 2})
	if errors.Is(err, ErrExec) {
		// only the child is lost
		return nil
	}
	return err
}

// Spawn forks and execs exe with args. The child gets files as its
// descriptors 0..n-1. A fork failure is reported on stderr and ends this
// process with ExitForkFailure. An exec failure is reported and returned.
func (d *Daemon) Spawn(exe string, args argv.Vector, files []uintptr) (int, error) {
	attr := &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: files,
	}
	pid, err := d.Spawner.Spawn(exe, args.Strings(), attr)
	if err == nil {
		return pid, nil
	}
	if isForkErrno(err) {
		fmt.Fprintf(d.Stderr, "fork %s: %v\n", exe, err)
		d.Exit(ExitForkFailure)
		return 0, &Error{Kind: ErrFork, Op: "fork " + exe, Err: err}
	}
	fmt.Fprintf(d.Stderr, "exec %s: %v\n", exe, err)
	return 0, &Error{Kind: ErrExec, Op: "exec " + exe, Err: err}
}

// isForkErrno tells the errors of fork itself from those of the exec that
// follows it.
func isForkErrno(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case syscall.EAGAIN, syscall.ENOMEM, syscall.EMFILE, syscall.ENFILE:
		return true
	}
	return false
}

// SelfExec replaces the current process image with the executable and
// args. It only returns on failure.
func (d *Daemon) SelfExec(args argv.Vector) error {
	exe, err := d.Executable()
	if err != nil {
		return err
	}
	if err = d.exec(exe, args.Strings(), os.Environ()); err != nil {
		return &Error{Kind: ErrExec, Op: "exec " + exe, Err: err}
	}
	return nil
}

// All initializes an already daemonized process, or daemonizes and exits
// when shouldDaemonize is set. Otherwise it does nothing.
func (d *Daemon) All(shouldDaemonize bool) error {
	if d.IsDaemonized() {
		return d.Init(d.PidFile)
	}
	if !shouldDaemonize {
		return nil
	}
	args, err := d.ReadArgs()
	if err != nil {
		return err
	}
	if err = d.Daemonize(args); err != nil {
		return err
	}
	log.Println(os.Getpid(), "daemonized, parent exits")
	d.Exit(0)
	return nil
}
