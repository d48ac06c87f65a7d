package daemon

import (
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"github.com/keminar/prefork/config"
	"golang.org/x/sys/unix"
)

// system is the part of the OS Init talks to.
type system interface {
	Setsid() (int, error)
	Dup2(oldfd, newfd int) error
	Umask(mask int) int
	Chdir(dir string) error
	Getpid() int
}

type unixSystem struct{}

func (unixSystem) Setsid() (int, error) { return unix.Setsid() }
func (unixSystem) Dup2(oldfd, newfd int) error { return unix.Dup2(oldfd, newfd) }
func (unixSystem) Umask(mask int) int { return unix.Umask(mask) }
func (unixSystem) Chdir(dir string) error { return unix.Chdir(dir) }
func (unixSystem) Getpid() int { return unix.Getpid() }

// Init prepares a freshly daemonized process: new session, detached
// stdio, umask, working directory and pid file. pidFile may be empty.
func (d *Daemon) Init(pidFile string) error {
	if _, err := d.sys.Setsid(); err != nil && config.DebugLevel() >= config.LevelLong {
		log.Println(os.Getpid(), "setsid", err)
	}
	if !d.KeepStdio {
		if err := d.detachStdio(); err != nil {
			return err
		}
	}
	if d.Umask != NoUmask {
		d.sys.Umask(d.Umask)
	}
	if !d.NoChdir {
		if err := d.sys.Chdir("/"); err != nil {
			return err
		}
	}
	if pidFile != "" {
		if err := d.writePidFile(pidFile); err != nil && config.DebugLevel() >= config.LevelDebug {
			log.Println(os.Getpid(), err)
		}
	}
	return nil
}

// detachStdio points descriptors 0, 1 and 2 at /dev/null, or 1 and 2 at
// Options.Stdio when set.
func (d *Daemon) detachStdio() error {
	null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer null.Close()

	out := null
	if d.Stdio != nil {
		out = d.Stdio
	}
	for n, f := range []*os.File{null, out, out} {
		if err := d.sys.Dup2(int(f.Fd()), n); err != nil {
			return err
		}
	}
	return nil
}

// writePidFile 写pid文件
func (d *Daemon) writePidFile(pidFile string) error {
	pid := strconv.Itoa(d.sys.Getpid())
	if err := ioutil.WriteFile(pidFile, []byte(pid), 0644); err != nil {
		return &Error{Kind: ErrPidFile, Op: "write " + pidFile, Err: err}
	}
	return nil
}
