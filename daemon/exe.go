package daemon

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/keminar/prefork/config"
	"github.com/keminar/prefork/procargs"
	"golang.org/x/sys/unix"
)

const (
	minLinkBuf = 512
	maxLinkBuf = 65536
)

// exeResolver finds the file the running process was started from.
type exeResolver struct {
	platform procargs.Platform
	procRoot string
	getpid   func() int
	readlink func(path string, buf []byte) (int, error)
	lstat    func(path string) (os.FileInfo, error)
	fallback func() (string, error)
}

func newExeResolver() *exeResolver {
	p, _ := procargs.HostPlatform()
	return &exeResolver{
		platform: p,
		procRoot: "/proc",
		getpid:   unix.Getpid,
		readlink: unix.Readlink,
		lstat:    os.Lstat,
		fallback: os.Executable,
	}
}

// selfLink is the procfs entry pointing at the executable, if the platform
// has one.
func (r *exeResolver) selfLink() string {
	switch r.platform {
	case procargs.Linux:
		return filepath.Join(r.procRoot, strconv.Itoa(r.getpid()), "exe")
	case procargs.Solaris:
		return filepath.Join(r.procRoot, strconv.Itoa(r.getpid()), "path", "a.out")
	case procargs.FreeBSD:
		return filepath.Join(r.procRoot, "curproc", "file")
	}
	return ""
}

// Executable 当前可执行文件路径
func (r *exeResolver) Executable() (string, error) {
	link := r.selfLink()
	if link != "" {
		if _, err := r.lstat(link); err == nil {
			path, err := r.resolveSymlink(link)
			if err == nil {
				return path, nil
			}
			if config.DebugLevel() >= config.LevelDebug {
				log.Println(os.Getpid(), "failed to resolve symlink", link, err)
			}
			return link, nil
		}
	}
	return r.fallback()
}

// resolveSymlink reads link with a buffer that grows until the target fits.
// A path that is not a symlink resolves to itself.
func (r *exeResolver) resolveSymlink(link string) (string, error) {
	for sz := minLinkBuf; sz < maxLinkBuf; sz *= 2 {
		buf := make([]byte, sz)
		n, err := r.readlink(link, buf)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				return link, nil
			}
			return "", fmt.Errorf("readlink %s: %w", link, err)
		}
		if n == sz {
			continue
		}
		return string(buf[:n]), nil
	}
	return "", fmt.Errorf("readlink %s: target longer than %d bytes", link, maxLinkBuf)
}
