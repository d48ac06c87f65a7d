package procargs

import (
	"bytes"
	"io/ioutil"
	"log"
	"path/filepath"
	"strconv"

	"github.com/keminar/prefork/config"
)

func (r *Reader) procPath(pid int, name string) string {
	return filepath.Join(r.ProcRoot, strconv.Itoa(pid), name)
}

// readCmdline reads the NUL separated argv buffer of a Linux process.
func (r *Reader) readCmdline(pid int) ([]string, error) {
	path := r.procPath(pid, "cmdline")
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, introspectionError(pid, "read "+path, err)
	}
	if len(data) == 0 {
		// kernel threads and zombies have no argv
		return nil, introspectionError(pid, "empty "+path, nil)
	}
	args := parseCmdline(data)
	if config.DebugLevel() >= config.LevelDebug {
		log.Println("procargs:", pid, "cmdline has", len(args), "entries")
	}
	return args, nil
}

// parseCmdline splits buf on NUL. The empty element produced by the
// terminating NUL is dropped.
func parseCmdline(buf []byte) []string {
	if len(buf) == 0 {
		return nil
	}
	buf = bytes.TrimSuffix(buf, []byte{0})
	parts := bytes.Split(buf, []byte{0})
	args := make([]string, len(parts))
	for i, p := range parts {
		args[i] = string(p)
	}
	return args
}
