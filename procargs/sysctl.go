package procargs

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/keminar/prefork/config"
	"golang.org/x/sys/unix"
)

// maxQueryAttempts bounds how often a full buffer is grown and retried.
const maxQueryAttempts = 4

// errBufferFull reports a query that filled the whole buffer.
var errBufferFull = errors.New("sysctl buffer too small")

// sysctlQuerier is the two call kernel parameter protocol: the maximum
// argument size first, then the argument area of one process.
type sysctlQuerier interface {
	ArgMax() (int, error)
	// ProcArgs copies the argument area of pid into buf and returns the
	// number of bytes the kernel reported.
	ProcArgs(pid int, buf []byte) (int, error)
}

// queryProcArgs sizes a buffer from the argument maximum and reads the
// argument area into it. A result filling the buffer exactly may be
// truncated, so the buffer is doubled and the query repeated.
func queryProcArgs(q sysctlQuerier, pid int) ([]byte, error) {
	if q == nil {
		return nil, introspectionError(pid, "no sysctl interface", nil)
	}
	size, err := q.ArgMax()
	if err != nil {
		return nil, introspectionError(pid, "sysctl kern.argmax", err)
	}
	if size <= 0 {
		return nil, introspectionError(pid, fmt.Sprintf("sysctl kern.argmax returned %d", size), nil)
	}
	if config.DebugLevel() >= config.LevelDebug {
		log.Println("procargs: argmax", size)
	}

	for attempt := 1; attempt <= maxQueryAttempts; attempt++ {
		buf := make([]byte, size)
		n, err := q.ProcArgs(pid, buf)
		switch {
		case errors.Is(err, unix.ENOMEM), err == nil && n >= len(buf):
			if config.DebugLevel() >= config.LevelDebug {
				log.Printf("procargs: %d buffer of %d bytes full, attempt %d\n", pid, size, attempt)
			}
			size *= 2
			continue
		case err != nil:
			return nil, introspectionError(pid, "sysctl procargs", err)
		}
		return buf[:n], nil
	}
	return nil, introspectionError(pid, fmt.Sprintf("sysctl procargs after %d attempts", maxQueryAttempts), errBufferFull)
}

func (r *Reader) readProcArgs2(pid int) ([]string, error) {
	buf, err := queryProcArgs(r.sysctl, pid)
	if err != nil {
		return nil, err
	}
	args, _, err := parseProcArgs2(buf, r.Order)
	if err != nil {
		return nil, introspectionError(pid, "parse kern.procargs2", err)
	}
	return args, nil
}

func (r *Reader) readProcArgs(pid int) ([]string, error) {
	buf, err := queryProcArgs(r.sysctl, pid)
	if err != nil {
		return nil, err
	}
	return parseProcArgs(buf), nil
}

// parseProcArgs2 decodes the kern.procargs2 layout:
//
//	| argc (native int) | exec_path\0 | \0 padding | arg0\0 | arg1\0 | ... | env...
//
// Every string may be preceded by padding NULs.
func parseProcArgs2(buf []byte, order ByteOrder) (args []string, execPath string, err error) {
	if len(buf) < 4 {
		return nil, "", fmt.Errorf("buffer of %d bytes has no argc", len(buf))
	}
	argc := int(int32(order.Uint32(buf)))
	if argc < 0 || argc > maxArgc {
		return nil, "", fmt.Errorf("implausible argc %d", argc)
	}
	off := 4

	execPath, off, err = nextString(buf, off)
	if err != nil {
		return nil, "", fmt.Errorf("exec path: %v", err)
	}

	args = make([]string, 0, argc)
	for i := 0; i < argc; i++ {
		for off < len(buf) && buf[off] == 0 {
			off++
		}
		if off >= len(buf) {
			return nil, "", fmt.Errorf("argv[%d]: buffer ends at %d", i, off)
		}
		var s string
		s, off, err = nextString(buf, off)
		if err != nil {
			return nil, "", fmt.Errorf("argv[%d]: %v", i, err)
		}
		args = append(args, s)
	}
	return args, execPath, nil
}

// nextString reads the NUL terminated string at off and returns the offset
// just past its terminator.
func nextString(buf []byte, off int) (string, int, error) {
	if off > len(buf) {
		return "", off, fmt.Errorf("offset %d beyond buffer of %d bytes", off, len(buf))
	}
	end := bytes.IndexByte(buf[off:], 0)
	if end < 0 {
		return "", off, fmt.Errorf("unterminated string at %d", off)
	}
	return string(buf[off : off+end]), off + end + 1, nil
}

// parseProcArgs decodes kern.proc.args: NUL separated strings filling the
// reported size, without count or exec path framing.
func parseProcArgs(buf []byte) []string {
	return parseCmdline(buf)
}
