package procargs

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"github.com/keminar/prefork/config"
)

// DataModel describes where psinfo_t keeps pr_argc, pr_argv and pr_dmodel
// and how wide pointers are for one Solaris data model.
//
//	typedef struct psinfo {
//		int       pr_flag;
//		int       pr_nlwp;
//		pid_t     pr_pid;    <- offset 8
//		...
//		int       pr_argc;
//		uintptr_t pr_argv;
//		uintptr_t pr_envp;
//		char      pr_dmodel;
//		...
//	} psinfo_t;
type DataModel struct {
	Name         string
	Code         byte // PR_MODEL_ILP32 or PR_MODEL_LP64
	PointerWidth int
	ArgcOffset   int
	ArgvOffset   int
	DmodelOffset int
}

var (
	// ILP32 32位进程
	ILP32 = DataModel{Name: "ilp32", Code: 1, PointerWidth: 4, ArgcOffset: 0xBC, ArgvOffset: 0xC0, DmodelOffset: 0xC8}
	// LP64 64位进程
	LP64 = DataModel{Name: "lp64", Code: 2, PointerWidth: 8, ArgcOffset: 0xEC, ArgvOffset: 0xF0, DmodelOffset: 0x100}
)

const (
	psinfoPidOffset = 8
	maxArgc         = 1 << 16
	maxArgLen       = 1 << 21
)

// HostDataModel is the data model of the running binary.
func HostDataModel() DataModel {
	if strconv.IntSize == 64 {
		return LP64
	}
	return ILP32
}

func (m DataModel) other() DataModel {
	if m.Code == LP64.Code {
		return ILP32
	}
	return LP64
}

// targetModel picks the layout whose pr_dmodel slot holds its own model
// code. The reader's own layout is probed first.
func (r *Reader) targetModel(buf []byte) DataModel {
	for _, m := range []DataModel{r.Model, r.Model.other()} {
		if m.DmodelOffset < len(buf) && buf[m.DmodelOffset] == m.Code {
			return m
		}
	}
	return r.Model
}

// readPsinfo reads argv of a Solaris process through psinfo and its
// address space image.
func (r *Reader) readPsinfo(pid int) ([]string, error) {
	path := r.procPath(pid, "psinfo")
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, introspectionError(pid, "read "+path, err)
	}
	model := r.targetModel(buf)
	if len(buf) < model.ArgvOffset+model.PointerWidth {
		return nil, introspectionError(pid, fmt.Sprintf("short psinfo (%d bytes)", len(buf)), nil)
	}

	if got := int(int32(r.Order.Uint32(buf[psinfoPidOffset:]))); got != pid {
		return nil, introspectionError(pid, fmt.Sprintf("psinfo PID mismatch: %d", got), nil)
	}

	argc := int(int32(r.Order.Uint32(buf[model.ArgcOffset:])))
	argp := r.Order.Pointer(buf[model.ArgvOffset:], model.PointerWidth)
	if config.DebugLevel() >= config.LevelDebug {
		log.Printf("procargs: %d model=%s argc=%d argp=%X\n", pid, model.Name, argc, argp)
	}
	if argc < 0 || argc > maxArgc {
		return nil, introspectionError(pid, fmt.Sprintf("implausible argc %d", argc), nil)
	}

	asPath := r.procPath(pid, "as")
	as, err := os.Open(asPath)
	if err != nil {
		return nil, introspectionError(pid, "open "+asPath, err)
	}
	defer as.Close()

	return readArgvImage(as, pid, argp, argc, model.PointerWidth, r.Order)
}

// readArgvImage follows argc pointers starting at argp inside an address
// space image and reads the string each one points to.
func readArgvImage(as io.ReadSeeker, pid int, argp uint64, argc, width int, order ByteOrder) ([]string, error) {
	args := make([]string, 0, argc)
	ptr := make([]byte, width)
	for n := 0; n < argc; n++ {
		at := argp + uint64(n*width)
		if err := seek64(as, at); err != nil {
			return nil, introspectionError(pid, fmt.Sprintf("seek argv[%d] at %X", n, at), err)
		}
		if _, err := io.ReadFull(as, ptr); err != nil {
			return nil, introspectionError(pid, fmt.Sprintf("read argv[%d] at %X", n, at), err)
		}
		p := order.Pointer(ptr, width)
		s, err := readCString(as, p)
		if err != nil {
			return nil, introspectionError(pid, fmt.Sprintf("read argv[%d] string at %X", n, p), err)
		}
		if config.DebugLevel() >= config.LevelDebug {
			log.Printf("procargs: %d argv[%d] was %q\n", pid, n, s)
		}
		args = append(args, s)
	}
	return args, nil
}

// readCString reads a NUL terminated string at p. Running into EOF ends
// the string.
func readCString(as io.ReadSeeker, p uint64) (string, error) {
	if err := seek64(as, p); err != nil {
		return "", err
	}
	br := bufio.NewReader(io.LimitReader(as, maxArgLen+1))
	b, err := br.ReadBytes(0)
	if err != nil && err != io.EOF {
		return "", err
	}
	b = bytes.TrimSuffix(b, []byte{0})
	if len(b) > maxArgLen {
		return "", fmt.Errorf("string longer than %d bytes", maxArgLen)
	}
	return string(b), nil
}
