package procargs

import (
	"encoding/binary"
	"errors"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestReadSelf(t *testing.T) {
	r, err := NewReader()
	if errors.Is(err, ErrUnsupportedPlatform) {
		t.Skip("host platform not supported")
	}
	require.NoError(t, err)

	args, err := r.Read(Self)
	require.NoError(t, err)
	require.NotEmpty(t, args)
	require.Equal(t, filepath.Base(os.Args[0]), filepath.Base(args[0]))
}

func TestPlatformOf(t *testing.T) {
	for goos, want := range map[string]Platform{
		"linux":   Linux,
		"solaris": Solaris,
		"illumos": Solaris,
		"freebsd": FreeBSD,
		"darwin":  Darwin,
	} {
		got, err := PlatformOf(goos)
		require.NoError(t, err, goos)
		require.Equal(t, want, got, goos)
	}

	_, err := PlatformOf("windows")
	require.True(t, errors.Is(err, ErrUnsupportedPlatform))
}

func TestReadUnknownPlatform(t *testing.T) {
	r := &Reader{Platform: Platform(42), getpid: func() int { return 1 }}
	_, err := r.Read(Self)
	require.True(t, errors.Is(err, ErrUnsupportedPlatform))
}

func TestParseCmdline(t *testing.T) {
	require.Equal(t, []string{"/bin/sleep", "10"}, parseCmdline([]byte("/bin/sleep\x0010\x00")))
	require.Equal(t, []string{"a", "", "b"}, parseCmdline([]byte("a\x00\x00b\x00")))
	require.Equal(t, []string{"noterm"}, parseCmdline([]byte("noterm")))
	require.Nil(t, parseCmdline(nil))
}

func TestReadCmdlineFromProcRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "77"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, "77", "cmdline"),
		[]byte("/usr/bin/echod\x00-Dprefork.mode=worker\x00-l\x00:12345\x00"), 0644))

	r := &Reader{Platform: Linux, ProcRoot: root, getpid: func() int { return 77 }}
	args, err := r.Read(Self)
	require.NoError(t, err)
	require.Equal(t, []string{"/usr/bin/echod", "-Dprefork.mode=worker", "-l", ":12345"}, args.Strings())

	_, err = r.Read(78)
	require.True(t, errors.Is(err, ErrIntrospection))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestByteOrderSwapsOnLittleEndian(t *testing.T) {
	le := ByteOrder{LittleEndian: true}
	be := ByteOrder{LittleEndian: false}

	// a big-endian read of a little-endian stored 1
	require.Equal(t, uint32(1), le.Adjust32(0x01000000))
	require.Equal(t, uint64(1), le.Adjust64(0x0100000000000000))
	require.Equal(t, uint32(0x01000000), be.Adjust32(0x01000000))

	b := []byte{0x78, 0x56, 0x34, 0x12, 0xf0, 0xde, 0xbc, 0x9a}
	require.Equal(t, binary.LittleEndian.Uint32(b), le.Uint32(b))
	require.Equal(t, binary.LittleEndian.Uint64(b), le.Uint64(b))
	require.Equal(t, binary.BigEndian.Uint32(b), be.Uint32(b))
	require.Equal(t, uint64(0x12345678), le.Pointer(b, 4))
}

func TestHostByteOrderMatchesNative(t *testing.T) {
	var x uint32 = 0x01020304
	b := (*[4]byte)(unsafe.Pointer(&x))
	require.Equal(t, x, HostByteOrder().Uint32(b[:]))
}

type recordingSeeker struct {
	calls []seekCall
}

type seekCall struct {
	offset int64
	whence int
}

func (s *recordingSeeker) Seek(offset int64, whence int) (int64, error) {
	s.calls = append(s.calls, seekCall{offset, whence})
	return 0, nil
}

func TestSeek64SplitsLargeOffsets(t *testing.T) {
	s := &recordingSeeker{}
	require.NoError(t, seek64(s, 0x10))
	require.Equal(t, []seekCall{{0, io.SeekStart}, {0x10, io.SeekCurrent}}, s.calls)

	s = &recordingSeeker{}
	require.NoError(t, seek64(s, math.MaxUint64))
	require.Equal(t, []seekCall{
		{0, io.SeekStart},
		{math.MaxInt64, io.SeekCurrent},
		{math.MaxInt64, io.SeekCurrent},
		{1, io.SeekCurrent},
	}, s.calls)
	for _, c := range s.calls {
		require.GreaterOrEqual(t, c.offset, int64(0))
	}
}

// writeSolarisProc lays out a psinfo file and an address space image for
// pid in root. Values are stored little-endian.
func writeSolarisProc(t *testing.T, root string, pid, psinfoPid int, model DataModel, args []string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0755))

	psinfo := make([]byte, 0x1A0)
	binary.LittleEndian.PutUint32(psinfo[psinfoPidOffset:], uint32(psinfoPid))
	binary.LittleEndian.PutUint32(psinfo[model.ArgcOffset:], uint32(len(args)))
	const argp = 0x40
	if model.PointerWidth == 8 {
		binary.LittleEndian.PutUint64(psinfo[model.ArgvOffset:], argp)
	} else {
		binary.LittleEndian.PutUint32(psinfo[model.ArgvOffset:], argp)
	}
	psinfo[model.DmodelOffset] = model.Code
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "psinfo"), psinfo, 0644))

	as := make([]byte, argp+len(args)*model.PointerWidth)
	for i, a := range args {
		p := len(as)
		as = append(as, a...)
		as = append(as, 0)
		slot := as[argp+i*model.PointerWidth:]
		if model.PointerWidth == 8 {
			binary.LittleEndian.PutUint64(slot, uint64(p))
		} else {
			binary.LittleEndian.PutUint32(slot, uint32(p))
		}
	}
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "as"), as, 0644))
}

func TestReadPsinfo(t *testing.T) {
	args := []string{"/usr/bin/echod", "-l", ":12345", ""}
	for _, tc := range []struct {
		name   string
		reader DataModel
		target DataModel
	}{
		{"lp64", LP64, LP64},
		{"ilp32", ILP32, ILP32},
		{"ilp32 target from lp64 reader", LP64, ILP32},
	} {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeSolarisProc(t, root, 501, 501, tc.target, args)
			r := &Reader{
				Platform: Solaris,
				ProcRoot: root,
				Order:    ByteOrder{LittleEndian: true},
				Model:    tc.reader,
			}
			got, err := r.Read(501)
			require.NoError(t, err)
			require.Equal(t, args, got.Strings())
		})
	}
}

func TestReadPsinfoPidMismatch(t *testing.T) {
	root := t.TempDir()
	writeSolarisProc(t, root, 501, 502, LP64, []string{"x"})
	r := &Reader{Platform: Solaris, ProcRoot: root, Order: ByteOrder{LittleEndian: true}, Model: LP64}
	_, err := r.Read(501)
	require.True(t, errors.Is(err, ErrIntrospection))
	require.Contains(t, err.Error(), "PID mismatch")
}

func TestReadPsinfoShortFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "9"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(root, "9", "psinfo"), make([]byte, 16), 0644))
	r := &Reader{Platform: Solaris, ProcRoot: root, Order: ByteOrder{LittleEndian: true}, Model: LP64}
	_, err := r.Read(9)
	require.True(t, errors.Is(err, ErrIntrospection))
}

func procArgs2Buffer(argc int, exec string, args ...string) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(argc))
	buf = append(buf, exec...)
	buf = append(buf, 0, 0, 0, 0) // terminator and alignment padding
	for _, a := range args {
		buf = append(buf, a...)
		buf = append(buf, 0)
	}
	buf = append(buf, "PATH=/bin\x00"...)
	return buf
}

func TestParseProcArgs2(t *testing.T) {
	le := ByteOrder{LittleEndian: true}
	buf := procArgs2Buffer(3, "/usr/local/bin/echod", "echod", "-l", ":1")

	args, exec, err := parseProcArgs2(buf, le)
	require.NoError(t, err)
	require.Equal(t, "/usr/local/bin/echod", exec)
	require.Equal(t, []string{"echod", "-l", ":1"}, args)

	_, _, err = parseProcArgs2(buf[:3], le)
	require.Error(t, err)

	_, _, err = parseProcArgs2(procArgs2Buffer(9, "/x", "a"), le)
	require.Error(t, err)

	_, _, err = parseProcArgs2(append(procArgs2Buffer(1, "/x"), "unterminated"...), le)
	require.NoError(t, err)

	neg := procArgs2Buffer(0, "/x")
	binary.LittleEndian.PutUint32(neg, math.MaxUint32)
	_, _, err = parseProcArgs2(neg, le)
	require.Error(t, err)
}

func TestParseProcArgsStopsAtReportedSize(t *testing.T) {
	buf := []byte("echod\x00-l\x00:1\x00garbage-after-size")
	require.Equal(t, []string{"echod", "-l", ":1"}, parseProcArgs(buf[:12]))
}

// fakeSysctl answers a filled buffer for every size listed in full.
type fakeSysctl struct {
	argmax int
	data   []byte
	full   map[int]bool
	enomem bool
	sizes  []int
}

func (f *fakeSysctl) ArgMax() (int, error) { return f.argmax, nil }

func (f *fakeSysctl) ProcArgs(pid int, buf []byte) (int, error) {
	f.sizes = append(f.sizes, len(buf))
	if f.full[len(buf)] {
		if f.enomem {
			return 0, unix.ENOMEM
		}
		return len(buf), nil
	}
	return copy(buf, f.data), nil
}

func TestQueryProcArgsRetriesFullBuffer(t *testing.T) {
	data := []byte("a\x00b\x00")
	for _, enomem := range []bool{false, true} {
		q := &fakeSysctl{argmax: 8, data: data, full: map[int]bool{8: true, 16: true}, enomem: enomem}
		got, err := queryProcArgs(q, 3)
		require.NoError(t, err)
		require.Equal(t, data, got)
		require.Equal(t, []int{8, 16, 32}, q.sizes)
	}
}

func TestQueryProcArgsGivesUp(t *testing.T) {
	full := map[int]bool{}
	for s := 8; s < 1<<20; s *= 2 {
		full[s] = true
	}
	q := &fakeSysctl{argmax: 8, full: full}
	_, err := queryProcArgs(q, 3)
	require.True(t, errors.Is(err, ErrIntrospection))
	require.True(t, errors.Is(err, errBufferFull))
	require.Len(t, q.sizes, maxQueryAttempts)
}

func TestReadThroughSysctl(t *testing.T) {
	le := ByteOrder{LittleEndian: true}

	darwin := &Reader{
		Platform: Darwin,
		Order:    le,
		getpid:   func() int { return 10 },
		sysctl:   &fakeSysctl{argmax: 256, data: procArgs2Buffer(2, "/bin/echod", "echod", "daemonize")},
	}
	args, err := darwin.Read(Self)
	require.NoError(t, err)
	require.Equal(t, []string{"echod", "daemonize"}, args.Strings())

	freebsd := &Reader{
		Platform: FreeBSD,
		Order:    le,
		sysctl:   &fakeSysctl{argmax: 256, data: []byte("echod\x00daemonize\x00")},
	}
	args, err = freebsd.Read(10)
	require.NoError(t, err)
	require.Equal(t, []string{"echod", "daemonize"}, args.Strings())

	none := &Reader{Platform: FreeBSD}
	_, err = none.Read(10)
	require.True(t, errors.Is(err, ErrIntrospection))
}
