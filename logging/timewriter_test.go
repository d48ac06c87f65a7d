package logging

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeWriterRollsDaily(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 9, 23, 59, 0, 0, time.Local)
	w := &TimeWriter{Dir: dir, Prefix: "echod", now: func() time.Time { return day }}
	defer w.Close()

	_, err := w.Write([]byte("one\n"))
	require.NoError(t, err)
	day = day.Add(2 * time.Minute)
	_, err = w.Write([]byte("two\n"))
	require.NoError(t, err)

	b, err := ioutil.ReadFile(filepath.Join(dir, "echod.20240309.log"))
	require.NoError(t, err)
	require.Equal(t, "one\n", string(b))
	b, err = ioutil.ReadFile(filepath.Join(dir, "echod.20240310.log"))
	require.NoError(t, err)
	require.Equal(t, "two\n", string(b))
}

func TestTimeWriterAppendsToExisting(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 9, 8, 0, 0, 0, time.Local)
	name := filepath.Join(dir, "echod.20240309.log")
	require.NoError(t, ioutil.WriteFile(name, []byte("old\n"), 0644))

	w := &TimeWriter{Dir: dir, Prefix: "echod", now: func() time.Time { return day }}
	_, err := w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	require.Equal(t, "old\nnew\n", string(b))
}

func TestMillRemovesAndCompresses(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 20, 8, 0, 0, 0, time.Local)
	for _, n := range []string{"echod.20240301.log", "echod.20240318.log", "other.20240301.log"} {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, n), []byte("x"), 0644))
	}
	w := &TimeWriter{Dir: dir, Prefix: "echod", Compress: true, ReserveDay: 7, now: func() time.Time { return day }}
	w.curFilename = filepath.Join(dir, "echod.20240320.log")

	require.NoError(t, w.millRunOnce())

	_, err := os.Stat(filepath.Join(dir, "echod.20240301.log"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "echod.20240318.log.gz"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "other.20240301.log"))
	require.NoError(t, err)
}

func TestDayFromName(t *testing.T) {
	w := &TimeWriter{Prefix: "echod"}
	d, ok := w.dayFromName("echod.20240309.log.gz")
	require.True(t, ok)
	require.Equal(t, 9, d.Day())
	_, ok = w.dayFromName("echod.2024.log")
	require.False(t, ok)
	_, ok = w.dayFromName("echod.err.log")
	require.False(t, ok)
}

func TestErrlogFd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	fd, err := ErrlogFd(dir, "echod")
	require.NoError(t, err)
	defer fd.Close()
	require.Equal(t, filepath.Join(dir, "echod.err.log"), fd.Name())
}
