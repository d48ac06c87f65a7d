package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ io.WriteCloser = (*TimeWriter)(nil)

const (
	compressSuffix = ".gz"
	dateLayout     = "20060102"
)

// TimeWriter 按天切分的日志文件, 文件名 <Prefix>.<yyyymmdd>.log
type TimeWriter struct {
	Dir        string
	Prefix     string
	Compress   bool
	ReserveDay int

	// now is time.Now unless testing
	now func() time.Time

	curFilename string
	file        *os.File
	mu          sync.Mutex
	startMill   sync.Once
	millCh      chan struct{}
}

func (l *TimeWriter) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.filename()
	if l.file == nil || l.curFilename != name {
		if err = l.rotate(name); err != nil {
			return 0, err
		}
	}
	return l.file.Write(p)
}

// Close 关闭
func (l *TimeWriter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.close()
}

func (l *TimeWriter) close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate switches to name, appending when it already exists.
func (l *TimeWriter) rotate(name string) error {
	rolled := l.file != nil
	if err := l.close(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("can't make directories for new logfile: %s", err)
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("can't open logfile: %s", err)
	}
	l.curFilename = name
	l.file = f
	if rolled {
		l.mill()
	}
	return nil
}

func (l *TimeWriter) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

func (l *TimeWriter) dir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return os.TempDir()
}

func (l *TimeWriter) filename() string {
	return filepath.Join(l.dir(), fmt.Sprintf("%s.%s.log", l.Prefix, l.clock().Format(dateLayout)))
}

type logInfo struct {
	day  time.Time
	name string
}

// oldLogFiles lists rolled files of this writer, newest first.
func (l *TimeWriter) oldLogFiles() ([]logInfo, error) {
	files, err := ioutil.ReadDir(l.dir())
	if err != nil {
		return nil, fmt.Errorf("can't read log file directory: %s", err)
	}
	var out []logInfo
	for _, f := range files {
		if f.IsDir() || f.Name() == filepath.Base(l.curFilename) {
			continue
		}
		if day, ok := l.dayFromName(f.Name()); ok {
			out = append(out, logInfo{day, f.Name()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.After(out[j].day) })
	return out, nil
}

// dayFromName parses <Prefix>.<yyyymmdd>.log with an optional .gz suffix.
func (l *TimeWriter) dayFromName(name string) (time.Time, bool) {
	name = strings.TrimSuffix(name, compressSuffix)
	if !strings.HasPrefix(name, l.Prefix+".") || !strings.HasSuffix(name, ".log") {
		return time.Time{}, false
	}
	ts := name[len(l.Prefix)+1 : len(name)-len(".log")]
	day, err := time.ParseInLocation(dateLayout, ts, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func (l *TimeWriter) millRunOnce() error {
	if l.ReserveDay == 0 && !l.Compress {
		return nil
	}
	files, err := l.oldLogFiles()
	if err != nil {
		return err
	}
	cutoff := l.clock().AddDate(0, 0, -l.ReserveDay)
	for _, f := range files {
		path := filepath.Join(l.dir(), f.name)
		var e error
		switch {
		case l.ReserveDay > 0 && f.day.Before(cutoff):
			e = os.Remove(path)
		case l.Compress && !strings.HasSuffix(f.name, compressSuffix):
			e = compressLogFile(path, path+compressSuffix)
		}
		if err == nil {
			err = e
		}
	}
	return err
}

func (l *TimeWriter) mill() {
	l.startMill.Do(func() {
		l.millCh = make(chan struct{}, 1)
		go func() {
			for range l.millCh {
				_ = l.millRunOnce()
			}
		}()
	})
	select {
	case l.millCh <- struct{}{}:
	default:
	}
}

func compressLogFile(src, dst string) (err error) {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}
	defer f.Close()

	gzf, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open compressed log file: %v", err)
	}
	defer func() {
		gzf.Close()
		if err != nil {
			os.Remove(dst)
			err = fmt.Errorf("failed to compress log file: %v", err)
		}
	}()

	gz := gzip.NewWriter(gzf)
	if _, err = io.Copy(gz, f); err != nil {
		return err
	}
	if err = gz.Close(); err != nil {
		return err
	}
	f.Close()
	return os.Remove(src)
}
