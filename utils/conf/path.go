package conf

import (
	"os"
	"path/filepath"
)

// AppPath 二进制文件根目录
var AppPath string

func init() {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	if AppPath, err = filepath.Abs(filepath.Dir(exe)); err != nil {
		AppPath = "."
	}
}

// getPath looks for conf/<filename> in the working directory, then next to
// the binary. The result is absolute so it stays valid after a chdir.
func getPath(filename string) (string, error) {
	workPath, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, dir := range []string{workPath, AppPath} {
		configPath := filepath.Join(dir, "conf", filename)
		if fileExists(configPath) {
			return configPath, nil
		}
	}
	return "", os.ErrNotExist
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}
