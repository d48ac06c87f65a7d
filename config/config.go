package config

import (
	"log"
	"strconv"
	"sync/atomic"
)

// TimeFormat 格式化时间
var TimeFormat string = "2006-01-02 15:04:05"

const (
	// LevelShort 简短格式
	LevelShort int = iota
	// LevelLong 长格式日志
	LevelLong
	// LevelDebug 长日志 + 更多日志
	LevelDebug
)

// debugLevel may be changed by the config file watcher while workers log.
var debugLevel atomic.Int32

// DebugLevel 调试级别
func DebugLevel() int {
	return int(debugLevel.Load())
}

// SetDebugLevel 设置调试级别
func SetDebugLevel(gDebug int) {
	if gDebug < LevelShort {
		gDebug = LevelShort
	}
	if gDebug > LevelDebug {
		gDebug = LevelDebug
	}
	old := debugLevel.Swap(int32(gDebug))
	if int(old) != gDebug && gDebug >= LevelLong {
		log.Println("debug level", old, "->", gDebug)
	}
}

// IfEmptyThen returns the first non-empty value.
func IfEmptyThen(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IfZeroThen returns the first non-zero value.
func IfZeroThen(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// ParseUmask parses an octal umask such as "022". An empty string means
// the umask is left alone and -1 is returned.
func ParseUmask(s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return -1, err
	}
	return int(n & 0777), nil
}
