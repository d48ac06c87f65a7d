package stats

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Counter 按分钟汇总的字节计数
type Counter struct {
	access sync.Mutex
	name   string
	minute int // 当前统计的分钟, 分钟变化时打印上一分钟的数据
	value  int64

	now  func() time.Time
	logf func(format string, v ...interface{})
}

// NewCounter 计数器
func NewCounter(name string) *Counter {
	return &Counter{
		name:   name,
		minute: -1,
		now:    time.Now,
		logf:   log.Printf,
	}
}

// Add adds delta to the current minute. When the minute has moved on, the
// total of the previous one is logged first and the count starts over. It
// returns the total of the current minute.
func (c *Counter) Add(delta int64) int64 {
	c.access.Lock()
	defer c.access.Unlock()

	now := c.now().Minute()
	if now != c.minute {
		if c.minute >= 0 && c.value > 0 {
			c.logf("%d %s %s\n", os.Getpid(), c.name, FormatBytes(c.value))
		}
		c.minute = now
		c.value = 0
	}
	c.value += delta
	return c.value
}

// Value 当前分钟的计数
func (c *Counter) Value() int64 {
	c.access.Lock()
	defer c.access.Unlock()
	return c.value
}

// Name 名称
func (c *Counter) Name() string {
	return c.name
}

// FormatBytes 格式化字节数
func FormatBytes(n int64) string {
	switch {
	case n > 1e6:
		return fmt.Sprintf("%d MB", n/1e6)
	case n > 1e3:
		return fmt.Sprintf("%d KB", n/1e3)
	}
	return fmt.Sprintf("%d Bytes", n)
}
