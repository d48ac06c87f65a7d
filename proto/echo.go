// Package proto holds the connection handlers the workers serve.
package proto

import (
	"context"
	"io"
	"log"
	"net"
	"os"

	"github.com/keminar/prefork/config"
	"github.com/keminar/prefork/prefork"
	"github.com/keminar/prefork/proto/stats"
)

// Echo 回显服务, 统计收发字节
type Echo struct {
	in  *stats.Counter
	out *stats.Counter
}

// NewEcho 实例
func NewEcho(m *stats.Manager, name string) *Echo {
	return &Echo{
		in:  m.RegisterCounter(name + ".in"),
		out: m.RegisterCounter(name + ".out"),
	}
}

// Handler writes back whatever the peer sends until it closes.
func (e *Echo) Handler(ctx context.Context, conn net.Conn) error {
	traceID := prefork.TraceIDFrom(ctx)
	log.Println(prefork.TraceID(traceID), "PID:", os.Getpid(), "accepted a new connection from", conn.RemoteAddr())

	buf := make([]byte, 1024)
	for {
		nr, err := conn.Read(buf)
		if nr > 0 {
			e.in.Add(int64(nr))
			nw, werr := conn.Write(buf[:nr])
			e.out.Add(int64(nw))
			if werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			if config.DebugLevel() >= config.LevelLong {
				log.Println(prefork.TraceID(traceID), "peer closed")
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}
