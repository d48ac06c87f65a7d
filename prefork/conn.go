package prefork

import (
	"context"
	"fmt"
	"log"
	"net"
	"runtime"
	"sync/atomic"

	"github.com/keminar/prefork/config"
	"github.com/keminar/prefork/prefork/autoinc"
)

var autoInc = autoinc.New(1, 1)

type contextKey struct {
	name string
}

func (k *contextKey) String() string { return "prefork context value " + k.name }

var (
	// TraceIDContextKey carries the uint64 id of the connection.
	TraceIDContextKey = &contextKey{"trace-id"}
	// LocalAddrContextKey carries the net.Addr the connection arrived on.
	LocalAddrContextKey = &contextKey{"local-addr"}
)

// TraceIDFrom 取连接的日志ID
func TraceIDFrom(ctx context.Context) uint64 {
	id, _ := ctx.Value(TraceIDContextKey).(uint64)
	return id
}

// TraceID 日志ID
func TraceID(id uint64) string {
	return fmt.Sprintf("ID #%d,", id)
}

// A conn represents the server side of one accepted connection.
type conn struct {
	server     *Server
	rwc        net.Conn
	traceID    uint64
	remoteAddr string
}

func (srv *Server) newConn(rwc net.Conn) *conn {
	return &conn{server: srv, rwc: rwc}
}

// ActiveConns 正在处理的连接数
func (srv *Server) ActiveConns() int64 {
	return atomic.LoadInt64(&srv.active)
}

// serve handles one connection. A panic in the handler is logged and only
// ends this connection.
func (c *conn) serve(ctx context.Context) {
	c.traceID = autoInc.ID()
	c.remoteAddr = c.rwc.RemoteAddr().String()
	ctx = context.WithValue(ctx, LocalAddrContextKey, c.rwc.LocalAddr())
	ctx = context.WithValue(ctx, TraceIDContextKey, c.traceID)
	ctx, cancelCtx := context.WithCancel(ctx)

	atomic.AddInt64(&c.server.active, 1)
	defer func() {
		if err := recover(); err != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Printf("%s panic serving %v: %v\n%s", TraceID(c.traceID), c.remoteAddr, err, buf)
		}
		cancelCtx()
		c.rwc.Close()
		atomic.AddInt64(&c.server.active, -1)
		if config.DebugLevel() >= config.LevelLong {
			log.Println(TraceID(c.traceID), "closed")
		}
	}()

	if err := c.server.Handler(ctx, c.rwc); err != nil {
		log.Printf("%s conn handler %v: %v\n", TraceID(c.traceID), c.remoteAddr, err)
	}
}
