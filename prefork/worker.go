package prefork

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/keminar/prefork/argv"
	"github.com/keminar/prefork/daemon"
	"github.com/keminar/prefork/sockfd"
	"golang.org/x/net/netutil"
)

func isFork(err error) bool {
	return errors.Is(err, daemon.ErrFork)
}

// worker serves on the socket inherited from the frontend.
func (srv *Server) worker(args argv.Vector) error {
	fd, ok, err := args.IntMarker(argv.KeyPort)
	if err != nil {
		return fmt.Errorf("bad %s marker: %w", argv.KeyPort, err)
	}
	if !ok {
		return fmt.Errorf("worker started without %s marker", argv.KeyPort)
	}
	l, err := sockfd.Listener(fd)
	if err != nil {
		return err
	}
	log.Println(fmt.Sprintf("Worker accepting on %v, pid=%d fd=%d", l.Addr(), os.Getpid(), fd))

	if srv.ServeListener != nil {
		return srv.ServeListener(srv.limit(l))
	}
	return srv.Serve(l)
}

func (srv *Server) limit(l net.Listener) net.Listener {
	if srv.MaxConns > 0 {
		return netutil.LimitListener(l, srv.MaxConns)
	}
	return l
}

// Serve accepts incoming connections on the Listener l,
// creating a new service goroutine for each.
// Only an error of the listener itself ends the loop.
func (srv *Server) Serve(l net.Listener) error {
	l = srv.limit(l)
	defer l.Close()

	var tempDelay time.Duration
	ctx := context.Background()
	for {
		rw, err := l.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				log.Printf("Accept error: %v; retrying in %v\n", err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			log.Println(os.Getpid(), "Server.Serve() error:", err)
			return err
		}
		tempDelay = 0
		c := srv.newConn(rw)
		go c.serve(ctx)
	}
}
