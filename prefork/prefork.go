// Package prefork runs a pre-forking network server.
//
// A frontend process opens the listening socket and starts a fixed number
// of worker processes from the same executable. Each worker finds the
// socket at the descriptor number passed in its arguments and accepts on
// it. The kernel decides which worker gets each connection.
//
//	func main() {
//		srv := prefork.NewServer(":12345", handler)
//		if err := srv.Run(); err != nil {
//			log.Fatalln(err)
//		}
//	}
package prefork

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/keminar/prefork/argv"
	"github.com/keminar/prefork/daemon"
	"github.com/keminar/prefork/procargs"
	"github.com/keminar/prefork/sockfd"
	"golang.org/x/sys/unix"
)

// ExitTerminated is the exit status of a frontend stopped by SIGTERM.
const ExitTerminated = 255

// DefaultWorkers 默认工作进程数
const DefaultWorkers = 2

// ConnHandler connection handler definition
type ConnHandler func(ctx context.Context, conn net.Conn) error

// Server 预派生服务
type Server struct {
	Addr    string
	Network string
	// Workers is the number of worker processes the frontend starts.
	Workers int
	// MaxConns limits the connections one worker serves at a time.
	MaxConns int
	Handler  ConnHandler

	// CreateListener opens the frontend socket; Network and Addr are used
	// when nil.
	CreateListener func() (net.Listener, error)
	// ServeListener replaces the accept loop in workers when set.
	ServeListener func(l net.Listener) error
	// ShouldDaemonize decides whether a foreground frontend goes to the
	// background. It gets the application arguments without markers.
	ShouldDaemonize func(args []string) bool

	Daemon *daemon.Daemon
	// Args are the arguments of this process; os.Args when nil.
	Args argv.Vector
	// ReadArgs recovers the argument vector workers are started with.
	ReadArgs func() (argv.Vector, error)
	Kill     func(pid int, sig syscall.Signal) error
	Notify   func(c chan<- os.Signal, sig ...os.Signal)

	active int64
}

// NewServer returns a Server with the real OS hooks.
func NewServer(addr string, handler ConnHandler) *Server {
	return &Server{
		Addr:            addr,
		Network:         "tcp",
		Workers:         DefaultWorkers,
		Handler:         handler,
		ShouldDaemonize: FirstArgDaemonize,
		Daemon:          daemon.New(),
		ReadArgs:        procargs.Current,
		Kill:            unix.Kill,
		Notify:          signal.Notify,
	}
}

// FirstArgDaemonize is true when the first application argument is
// "daemonize".
func FirstArgDaemonize(args []string) bool {
	return len(args) > 0 && args[0] == "daemonize"
}

func (srv *Server) args() argv.Vector {
	if srv.Args != nil {
		return srv.Args
	}
	return argv.Vector(os.Args)
}

// Role is what a process is, decided once from its own markers.
type Role string

// Roles
const (
	RoleForeground Role = "foreground"
	RoleDaemon     Role = "daemon"
	RoleWorker     Role = "worker"
)

// Role 当前进程的角色
func (srv *Server) Role() Role {
	args := srv.args()
	if mode, _ := args.Marker(argv.KeyMode); mode == argv.ModeWorker {
		return RoleWorker
	}
	d := srv.Daemon
	if d.Args == nil {
		d.Args = args
	}
	if d.IsDaemonized() {
		return RoleDaemon
	}
	return RoleForeground
}

// Run decides once what this process is and runs it. A worker serves
// until its listener fails. A frontend blocks until SIGTERM. A foreground
// process that should be daemonized relaunches itself and exits.
func (srv *Server) Run() error {
	args := srv.args()
	d := srv.Daemon
	switch srv.Role() {
	case RoleWorker:
		return srv.worker(args)
	case RoleDaemon:
		if err := d.Init(d.PidFile); err != nil {
			return err
		}
	default:
		if srv.ShouldDaemonize != nil && srv.ShouldDaemonize(argv.Clean(args[1:])) {
			current, err := srv.ReadArgs()
			if err != nil {
				return err
			}
			if err = d.Daemonize(current); err != nil {
				return err
			}
			d.Exit(0)
			return nil
		}
	}
	return srv.frontend()
}

func (srv *Server) listen() (net.Listener, error) {
	if srv.CreateListener != nil {
		return srv.CreateListener()
	}
	network := srv.Network
	if network == "" {
		network = "tcp"
	}
	l, err := net.Listen(network, srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen error: %v", err)
	}
	return l, nil
}

// frontend opens the socket, starts the workers and waits for SIGTERM.
func (srv *Server) frontend() error {
	l, err := srv.listen()
	if err != nil {
		return err
	}
	defer l.Close()

	fd, err := sockfd.Descriptor(l)
	if err != nil {
		return err
	}
	log.Println(fmt.Sprintf("Listening for connections on %v, pid=%d fd=%d", l.Addr(), os.Getpid(), fd))

	args, err := srv.ReadArgs()
	if err != nil {
		return err
	}
	args = args.Clone()
	args.SetIntMarker(argv.KeyPort, fd)
	return srv.forkWorkers(args)
}

// forkWorkers starts the workers and then blocks until SIGTERM, which is
// passed on to the whole process group.
func (srv *Server) forkWorkers(args argv.Vector) error {
	d := srv.Daemon
	exe, err := d.Executable()
	if err != nil {
		return err
	}
	args.SetMarker(argv.KeyMode, argv.ModeWorker)

	n := srv.Workers
	if n <= 0 {
		n = DefaultWorkers
	}
	for i := 0; i < n; i++ {
		pid, err := d.Spawn(exe, args, []uintptr{0, 1, 2})
		if err != nil {
			if isFork(err) {
				return err
			}
			// the child died on exec, the others are unaffected
			log.Println(os.Getpid(), "worker", i, err)
			continue
		}
		log.Println(os.Getpid(), "forked worker", i, "pid", pid)
	}

	sigCh := make(chan os.Signal, 1)
	srv.Notify(sigCh, syscall.SIGTERM)
	sig := <-sigCh
	log.Println(os.Getpid(), "Received", sig, "stopping workers")
	if err := srv.Kill(0, syscall.SIGTERM); err != nil {
		log.Println(os.Getpid(), "kill process group", err)
	}
	d.Exit(ExitTerminated)
	return nil
}
