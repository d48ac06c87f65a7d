package main

import (
	"flag"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"

	"github.com/keminar/prefork/argv"
	"github.com/keminar/prefork/config"
	"github.com/keminar/prefork/daemon"
	"github.com/keminar/prefork/logging"
	"github.com/keminar/prefork/prefork"
	"github.com/keminar/prefork/proto"
	"github.com/keminar/prefork/proto/stats"
	"github.com/keminar/prefork/utils/conf"
	"github.com/keminar/prefork/utils/help"
	"github.com/keminar/prefork/utils/tools"
)

const defaultPort = 12345

var (
	gListenAddrPort string
	gWorkers        int
	gProto          string
	gConfigFile     string
	gPidFile        string
	gDaemon         bool
	gHelp           bool
	gDebug          int
)

func init() {
	flag.Usage = help.Usage
	flag.StringVar(&gListenAddrPort, "l", "", "Address and port to listen on")
	flag.IntVar(&gWorkers, "w", 0, "Number of worker processes")
	flag.StringVar(&gProto, "proto", "", "tcp or ws")
	flag.StringVar(&gConfigFile, "c", "", "Config file")
	flag.StringVar(&gPidFile, "pid", "", "Pid file written by the daemon")
	flag.BoolVar(&gDaemon, "daemon", false, "Run as a Unix daemon")
	flag.IntVar(&gDebug, "debug", 0, "debug mode (0, 1, 2)")
	flag.BoolVar(&gHelp, "h", false, "This usage message")
}

// loadConfig reads -c or the default config file. A missing default file
// is not an error.
func loadConfig() (cnf conf.Prefork, path string) {
	if gConfigFile == "" {
		conf.LoadAllConfig()
		if conf.PreforkConfig != nil {
			return *conf.PreforkConfig, conf.PreforkConfigPath
		}
		return cnf, ""
	}
	path, err := filepath.Abs(gConfigFile)
	if err != nil {
		log.Fatalln("config", gConfigFile, err)
	}
	if cnf, err = conf.LoadFile(path); err != nil {
		log.Fatalln("config", path, err)
	}
	return cnf, path
}

func main() {
	// markers are not flags
	flag.CommandLine.Parse(argv.Clean(os.Args[1:]))
	if gHelp {
		flag.Usage()
		return
	}

	cnf, cnfPath := loadConfig()
	config.SetDebugLevel(config.IfZeroThen(gDebug, cnf.Debug))

	cmdName := "prefork"
	// 守护进程会切换到根目录
	logDir, err := filepath.Abs(config.IfEmptyThen(cnf.Log.Dir, "./logs/"))
	if err != nil {
		log.Fatalln(err)
	}

	d := daemon.New()
	d.PidFile = config.IfEmptyThen(gPidFile, cnf.PidFile, daemon.DefaultPidFile)
	d.KeepStdio = cnf.KeepStdio
	d.NoChdir = cnf.NoChdir
	if d.Umask, err = config.ParseUmask(cnf.Umask); err != nil {
		log.Fatalln("umask", cnf.Umask, err)
	}
	if !d.KeepStdio {
		if d.Stdio, err = logging.ErrlogFd(logDir, cmdName); err != nil {
			log.Fatalln(err)
		}
	}

	m := stats.NewManager()
	protoName := config.IfEmptyThen(gProto, cnf.Proto, "tcp")
	echo := proto.NewEcho(m, protoName)

	listen := tools.FillPort(config.IfEmptyThen(gListenAddrPort, cnf.Listen), defaultPort)
	srv := prefork.NewServer(listen, echo.Handler)
	srv.Workers = config.IfZeroThen(gWorkers, cnf.Workers, prefork.DefaultWorkers)
	srv.MaxConns = cnf.MaxConns
	srv.Daemon = d
	srv.ShouldDaemonize = func([]string) bool {
		return gDaemon || cnf.Daemon || prefork.FirstArgDaemonize(flag.Args())
	}
	switch protoName {
	case "tcp":
	case "ws":
		srv.ServeListener = func(l net.Listener) error {
			return proto.WebSocketServer(echo).Serve(l)
		}
	default:
		log.Fatalln("unknown proto", protoName)
	}

	var writer io.Writer
	role := srv.Role()
	if role == prefork.RoleForeground {
		// 同时输出到日志和标准输出
		writer = os.Stdout
	}
	logging.SetDefaultLogger(logDir, cmdName, true, 3, writer)

	if cnfPath != "" && role != prefork.RoleForeground {
		w, err := conf.Watch(cnfPath, func(c conf.Prefork) {
			config.SetDebugLevel(config.IfZeroThen(gDebug, c.Debug))
			logging.ApplyLevel()
		})
		if err != nil {
			log.Println(os.Getpid(), "config watch", err)
		} else {
			defer w.Close()
		}
	}

	if role != prefork.RoleWorker {
		log.Println("This is a simple echo server. Run with daemonize to fork into a daemon, then try 'nc localhost " + tools.GetPort(listen) + "' from several terminals.")
	}
	if err = srv.Run(); err != nil {
		log.Println(os.Getpid(), role, err)
		os.Exit(1)
	}
}
