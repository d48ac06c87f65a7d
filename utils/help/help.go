package help

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// VERSION 版本
const VERSION = "0.1"

// Usage 帮助
func Usage() {
	usage(os.Stdout, os.Args[0])
}

func usage(w io.Writer, name string) {
	fmt.Fprintf(w, "%s\n\n", versionString())
	fmt.Fprintf(w, "usage: %s [options] [daemonize]\n", name)
	fmt.Fprintf(w, "       A pre-forking echo server: one frontend opens the socket, workers accept on it\n\n")
	fmt.Fprintf(w, "Optional\n")
	fmt.Fprintf(w, "  -l=ADDRPORT      Address and port to listen on (default :12345)\n")
	fmt.Fprintf(w, "  -w=N             Number of worker processes (default 2)\n")
	fmt.Fprintf(w, "  -proto=NAME      tcp or ws (default tcp)\n")
	fmt.Fprintf(w, "  -c=FILE          Config file (default conf/prefork.yaml)\n")
	fmt.Fprintf(w, "  -pid=FILE        Pid file written by the daemon\n")
	fmt.Fprintf(w, "  -debug=N         Debug level 0, 1 or 2\n")
	fmt.Fprintf(w, "  -daemon          Run as a Unix daemon, same as a first argument of daemonize\n")
	fmt.Fprintf(w, "  -h               This usage message\n\n")

	fmt.Fprintf(w, "Stop the daemon with \"kill -TERM <pid>\", the workers are stopped with it.\n")
	fmt.Fprintf(w, "Then try 'nc localhost 12345' from several terminals.\n")
}

func versionString() (v string) {
	now := time.Now().Unix()
	buildNum := strings.ToUpper(strconv.FormatInt(now, 36))
	buildDate := time.Unix(now, 0).Format(time.UnixDate)
	v = fmt.Sprintf("prefork %s (build %v, %v)", VERSION, buildNum, buildDate)
	return
}
