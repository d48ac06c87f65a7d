// argvdump prints the argument vector of this process or of the given
// pids, as recovered from the operating system.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/keminar/prefork/config"
	"github.com/keminar/prefork/procargs"
)

var gDebug int

func init() {
	flag.IntVar(&gDebug, "debug", 0, "debug mode (0, 1, 2)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-debug=N] [pid ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	config.SetDebugLevel(gDebug)

	r, err := procargs.NewReader()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("platform=%s model=%s order=%s\n", r.Platform, r.Model.Name, r.Order)

	pids := []int{procargs.Self}
	if flag.NArg() > 0 {
		pids = pids[:0]
		for _, s := range flag.Args() {
			pid, err := strconv.Atoi(s)
			if err != nil {
				fmt.Fprintln(os.Stderr, "bad pid", s)
				os.Exit(2)
			}
			pids = append(pids, pid)
		}
	}

	status := 0
	for _, pid := range pids {
		args, err := r.Read(pid)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		fmt.Printf("%d:\n", pid)
		for i, a := range args {
			fmt.Printf("  argv[%d] %q\n", i, a)
		}
	}
	os.Exit(status)
}
