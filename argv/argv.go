// Package argv holds the argument vector of a process and the markers
// carried inside it across a fork+exec boundary.
//
// A marker is a synthetic argument of the form
//
//	-Dprefork.<key>=<value>
//
// inserted right after the executable path. The re-executed process reads
// its own markers back from os.Args to learn what it is supposed to be.
package argv

import (
	"strconv"
	"strings"
)

// Prefix is the reserved prefix of every marker argument.
const Prefix = "-Dprefork."

// Well known marker keys
const (
	// KeyDaemon is set once a process has been relaunched into the background
	KeyDaemon = "daemon"
	// KeyMode is set to ModeWorker for worker processes
	KeyMode = "mode"
	// KeyPort carries the listening descriptor number to workers
	KeyPort = "port"
)

// ModeWorker 工作进程
const ModeWorker = "worker"

// Vector is an ordered argument list. Index 0 is the executable.
type Vector []string

// New copies args into a new Vector.
func New(args []string) Vector {
	v := make(Vector, len(args))
	copy(v, args)
	return v
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	return New(v)
}

// Strings returns the plain slice, suitable for exec.
func (v Vector) Strings() []string {
	return []string(v)
}

func markerName(key string) string {
	return Prefix + key
}

func isMarker(arg, key string) bool {
	name := markerName(key)
	return arg == name || strings.HasPrefix(arg, name+"=")
}

// RemoveMarker removes every occurrence of key.
func (v *Vector) RemoveMarker(key string) {
	out := (*v)[:0]
	for _, s := range *v {
		if isMarker(s, key) {
			continue
		}
		out = append(out, s)
	}
	*v = out
}

// SetMarker replaces any prior occurrence of key and inserts the new
// marker at index 1.
func (v *Vector) SetMarker(key, value string) {
	v.RemoveMarker(key)
	arg := markerName(key) + "=" + value
	if len(*v) == 0 {
		*v = append(*v, arg)
		return
	}
	*v = append(*v, "")
	copy((*v)[2:], (*v)[1:])
	(*v)[1] = arg
}

// Marker returns the value of key. A marker without '=' has an empty value.
func (v Vector) Marker(key string) (string, bool) {
	name := markerName(key)
	for _, s := range v {
		if s == name {
			return "", true
		}
		if strings.HasPrefix(s, name+"=") {
			return s[len(name)+1:], true
		}
	}
	return "", false
}

// SetIntMarker stores n in decimal.
func (v *Vector) SetIntMarker(key string, n int) {
	v.SetMarker(key, strconv.Itoa(n))
}

// IntMarker decodes a decimal marker value.
func (v Vector) IntMarker(key string) (int, bool, error) {
	s, ok := v.Marker(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// RemoveTail removes n items from the end.
func (v *Vector) RemoveTail(n int) {
	if n <= 0 {
		return
	}
	if n > len(*v) {
		n = len(*v)
	}
	*v = (*v)[:len(*v)-n]
}

// Clean returns args with all marker arguments removed, so the rest can be
// handed to a flag parser.
func Clean(args []string) []string {
	out := make([]string, 0, len(args))
	for _, s := range args {
		if strings.HasPrefix(s, Prefix) {
			continue
		}
		out = append(out, s)
	}
	return out
}
