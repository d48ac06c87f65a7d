package tools

import (
	"net"
	"strconv"
)

// GetPort 从 127.0.0.1:3000 结构中取出3000
func GetPort(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return ""
}

// FillPort 补全端口, 如 127.0.0.1 => 127.0.0.1:12345, 3000 => :3000
func FillPort(addr string, port int) string {
	if addr == "" {
		return ":" + strconv.Itoa(port)
	}
	if _, err := strconv.Atoi(addr); err == nil {
		return ":" + addr
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}
