package main

import (
	"fmt"
	"net"
	"strconv"
)

// splitAddr parses host:port. An empty host means all interfaces.
func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host, port, nil
}
