package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NormalizeIP validates a single IP address and returns its canonical form.
func NormalizeIP(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("IP address cannot be empty")
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return "", fmt.Errorf("invalid IP address: %s", s)
	}
	return ip.String(), nil
}

// ParsePort parses a TCP/UDP port number in the range 1-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if err := ValidatePort(port); err != nil {
		return 0, err
	}
	return port, nil
}

func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", port)
	}
	return nil
}
