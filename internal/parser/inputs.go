package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"security-suite/internal/engine"
	"security-suite/internal/utils"
)

// ParseCatalog reads a "kind,value" CSV (kind is app, ip or port) and
// returns base with every kind present in the file replaced. Kinds absent
// from the file keep the base values.
func ParseCatalog(r io.Reader, base engine.Catalog) (engine.Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return base, fmt.Errorf("could not read header: %w", err)
	}

	kindCol, valueCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "kind":
			kindCol = i
		case "value":
			valueCol = i
		}
	}
	if kindCol == -1 || valueCol == -1 {
		return base, fmt.Errorf("could not find 'kind' and 'value' columns in catalog file")
	}

	var apps, ips []string
	var ports []int
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return base, err
		}
		line++
		if kindCol >= len(record) || valueCol >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[valueCol])
		switch strings.ToLower(strings.TrimSpace(record[kindCol])) {
		case "app":
			if value != "" {
				apps = append(apps, value)
			}
		case "ip":
			ip, err := utils.NormalizeIP(value)
			if err != nil {
				return base, fmt.Errorf("line %d: %w", line, err)
			}
			ips = append(ips, ip)
		case "port":
			port, err := utils.ParsePort(value)
			if err != nil {
				return base, fmt.Errorf("line %d: %w", line, err)
			}
			ports = append(ports, port)
		default:
			return base, fmt.Errorf("line %d: unknown kind %q", line, record[kindCol])
		}
	}

	out := base
	if len(apps) > 0 {
		out.Apps = apps
	}
	if len(ips) > 0 {
		out.IPs = ips
	}
	if len(ports) > 0 {
		out.Ports = ports
	}
	return out, nil
}
