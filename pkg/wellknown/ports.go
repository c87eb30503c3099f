package wellknown

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"security-suite/internal/model"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

type ServiceEntry struct {
	Name     string
	Protocol model.Protocol
	Port     int
}

var (
	serviceRegistry map[string][]ServiceEntry
	portRegistry    map[string]string
)

func init() {
	serviceRegistry = make(map[string][]ServiceEntry)
	portRegistry = make(map[string]string)
	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		register(record[1], model.TCP, port)
		register(record[2], model.UDP, port)
	}
}

func register(name string, protocol model.Protocol, port int) {
	name = strings.TrimSpace(name)
	if name == "" || name == "N/A" {
		return
	}
	entry := ServiceEntry{Name: name, Protocol: protocol, Port: port}
	key := strings.ToUpper(name)
	serviceRegistry[key] = append(serviceRegistry[key], entry)
	// Add common alias for DNS
	if name == "domain" {
		serviceRegistry["DNS"] = append(serviceRegistry["DNS"], entry)
	}
	portRegistry[portKey(port, protocol)] = name
}

// GetService returns the port and protocol for a well-known service name.
func GetService(name string) ([]ServiceEntry, bool) {
	entry, ok := serviceRegistry[strings.ToUpper(name)]
	return entry, ok
}

// Name returns the service usually found on port/protocol, or "" when the
// port is not in the table.
func Name(port int, protocol model.Protocol) string {
	return portRegistry[portKey(port, protocol)]
}

func portKey(port int, protocol model.Protocol) string {
	return fmt.Sprintf("%s/%d", strings.ToUpper(string(protocol)), port)
}
