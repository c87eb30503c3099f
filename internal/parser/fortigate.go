package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"security-suite/internal/model"
	"security-suite/internal/utils"
	"security-suite/pkg/wellknown"
)

// FortiGateParser reads firewall rules from a FortiGate-style config:
//
//	config firewall rule
//	    edit 1
//	        set name "Chrome Web"
//	        set ip 8.8.8.8
//	        set service HTTPS
//	        set action allow
//	        set direction outbound
//	    next
//	end
type FortiGateParser struct {
	scanner *bufio.Scanner

	Rules []model.FirewallRule
}

func NewFortiGateParser(reader io.Reader) *FortiGateParser {
	return &FortiGateParser{
		scanner: bufio.NewScanner(reader),
	}
}

func (p *FortiGateParser) Parse() error {
	for p.scanner.Scan() {
		line := cleanLine(p.scanner.Text())
		switch {
		case strings.HasPrefix(line, "config firewall rule"),
			strings.HasPrefix(line, "config firewall policy"):
			if err := p.parseRuleConfig(); err != nil {
				return fmt.Errorf("failed to parse firewall rule config: %w", err)
			}
		}
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return ValidateRules(p.Rules)
}

func (p *FortiGateParser) parseRuleConfig() error {
	var current *model.FirewallRule

	for p.scanner.Scan() {
		line := cleanLine(p.scanner.Text())
		if line == "end" {
			if current != nil {
				return fmt.Errorf("rule %d: missing 'next'", current.ID)
			}
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "edit":
			if len(parts) < 2 {
				return fmt.Errorf("edit without rule id")
			}
			id, err := strconv.Atoi(unquote(parts[1]))
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", parts[1], err)
			}
			current = &model.FirewallRule{
				ID:        id,
				Protocol:  model.TCP,
				Status:    model.Allowed,
				Direction: model.Inbound,
			}
		case "set":
			if current == nil || len(parts) < 3 {
				continue
			}
			if err := applySetting(current, parts[1], parts[2:]); err != nil {
				return fmt.Errorf("rule %d: %w", current.ID, err)
			}
		case "next":
			if current != nil {
				if current.Name == "" {
					current.Name = fmt.Sprintf("Rule %d", current.ID)
				}
				p.Rules = append(p.Rules, *current)
			}
			current = nil
		}
	}
	return io.ErrUnexpectedEOF
}

func applySetting(rule *model.FirewallRule, key string, args []string) error {
	value := unquote(strings.Join(args, " "))
	switch key {
	case "name":
		rule.Name = value
	case "ip", "remote-ip":
		ip, err := utils.NormalizeIP(value)
		if err != nil {
			return err
		}
		rule.IP = ip
	case "port":
		port, err := utils.ParsePort(value)
		if err != nil {
			return err
		}
		rule.Port = port
	case "service":
		entries, ok := wellknown.GetService(value)
		if !ok || len(entries) == 0 {
			return fmt.Errorf("unknown service %q", value)
		}
		rule.Port = entries[0].Port
		rule.Protocol = entries[0].Protocol
	case "protocol":
		proto, err := ParseProtocol(value)
		if err != nil {
			return err
		}
		rule.Protocol = proto
	case "action", "status":
		status, err := ParseStatus(value)
		if err != nil {
			return err
		}
		rule.Status = status
	case "direction":
		dir, err := ParseDirection(value)
		if err != nil {
			return err
		}
		rule.Direction = dir
	}
	return nil
}

func cleanLine(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
