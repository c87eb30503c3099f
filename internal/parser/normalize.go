package parser

import (
	"fmt"
	"strings"

	"security-suite/internal/model"
	"security-suite/internal/utils"
)

// ParseStatus accepts the rule actions used by the different providers.
func ParseStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow", "allowed", "accept":
		return model.Allowed, nil
	case "block", "blocked", "deny", "drop":
		return model.Blocked, nil
	}
	return "", fmt.Errorf("invalid rule action: %q (must be allow or block)", s)
}

func ParseProtocol(s string) (model.Protocol, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TCP":
		return model.TCP, nil
	case "UDP":
		return model.UDP, nil
	}
	return "", fmt.Errorf("invalid protocol: %q (must be tcp or udp)", s)
}

func ParseDirection(s string) (model.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inbound":
		return model.Inbound, nil
	case "out", "outbound":
		return model.Outbound, nil
	}
	return "", fmt.Errorf("invalid direction: %q (must be inbound or outbound)", s)
}

// ValidateRules checks that a seed set is usable: ids are positive and
// unique, and every field holds one of its allowed values. Id 0 is reserved
// for entries that matched no rule.
func ValidateRules(rules []model.FirewallRule) error {
	seen := make(map[int]bool, len(rules))
	for _, r := range rules {
		if r.ID <= 0 {
			return fmt.Errorf("rule id must be positive, got %d", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rule id %d", r.ID)
		}
		seen[r.ID] = true
		if _, err := utils.NormalizeIP(r.IP); err != nil {
			return fmt.Errorf("rule %d: %w", r.ID, err)
		}
		if err := utils.ValidatePort(r.Port); err != nil {
			return fmt.Errorf("rule %d: %w", r.ID, err)
		}
		if r.Status != model.Allowed && r.Status != model.Blocked {
			return fmt.Errorf("rule %d: invalid status %q", r.ID, r.Status)
		}
		if r.Protocol != model.TCP && r.Protocol != model.UDP {
			return fmt.Errorf("rule %d: invalid protocol %q", r.ID, r.Protocol)
		}
		if r.Direction != model.Inbound && r.Direction != model.Outbound {
			return fmt.Errorf("rule %d: invalid direction %q", r.ID, r.Direction)
		}
	}
	return nil
}
