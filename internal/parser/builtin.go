package parser

import "security-suite/internal/model"

// BuiltinRules is the seed set used when no provider is configured.
func BuiltinRules() []model.FirewallRule {
	return []model.FirewallRule{
		{ID: 1, Name: "Chrome Web", IP: "8.8.8.8", Port: 443, Protocol: model.TCP, Status: model.Allowed, Direction: model.Outbound},
		{ID: 2, Name: "System Update", IP: "192.168.1.10", Port: 80, Protocol: model.TCP, Status: model.Allowed, Direction: model.Outbound},
		{ID: 3, Name: "Unknown Service", IP: "104.22.5.101", Port: 6667, Protocol: model.TCP, Status: model.Blocked, Direction: model.Inbound},
		{ID: 4, Name: "Game Server", IP: "208.67.222.222", Port: 27015, Protocol: model.UDP, Status: model.Allowed, Direction: model.Outbound},
		{ID: 5, Name: "Suspicious Traffic", IP: "45.137.21.112", Port: 4444, Protocol: model.TCP, Status: model.Blocked, Direction: model.Inbound},
		{ID: 6, Name: "Local Share", IP: "192.168.1.25", Port: 139, Protocol: model.TCP, Status: model.Allowed, Direction: model.Inbound},
	}
}
