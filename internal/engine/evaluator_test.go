package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security-suite/internal/model"
)

func seedRules() []model.FirewallRule {
	return []model.FirewallRule{
		{ID: 1, Name: "Chrome Web", IP: "8.8.8.8", Port: 443, Protocol: model.TCP, Status: model.Allowed, Direction: model.Outbound},
		{ID: 2, Name: "System Update", IP: "192.168.1.10", Port: 80, Protocol: model.TCP, Status: model.Allowed, Direction: model.Outbound},
		{ID: 3, Name: "Unknown Service", IP: "104.22.5.101", Port: 6667, Protocol: model.TCP, Status: model.Blocked, Direction: model.Inbound},
		{ID: 4, Name: "Game Server", IP: "208.67.222.222", Port: 27015, Protocol: model.UDP, Status: model.Allowed, Direction: model.Outbound},
		{ID: 5, Name: "Suspicious Traffic", IP: "45.137.21.112", Port: 4444, Protocol: model.TCP, Status: model.Blocked, Direction: model.Inbound},
		{ID: 6, Name: "Local Share", IP: "192.168.1.25", Port: 139, Protocol: model.TCP, Status: model.Allowed, Direction: model.Inbound},
	}
}

func TestClassifyMatchesByIPOrPort(t *testing.T) {
	tests := []struct {
		name    string
		traffic model.Traffic
		status  model.Status
		ruleID  int
	}{
		{
			name:    "ip match with unknown port",
			traffic: model.Traffic{IP: "45.137.21.112", Port: 9999},
			status:  model.Blocked,
			ruleID:  5,
		},
		{
			name:    "port match with unknown ip",
			traffic: model.Traffic{IP: "1.1.1.1", Port: 6667},
			status:  model.Blocked,
			ruleID:  3,
		},
		{
			name:    "no match needs review",
			traffic: model.Traffic{IP: "1.2.3.4", Port: 9999},
			status:  model.NeedsReview,
		},
		{
			name:    "first rule in store order wins over a later ip match",
			traffic: model.Traffic{IP: "45.137.21.112", Port: 443},
			status:  model.Allowed,
			ruleID:  1,
		},
	}

	rules := seedRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := Classify(rules, tt.traffic)
			assert.Equal(t, tt.status, match.Status)
			if tt.ruleID == 0 {
				assert.Nil(t, match.Rule)
				assert.Equal(t, "NO_MATCH", match.Reason)
				return
			}
			require.NotNil(t, match.Rule)
			assert.Equal(t, tt.ruleID, match.Rule.ID)
		})
	}
}

func TestClassifyEmptyRuleSet(t *testing.T) {
	match := Classify(nil, model.Traffic{IP: "8.8.8.8", Port: 443})
	assert.Equal(t, model.NeedsReview, match.Status)
}

func TestClassifyFollowsToggledStatus(t *testing.T) {
	store := NewRuleStore(seedRules())
	require.True(t, store.Toggle(5))

	match := Classify(store.List(), model.Traffic{IP: "45.137.21.112", Port: 9999})
	assert.Equal(t, model.Allowed, match.Status)
	assert.Equal(t, "MATCH_RULE_ALLOW", match.Reason)
}
