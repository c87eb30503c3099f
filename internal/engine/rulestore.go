package engine

import (
	"sync"

	"security-suite/internal/model"
)

// RuleStore holds the ordered firewall rules. Rules are seeded once and
// afterwards only their status changes.
type RuleStore struct {
	mu    sync.RWMutex
	rules []model.FirewallRule
}

func NewRuleStore(seed []model.FirewallRule) *RuleStore {
	rules := make([]model.FirewallRule, len(seed))
	copy(rules, seed)
	return &RuleStore{rules: rules}
}

// Toggle flips the status of the rule with the given id. It reports
// whether a rule was found; an unknown id leaves the store untouched.
func (s *RuleStore) Toggle(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID != id {
			continue
		}
		if s.rules[i].Status == model.Allowed {
			s.rules[i].Status = model.Blocked
		} else {
			s.rules[i].Status = model.Allowed
		}
		return true
	}
	return false
}

// List returns a copy of the rules in insertion order.
func (s *RuleStore) List() []model.FirewallRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FirewallRule, len(s.rules))
	copy(out, s.rules)
	return out
}

func (s *RuleStore) Get(id int) (model.FirewallRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rules {
		if r.ID == id {
			return r, true
		}
	}
	return model.FirewallRule{}, false
}
