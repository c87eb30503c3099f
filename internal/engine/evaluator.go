package engine

import (
	"security-suite/internal/model"
)

// Match is the outcome of classifying one piece of traffic.
type Match struct {
	Status model.Status
	Rule   *model.FirewallRule
	Reason string
}

// Classify walks the rules in order and returns the first one whose IP or
// port equals the traffic's. Position in the list is the only tie-break.
// Without a match the traffic needs review.
func Classify(rules []model.FirewallRule, traffic model.Traffic) Match {
	for i := range rules {
		rule := &rules[i]
		if matches(rule, traffic) {
			reason := "MATCH_RULE_ALLOW"
			if rule.Status == model.Blocked {
				reason = "MATCH_RULE_BLOCK"
			}
			return Match{Status: rule.Status, Rule: rule, Reason: reason}
		}
	}
	return Match{Status: model.NeedsReview, Reason: "NO_MATCH"}
}

func matches(rule *model.FirewallRule, traffic model.Traffic) bool {
	return rule.IP == traffic.IP || rule.Port == traffic.Port
}
