// Package session holds the state of one running suite: the firewall rules,
// the traffic log, the simulator and the results of the last scan.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"security-suite/internal/engine"
	"security-suite/internal/model"
	"security-suite/internal/scan"
)

var ErrScanInProgress = errors.New("a scan is already running")

const (
	StatusProtected = "protected"
	StatusAtRisk    = "at_risk"
)

type Dashboard struct {
	LastScan           *model.ScanSummary `json:"lastScan"`
	SecurityStatus     string             `json:"securityStatus"`
	FirewallEnabled    bool               `json:"firewallEnabled"`
	RuleCount          int                `json:"ruleCount"`
	BlockedRules       int                `json:"blockedRules"`
	LogCount           int                `json:"logCount"`
	BlockedConnections int                `json:"blockedConnections"`
	NeedsReview        int                `json:"needsReview"`
}

type ScanState struct {
	Status   model.ScanStatus   `json:"status"`
	Progress scan.Progress      `json:"progress"`
	Results  []model.ScanResult `json:"results"`
}

type Session struct {
	rules   *engine.RuleStore
	log     *engine.TrafficLog
	sim     *engine.Simulator
	scanner *scan.Orchestrator
	logger  *slog.Logger
	hub     *hub

	mu         sync.RWMutex
	enabled    bool
	scanStatus model.ScanStatus
	progress   scan.Progress
	results    []model.ScanResult
	lastScan   *model.ScanSummary
}

func New(rules *engine.RuleStore, log *engine.TrafficLog, sim *engine.Simulator, scanner *scan.Orchestrator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		rules:      rules,
		log:        log,
		sim:        sim,
		scanner:    scanner,
		logger:     logger,
		hub:        newHub(),
		scanStatus: model.ScanIdle,
	}
	sim.Observe(s.hub.publish)
	return s
}

// Close stops the simulator and disconnects live subscribers.
func (s *Session) Close() {
	s.SetFirewallEnabled(false)
	s.hub.closeAll()
}

// SetFirewallEnabled starts or stops traffic monitoring. Retained log
// entries survive a restart.
func (s *Session) SetFirewallEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.sim.Start()
	} else {
		s.sim.Stop()
	}
	if s.enabled != enabled {
		s.logger.Info("Firewall state changed", "enabled", enabled)
	}
	s.enabled = enabled
}

func (s *Session) FirewallEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// ToggleRule flips a rule between allowed and blocked. Unknown ids are
// ignored.
func (s *Session) ToggleRule(id int) (model.FirewallRule, bool) {
	if !s.rules.Toggle(id) {
		s.logger.Debug("Toggle ignored for unknown rule", "rule_id", id)
		return model.FirewallRule{}, false
	}
	rule, _ := s.rules.Get(id)
	s.logger.Info("Rule toggled", "rule_id", id, "status", rule.Status)
	return rule, true
}

func (s *Session) Rules() []model.FirewallRule {
	return s.rules.List()
}

func (s *Session) Logs() []model.NetworkLogEntry {
	return s.log.Entries()
}

// Subscribe returns a feed of new log entries and a function that ends it.
func (s *Session) Subscribe() (<-chan model.NetworkLogEntry, func()) {
	return s.hub.subscribe()
}

// Scan replaces the previous results with a scan of files. Only one scan
// runs at a time.
func (s *Session) Scan(ctx context.Context, files []scan.File) (scan.Report, error) {
	s.mu.Lock()
	if s.scanStatus == model.ScanScanning {
		s.mu.Unlock()
		return scan.Report{}, ErrScanInProgress
	}
	s.scanStatus = model.ScanScanning
	s.results = nil
	s.progress = scan.Progress{Total: len(files)}
	s.mu.Unlock()

	report, err := s.scanner.Run(ctx, files, func(p scan.Progress) {
		s.mu.Lock()
		s.progress = p
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.scanStatus = model.ScanIdle
		s.results = nil
		return report, err
	}
	s.scanStatus = model.ScanCompleted
	s.results = report.Results
	summary := report.Summary
	s.lastScan = &summary
	return report, nil
}

func (s *Session) ScanState() ScanState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]model.ScanResult, len(s.results))
	copy(results, s.results)
	return ScanState{Status: s.scanStatus, Progress: s.progress, Results: results}
}

func (s *Session) LastScan() *model.ScanSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastScan == nil {
		return nil
	}
	summary := *s.lastScan
	return &summary
}

func (s *Session) Dashboard() Dashboard {
	d := Dashboard{
		LastScan:           s.LastScan(),
		SecurityStatus:     StatusProtected,
		FirewallEnabled:    s.FirewallEnabled(),
		LogCount:           s.log.Len(),
		BlockedConnections: s.log.CountStatus(model.Blocked),
		NeedsReview:        s.log.CountStatus(model.NeedsReview),
	}
	for _, r := range s.rules.List() {
		d.RuleCount++
		if r.Status == model.Blocked {
			d.BlockedRules++
		}
	}
	if d.LastScan != nil && d.LastScan.ThreatsFound > 0 {
		d.SecurityStatus = StatusAtRisk
	}
	return d
}
