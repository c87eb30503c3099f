package model

import "time"

type Protocol string // "TCP", "UDP"

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// Status is the decision attached to a rule or a log entry. Rules only
// ever carry Allowed or Blocked.
type Status string

const (
	Allowed     Status = "allowed"
	Blocked     Status = "blocked"
	NeedsReview Status = "needs_review"
)

type FirewallRule struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IP        string    `json:"ip"`
	Port      int       `json:"port"`
	Protocol  Protocol  `json:"protocol"`
	Status    Status    `json:"status"`
	Direction Direction `json:"direction"`
}

// Traffic is a synthetic connection before it has been classified.
type Traffic struct {
	AppName   string
	IP        string
	Port      int
	Direction Direction
	Protocol  Protocol
}

type NetworkLogEntry struct {
	ID         string    `json:"id"`
	Timestamp  string    `json:"timestamp"`
	CapturedAt time.Time `json:"capturedAt"`
	AppName    string    `json:"appName"`
	IP         string    `json:"ip"`
	Port       int       `json:"port"`
	Direction  Direction `json:"direction"`
	Protocol   Protocol  `json:"protocol"`
	Status     Status    `json:"status"`
	RuleID     int       `json:"ruleId,omitempty"`
	Service    string    `json:"service,omitempty"`
}

// FileInfo is what gets sent for classification.
type FileInfo struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
}

type Verdict struct {
	IsThreat       bool   `json:"isThreat"`
	ThreatType     string `json:"threatType"`
	Recommendation string `json:"recommendation"`
}

type ScannedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type ScanResult struct {
	File ScannedFile `json:"file"`
	Verdict
}

type ScanSummary struct {
	ThreatsFound int    `json:"threatsFound"`
	FilesScanned int    `json:"filesScanned"`
	ScanTime     string `json:"scanTime"`
}

type ScanStatus string

const (
	ScanIdle      ScanStatus = "idle"
	ScanScanning  ScanStatus = "scanning"
	ScanCompleted ScanStatus = "completed"
)
