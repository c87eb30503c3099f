package router

import (
	"security-suite/internal/model"
	"security-suite/internal/scan"
	"security-suite/internal/session"
)

// ErrorResponse represents the common error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

type ViewsResponse struct {
	Data []string `json:"data"`
}

type DashboardResponse struct {
	Data session.Dashboard `json:"data"`
}

type FirewallRulesListResponse struct {
	Data []model.FirewallRule `json:"data"`
}

type NetworkLogsResponse struct {
	Data []model.NetworkLogEntry `json:"data"`
}

// FirewallStatus is both the request and response body of the status
// endpoints.
type FirewallStatus struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type ScanReportResponse struct {
	Data scan.Report `json:"data"`
}

type ScanStateResponse struct {
	Data session.ScanState `json:"data"`
}
