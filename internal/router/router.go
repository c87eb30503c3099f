package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"security-suite/internal/session"
)

// Views is the navigation menu of the UI, in display order.
var Views = []string{"dashboard", "scan", "firewall"}

// Configure builds the HTTP API for one session.
func Configure(s *session.Session, logger *slog.Logger, debug bool) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(attachSession(s))
	router.Use(gin.LoggerWithFormatter(func(params gin.LogFormatterParams) string {
		logger.Debug("HTTP request",
			"method", params.Method,
			"path", params.Path,
			"status", params.StatusCode,
			"latency", params.Latency,
			"client_ip", params.ClientIP,
		)
		return ""
	}))

	api := router.Group("/api")
	api.GET("/views", getViews)
	api.GET("/dashboard", getDashboard)

	scan := api.Group("/scan")
	{
		scan.POST("", postScan)
		scan.GET("/results", getScanResults)
	}

	firewall := api.Group("/firewall")
	{
		firewall.GET("/rules", getFirewallRules)
		firewall.POST("/rules/:rule/toggle", postToggleFirewallRule)
		firewall.GET("/logs", getFirewallLogs)
		firewall.GET("/status", getFirewallStatus)
		firewall.PUT("/status", putFirewallStatus)
		firewall.GET("/stream", getFirewallStream(logger))
	}

	return router
}

const sessionKey = "session"

func attachSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, s)
		c.Next()
	}
}

// ExtractSession returns the session attached to the request.
func ExtractSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
