package router

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func getFirewallRules(c *gin.Context) {
	c.JSON(http.StatusOK, FirewallRulesListResponse{Data: ExtractSession(c).Rules()})
}

// postToggleFirewallRule flips a rule between allowed and blocked. An id
// that matches no rule is not an error; the unchanged list is returned.
func postToggleFirewallRule(c *gin.Context) {
	ruleID, err := strconv.Atoi(c.Param("rule"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rule ID"})
		return
	}
	s := ExtractSession(c)
	s.ToggleRule(ruleID)
	c.JSON(http.StatusOK, FirewallRulesListResponse{Data: s.Rules()})
}

func getFirewallLogs(c *gin.Context) {
	c.JSON(http.StatusOK, NetworkLogsResponse{Data: ExtractSession(c).Logs()})
}

func getFirewallStatus(c *gin.Context) {
	enabled := ExtractSession(c).FirewallEnabled()
	c.JSON(http.StatusOK, FirewallStatus{Enabled: &enabled})
}

func putFirewallStatus(c *gin.Context) {
	var req FirewallStatus
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s := ExtractSession(c)
	s.SetFirewallEnabled(*req.Enabled)
	enabled := s.FirewallEnabled()
	c.JSON(http.StatusOK, FirewallStatus{Enabled: &enabled})
}

// getFirewallStream upgrades to a websocket and writes every new log entry
// as one JSON message until the client goes away.
func getFirewallStream(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("Websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		feed, cancel := ExtractSession(c).Subscribe()
		defer cancel()

		// Drain client frames so close messages are noticed.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case <-c.Request.Context().Done():
				return
			case entry, ok := <-feed:
				if !ok {
					conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(entry); err != nil {
					logger.Debug("Websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
