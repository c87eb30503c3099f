package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func getViews(c *gin.Context) {
	c.JSON(http.StatusOK, ViewsResponse{Data: Views})
}

// getDashboard returns the last scan summary, or null when nothing was
// scanned yet, together with firewall counters.
func getDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, DashboardResponse{Data: ExtractSession(c).Dashboard()})
}
