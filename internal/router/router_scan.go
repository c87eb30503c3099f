package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"security-suite/internal/scan"
	"security-suite/internal/session"
)

// postScan scans the files uploaded in the "files" multipart field, in
// upload order, and responds once the whole selection is done.
func postScan(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expected a multipart form with files"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files selected"})
		return
	}

	files := make([]scan.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, scan.FromMultipart(fh))
	}

	report, err := ExtractSession(c).Scan(c.Request.Context(), files)
	if err != nil {
		if errors.Is(err, session.ErrScanInProgress) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ScanReportResponse{Data: report})
}

func getScanResults(c *gin.Context) {
	c.JSON(http.StatusOK, ScanStateResponse{Data: ExtractSession(c).ScanState()})
}
