package router

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security-suite/internal/classify"
	"security-suite/internal/engine"
	"security-suite/internal/model"
	"security-suite/internal/parser"
	"security-suite/internal/scan"
	"security-suite/internal/session"
)

type fixture struct {
	engine *gin.Engine
	sess   *session.Session
	clock  *clockwork.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClock()
	rules := engine.NewRuleStore(parser.BuiltinRules())
	log := engine.NewTrafficLog(engine.DefaultLogCapacity)
	sim := engine.NewSimulator(rules, log,
		engine.WithClock(clock),
		engine.WithRand(rand.New(rand.NewPCG(3, 4))),
		engine.WithLogger(logger),
	)
	scanner := scan.NewOrchestrator(classify.Heuristic{}, scan.WithDelay(0), scan.WithLogger(logger))
	sess := session.New(rules, log, sim, scanner, logger)
	t.Cleanup(sess.Close)
	return fixture{engine: Configure(sess, logger, false), sess: sess, clock: clock}
}

func (f fixture) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetViews(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/views", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"dashboard", "scan", "firewall"}, decode[ViewsResponse](t, w).Data)
}

func TestGetDashboardBeforeScan(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/dashboard", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"lastScan":null`)

	d := decode[DashboardResponse](t, w).Data
	assert.Equal(t, session.StatusProtected, d.SecurityStatus)
	assert.Equal(t, 6, d.RuleCount)
}

func TestToggleFirewallRule(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/firewall/rules/2/toggle", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	rules := decode[FirewallRulesListResponse](t, w).Data
	require.Len(t, rules, 6)
	assert.Equal(t, model.Blocked, rules[1].Status)
	assert.Equal(t, model.Allowed, rules[0].Status)

	t.Run("unknown id is ignored", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/firewall/rules/99/toggle", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, f.sess.Rules(), decode[FirewallRulesListResponse](t, w).Data)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/firewall/rules/abc/toggle", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid rule ID", decode[ErrorResponse](t, w).Error)
	})
}

func TestFirewallStatus(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/api/firewall/status", strings.NewReader(`{"enabled":true}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *decode[FirewallStatus](t, w).Enabled)
	assert.True(t, f.sess.FirewallEnabled())

	w = f.do(t, http.MethodGet, "/api/firewall/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *decode[FirewallStatus](t, w).Enabled)

	w = f.do(t, http.MethodPut, "/api/firewall/status", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, f.sess.FirewallEnabled())
}

func TestGetFirewallLogs(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/firewall/logs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[NetworkLogsResponse](t, w).Data)

	f.sess.SetFirewallEnabled(true)
	f.clock.Advance(engine.DefaultInterval)
	require.Eventually(t, func() bool { return len(f.sess.Logs()) == 1 }, time.Second, time.Millisecond)

	w = f.do(t, http.MethodGet, "/api/firewall/logs", nil, "")
	assert.Len(t, decode[NetworkLogsResponse](t, w).Data, 1)
}

func multipartBody(t *testing.T, files map[string]string, order []string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range order {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPostScan(t *testing.T) {
	f := newFixture(t)
	body, contentType := multipartBody(t, map[string]string{
		"notes.txt":  "hello",
		"setup.exe":  "MZ",
		"script.vbs": "WScript.Echo 1",
	}, []string{"notes.txt", "setup.exe", "script.vbs"})

	w := f.do(t, http.MethodPost, "/api/scan", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[ScanReportResponse](t, w).Data
	require.Len(t, report.Results, 3)
	assert.Equal(t, "notes.txt", report.Results[0].File.Name)
	assert.False(t, report.Results[0].IsThreat)
	assert.True(t, report.Results[1].IsThreat)
	assert.Equal(t, 2, report.Summary.ThreatsFound)
	assert.Equal(t, 3, report.Summary.FilesScanned)

	w = f.do(t, http.MethodGet, "/api/scan/results", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[ScanStateResponse](t, w).Data
	assert.Equal(t, model.ScanCompleted, state.Status)
	assert.Len(t, state.Results, 3)

	w = f.do(t, http.MethodGet, "/api/dashboard", nil, "")
	d := decode[DashboardResponse](t, w).Data
	require.NotNil(t, d.LastScan)
	assert.Equal(t, 2, d.LastScan.ThreatsFound)
	assert.Equal(t, session.StatusAtRisk, d.SecurityStatus)
}

func TestPostScanRejectsEmptySelection(t *testing.T) {
	f := newFixture(t)
	body, contentType := multipartBody(t, nil, nil)
	w := f.do(t, http.MethodPost, "/api/scan", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/scan", strings.NewReader("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFirewallStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/firewall/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	f.sess.SetFirewallEnabled(true)

	// The handler subscribes after the handshake, so keep ticking until an
	// entry arrives.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				f.clock.Advance(engine.DefaultInterval)
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var entry model.NetworkLogEntry
	require.NoError(t, conn.ReadJSON(&entry))
	assert.NotEmpty(t, entry.ID)
	assert.Contains(t, []model.Status{model.Allowed, model.Blocked, model.NeedsReview}, entry.Status)
}
