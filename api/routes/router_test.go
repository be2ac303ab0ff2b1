package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/authdash-backend/internal/auditlog"
	"github.com/angelmondragon/authdash-backend/internal/devices"
	"github.com/angelmondragon/authdash-backend/internal/relay"
	"github.com/angelmondragon/authdash-backend/internal/repo/repotest"
	"github.com/angelmondragon/authdash-backend/internal/users"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/config"
	"github.com/angelmondragon/authdash-backend/pkg/db"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/angelmondragon/authdash-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type harness struct {
	handler http.Handler
	conn    *gorm.DB
	relay   *relay.Broadcaster
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logg := logger.Nop()
	conn := repotest.NewDB(t)
	cfg := &config.Config{
		App:  config.AppConfig{Env: "test"},
		HTTP: config.HTTPConfig{MaxBodyBytes: 1 << 20, AllowedOrigins: []string{"*"}},
	}

	reg := prometheus.NewRegistry()
	broadcaster := relay.New(logg, metrics.NewRelayMetrics(reg))
	emitter := webhooks.NewDispatcher(webhooks.NewRepository(conn), logg, webhooks.NewRelaySink(broadcaster))
	recorder := auditlog.NewRecorder(auditlog.NewRepository(conn), logg)

	userSvc, err := users.NewService(users.NewRepository(conn), nil, recorder, emitter)
	if err != nil {
		t.Fatalf("users service: %v", err)
	}
	logSvc, err := auditlog.NewService(auditlog.NewRepository(conn), recorder, emitter)
	if err != nil {
		t.Fatalf("auditlog service: %v", err)
	}
	strategy, err := devices.NewStrategy(config.DeviceStrategyCounting, devices.NewRepository(conn))
	if err != nil {
		t.Fatalf("strategy: %v", err)
	}
	deviceSvc, err := devices.NewService(strategy, recorder, emitter)
	if err != nil {
		t.Fatalf("devices service: %v", err)
	}

	handler := NewRouter(cfg, logg, Deps{
		DB:       db.Wrap(conn),
		Users:    userSvc,
		Logs:     logSvc,
		Devices:  deviceSvc,
		Relay:    broadcaster,
		Metrics:  metrics.NewHTTPMetrics(reg),
		Gatherer: reg,
	})
	return harness{handler: handler, conn: conn, relay: broadcaster}
}

func (h harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestSignUpThenCheckUser(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/checkUser", `{"email":"ana@example.com"}`)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"exists":false}` {
		t.Fatalf("unexpected first check %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/storeAuthInfo",
		`{"id":"g-1","email":"ana@example.com","name":"Ana","gender":"female","birthday":"1990-04-02","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("store auth info: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/checkUser", `{"email":"ana@example.com"}`)
	var body struct {
		Exists   bool           `json:"exists"`
		UserInfo map[string]any `json:"userInfo"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Exists || body.UserInfo["id"] != "g-1" || body.UserInfo["birthday"] != "1990-04-02" {
		t.Fatalf("unexpected check body %+v", body)
	}
}

func TestStoreAuthInfoMissingFieldsIs400(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/storeAuthInfo", `{"email":"ana@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var entries []models.LogEntry
	if err := h.conn.Find(&entries).Error; err != nil {
		t.Fatalf("load logs: %v", err)
	}
	if len(entries) != 1 || entries[0].EventType != auditlog.TypeError {
		t.Fatalf("expected one error audit row, got %+v", entries)
	}
}

func TestEventsReachStreamAndWebhookLog(t *testing.T) {
	h := newHarness(t)
	stream := httptest.NewRecorder()
	sub, err := h.relay.Subscribe(stream)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer h.relay.Unsubscribe(sub)

	h.do(t, http.MethodPost, "/checkUser", `{"email":"nobody@example.com"}`)

	if !strings.Contains(stream.Body.String(), `"event":"user_not_found"`) {
		t.Fatalf("expected user_not_found frame, got %q", stream.Body.String())
	}
	var rows []models.WebhookLog
	if err := h.conn.Find(&rows).Error; err != nil {
		t.Fatalf("load webhook logs: %v", err)
	}
	if len(rows) != 1 || rows[0].Event != webhooks.EventUserNotFound {
		t.Fatalf("unexpected webhook rows %+v", rows)
	}
}

func TestTokenLifecycle(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(t, http.MethodGet, "/fetchToken/ghost@example.com", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}

	h.do(t, http.MethodPost, "/storeAuthInfo",
		`{"id":"g-2","email":"bo@example.com","name":"Bo","gender":"male","birthday":"1985-12-30","password":"pw"}`)

	if rec := h.do(t, http.MethodGet, "/fetchToken/bo@example.com", ""); strings.TrimSpace(rec.Body.String()) != `{"token":null}` {
		t.Fatalf("expected null token, got %s", rec.Body.String())
	}

	h.do(t, http.MethodPost, "/storeToken", `{"token":"t-1","email":"bo@example.com"}`)
	h.do(t, http.MethodPut, "/updateToken/bo%40example.com", `{"token":"t-2"}`)

	rec := h.do(t, http.MethodGet, "/fetchToken/bo@example.com", "")
	if strings.TrimSpace(rec.Body.String()) != `{"token":"t-2"}` {
		t.Fatalf("expected updated token, got %s", rec.Body.String())
	}
}

func TestCompanyInfoRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/storeAuthInfo",
		`{"id":"g-3","email":"cy@example.com","name":"Cy","gender":"x","birthday":"2001-01-01","password":"pw"}`)

	rec := h.do(t, http.MethodPost, "/updateCompanyInfo", `{"email":"cy@example.com","orgName":"Acme","position":"CTO"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update company: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodGet, "/fetchCompanyInfo/cy@example.com", "")
	if strings.TrimSpace(rec.Body.String()) != `{"orgName":"Acme","position":"CTO"}` {
		t.Fatalf("unexpected company info %s", rec.Body.String())
	}

	if rec := h.do(t, http.MethodGet, "/fetchCompanyInfo/none@example.com", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeviceRoutesShareCounter(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/saveDeviceData", "/storeDeviceInfo"} {
		rec := h.do(t, http.MethodPost, path, `{"email":"d@example.com","deviceId":"phone"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", path, rec.Code, rec.Body.String())
		}
	}

	var stored []models.Device
	if err := h.conn.Find(&stored).Error; err != nil {
		t.Fatalf("load devices: %v", err)
	}
	if len(stored) != 1 || stored[0].DeviceCount != 2 {
		t.Fatalf("expected one row with count 2, got %+v", stored)
	}

	if rec := h.do(t, http.MethodPost, "/saveDeviceData", `{"email":"d@example.com"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing deviceId, got %d", rec.Code)
	}
}

func TestLogsNewestFirst(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPost, "/checkUser", `{"email":"first@example.com"}`)
	h.do(t, http.MethodPost, "/checkUser", `{"email":"second@example.com"}`)

	rec := h.do(t, http.MethodGet, "/logs", "")
	var entries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least two entries, got %v", entries)
	}
	if !strings.Contains(entries[0]["eventDescription"].(string), "second@example.com") {
		t.Fatalf("expected newest entry first, got %v", entries[0])
	}
}

func TestOpsRoutes(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(t, http.MethodGet, "/health/live", ""); rec.Code != http.StatusOK {
		t.Fatalf("live: %d", rec.Code)
	}
	if rec := h.do(t, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: %d %s", rec.Code, rec.Body.String())
	}

	h.do(t, http.MethodGet, "/logs", "")
	rec := h.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected request metrics, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/checkUser", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	h.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestRelayRouterWebhook(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	b := relay.New(logger.Nop(), nil)
	handler := NewRelayRouter(cfg, logger.Nop(), b, nil, nil)

	stream := httptest.NewRecorder()
	sub, err := b.Subscribe(stream)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer b.Unsubscribe(sub)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"event":"token_stored"}`)))

	if rec.Code != http.StatusOK || rec.Body.String() != "Webhook received" {
		t.Fatalf("unexpected webhook response %d %q", rec.Code, rec.Body.String())
	}
	if stream.Body.String() != "data: {\"event\":\"token_stored\"}\n\n" {
		t.Fatalf("unexpected stream %q", stream.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkUser", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("relay router should not serve dashboard routes, got %d", rec.Code)
	}
}
