package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type call struct {
	Method string
	Path   string
	Body   map[string]any
}

type fakeDashboard struct {
	mu     sync.Mutex
	calls  []call
	routes map[string]func(w http.ResponseWriter)
}

func newFakeDashboard(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*fakeDashboard, *API) {
	t.Helper()
	f := &fakeDashboard{routes: routes}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, NewAPI(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func (f *fakeDashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls = append(f.calls, call{Method: r.Method, Path: r.URL.EscapedPath(), Body: body})
	f.mu.Unlock()

	if h, ok := f.routes[r.Method+" "+r.URL.Path]; ok {
		h(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"ok"}`))
}

func (f *fakeDashboard) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

func jsonReply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestSignInStoresUnknownUser(t *testing.T) {
	f, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
		"POST /checkUser": jsonReply(http.StatusOK, `{"exists":false}`),
	})

	session := &Session{AccessToken: "tok"}
	user, err := api.SignIn(context.Background(), session, AuthInfo{ID: "g-1", Email: "ana@example.com", Name: "Ana", Gender: "female", Birthday: "1990-04-02", Password: "pw"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	got := f.paths()
	if len(got) != 2 || got[0] != "POST /checkUser" || got[1] != "POST /storeAuthInfo" {
		t.Fatalf("unexpected calls %v", got)
	}
	if user.ID != "g-1" || session.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v session %+v", user, session)
	}
}

func TestSignInReturnsExistingUser(t *testing.T) {
	f, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
		"POST /checkUser": jsonReply(http.StatusOK, `{"exists":true,"userInfo":{"id":"g-1","orgName":"Acme"}}`),
	})

	user, err := api.SignIn(context.Background(), &Session{}, AuthInfo{Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if len(f.paths()) != 1 {
		t.Fatalf("expected only checkUser, got %v", f.paths())
	}
	if user.OrgName == nil || *user.OrgName != "Acme" {
		t.Fatalf("expected stored user, got %+v", user)
	}
}

func TestSignInRequiresEmail(t *testing.T) {
	_, api := newFakeDashboard(t, nil)
	if _, err := api.SignIn(context.Background(), &Session{}, AuthInfo{}); err == nil {
		t.Fatalf("expected error without email")
	}
}

func TestSyncToken(t *testing.T) {
	tests := []struct {
		name  string
		fetch func(http.ResponseWriter)
		want  []string
	}{
		{
			name:  "missing user stores",
			fetch: jsonReply(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"Token not found."}}`),
			want:  []string{"GET /fetchToken/a@b.co", "POST /storeToken"},
		},
		{
			name:  "null token stores",
			fetch: jsonReply(http.StatusOK, `{"token":null}`),
			want:  []string{"GET /fetchToken/a@b.co", "POST /storeToken"},
		},
		{
			name:  "different token updates",
			fetch: jsonReply(http.StatusOK, `{"token":"old"}`),
			want:  []string{"GET /fetchToken/a@b.co", "PUT /updateToken/a@b.co"},
		},
		{
			name:  "same token is a no-op",
			fetch: jsonReply(http.StatusOK, `{"token":"new"}`),
			want:  []string{"GET /fetchToken/a@b.co"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
				"GET /fetchToken/a@b.co": tt.fetch,
			})
			if err := api.SyncToken(context.Background(), Session{Email: "a@b.co"}, "new"); err != nil {
				t.Fatalf("sync: %v", err)
			}
			got := f.paths()
			if len(got) != len(tt.want) {
				t.Fatalf("want %v got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("want %v got %v", tt.want, got)
				}
			}
		})
	}
}

func TestSyncTokenSurfacesServerError(t *testing.T) {
	_, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
		"GET /fetchToken/a@b.co": jsonReply(http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"Error fetching token."}}`),
	})
	err := api.SyncToken(context.Background(), Session{Email: "a@b.co"}, "new")
	se, ok := err.(*StatusError)
	if !ok || se.StatusCode != http.StatusInternalServerError || se.Message != "Error fetching token." {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFetchCompanyInfoEscapesEmail(t *testing.T) {
	f, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
		"GET /fetchCompanyInfo/a b@c.co": jsonReply(http.StatusOK, `{"orgName":"Acme","position":null}`),
	})
	info, err := api.FetchCompanyInfo(context.Background(), "a b@c.co")
	if err != nil {
		t.Fatalf("fetch company: %v", err)
	}
	if *info.OrgName != "Acme" || info.Position != nil {
		t.Fatalf("unexpected info %+v", info)
	}
	if got := f.paths()[0]; got != "GET /fetchCompanyInfo/a%20b@c.co" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestUpdateCompanyInfoFlattensBody(t *testing.T) {
	f, api := newFakeDashboard(t, nil)
	org := "Acme"
	if err := api.UpdateCompanyInfo(context.Background(), "a@b.co", CompanyInfo{OrgName: &org}); err != nil {
		t.Fatalf("update: %v", err)
	}
	body := f.calls[0].Body
	if body["email"] != "a@b.co" || body["orgName"] != "Acme" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestLogsDecodesArray(t *testing.T) {
	_, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
		"GET /logs": jsonReply(http.StatusOK, `[{"timestamp":"2024-06-10T12:00:00Z","eventType":"Info","eventDescription":"hello"}]`),
	})
	logs, err := api.Logs(context.Background())
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 1 || logs[0].EventDescription != "hello" {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestDeviceRoutesOmitNilCount(t *testing.T) {
	f, api := newFakeDashboard(t, nil)
	ctx := context.Background()
	if err := api.SaveDevice(ctx, Device{Email: "a@b.co", DeviceID: "d1"}); err != nil {
		t.Fatalf("save device: %v", err)
	}
	count := 4
	if err := api.StoreDeviceInfo(ctx, Device{Email: "a@b.co", DeviceID: "d1", DeviceCount: &count}); err != nil {
		t.Fatalf("store device info: %v", err)
	}
	if _, ok := f.calls[0].Body["deviceCount"]; ok {
		t.Fatalf("nil count should be omitted")
	}
	if f.calls[1].Path != "/storeDeviceInfo" || f.calls[1].Body["deviceCount"] != float64(4) {
		t.Fatalf("unexpected second call %+v", f.calls[1])
	}
}

func TestStatusErrorFromPlainText(t *testing.T) {
	_, api := newFakeDashboard(t, map[string]func(http.ResponseWriter){
		"POST /storeToken": func(w http.ResponseWriter) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		},
	})
	err := api.StoreToken(context.Background(), "a@b.co", "t")
	se, ok := err.(*StatusError)
	if !ok || se.StatusCode != http.StatusBadGateway || se.Message != "bad gateway" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(tok) != tokenLength {
		t.Fatalf("unexpected length %d", len(tok))
	}
	for _, r := range tok {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			t.Fatalf("unexpected rune %q in %q", r, tok)
		}
	}
}
