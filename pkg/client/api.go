package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:3001"

// User mirrors the stored user row returned by checkUser.
type User struct {
	ID             string  `json:"id"`
	Email          *string `json:"email"`
	Name           *string `json:"name"`
	Gender         *string `json:"gender"`
	Birthday       *string `json:"birthday"`
	Password       *string `json:"password"`
	Token          *string `json:"token"`
	OrgName        *string `json:"orgName"`
	Position       *string `json:"position"`
	CountryCode    *string `json:"countryCode"`
	Contact        *string `json:"contact"`
	ProfilePicture *string `json:"profilepicture"`
}

// AuthInfo is the sign-up payload. ProfilePicture rides along for display
// and is ignored by storeAuthInfo.
type AuthInfo struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	Birthday       string `json:"birthday"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profilepicture,omitempty"`
}

// ProfileUpdate sends only the non-nil fields.
type ProfileUpdate struct {
	ID             string  `json:"id"`
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Gender         *string `json:"gender,omitempty"`
	Birthday       *string `json:"birthday,omitempty"`
	Password       *string `json:"password,omitempty"`
	ProfilePicture *string `json:"profilepicture,omitempty"`
	CountryCode    *string `json:"countryCode,omitempty"`
	Contact        *string `json:"contact,omitempty"`
}

type CompanyInfo struct {
	OrgName  *string `json:"orgName"`
	Position *string `json:"position"`
}

type LogEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	EventType        string    `json:"eventType"`
	EventDescription string    `json:"eventDescription"`
}

// Device is the payload for both device routes. A nil DeviceCount lets the
// server choose.
type Device struct {
	Email       string `json:"email"`
	DeviceID    string `json:"deviceId"`
	DeviceCount *int   `json:"deviceCount,omitempty"`
}

// StatusError is returned for any non-2xx dashboard response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("dashboard api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("dashboard api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the dashboard API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// API calls the dashboard routes.
type API struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional API behavior.
type Option func(*API)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *API) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// WithBaseURL overrides the dashboard API base URL.
func WithBaseURL(baseURL string) Option {
	return func(a *API) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			a.baseURL = trimmed
		}
	}
}

func NewAPI(opts ...Option) *API {
	a := &API{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// CheckUser returns the stored user, or nil when the email is unknown.
func (a *API) CheckUser(ctx context.Context, email string) (*User, error) {
	var out struct {
		Exists   bool  `json:"exists"`
		UserInfo *User `json:"userInfo"`
	}
	if err := a.do(ctx, http.MethodPost, "/checkUser", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	if !out.Exists {
		return nil, nil
	}
	return out.UserInfo, nil
}

func (a *API) StoreAuthInfo(ctx context.Context, info AuthInfo) error {
	return a.do(ctx, http.MethodPost, "/storeAuthInfo", info, nil)
}

// Logs returns the newest audit entries.
func (a *API) Logs(ctx context.Context) ([]LogEntry, error) {
	var out []LogEntry
	if err := a.do(ctx, http.MethodGet, "/logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return a.do(ctx, http.MethodPost, "/updateProfile", update, nil)
}

func (a *API) UpdateCompanyInfo(ctx context.Context, email string, info CompanyInfo) error {
	body := struct {
		Email string `json:"email"`
		CompanyInfo
	}{Email: email, CompanyInfo: info}
	return a.do(ctx, http.MethodPost, "/updateCompanyInfo", body, nil)
}

func (a *API) FetchCompanyInfo(ctx context.Context, email string) (*CompanyInfo, error) {
	var out CompanyInfo
	if err := a.do(ctx, http.MethodGet, "/fetchCompanyInfo/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) StoreToken(ctx context.Context, email, token string) error {
	body := map[string]string{"email": email, "token": token}
	return a.do(ctx, http.MethodPost, "/storeToken", body, nil)
}

// FetchToken returns the stored token, which is nil when the user has none.
// A missing user surfaces as a StatusError for which IsNotFound is true.
func (a *API) FetchToken(ctx context.Context, email string) (*string, error) {
	var out struct {
		Token *string `json:"token"`
	}
	if err := a.do(ctx, http.MethodGet, "/fetchToken/"+url.PathEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return out.Token, nil
}

func (a *API) UpdateToken(ctx context.Context, email, token string) error {
	body := map[string]string{"token": token}
	return a.do(ctx, http.MethodPut, "/updateToken/"+url.PathEscape(email), body, nil)
}

// SaveDevice posts to /saveDeviceData.
func (a *API) SaveDevice(ctx context.Context, device Device) error {
	return a.do(ctx, http.MethodPost, "/saveDeviceData", device, nil)
}

// StoreDeviceInfo posts to /storeDeviceInfo.
func (a *API) StoreDeviceInfo(ctx context.Context, device Device) error {
	return a.do(ctx, http.MethodPost, "/storeDeviceInfo", device, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(a.baseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute %s request: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	se := &StatusError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		se.Code = envelope.Error.Code
		se.Message = envelope.Error.Message
		return se
	}
	se.Message = strings.TrimSpace(string(raw))
	return se
}
