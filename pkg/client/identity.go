// Package client is the Go SDK for dashboard front ends: the Google identity
// handshake plus one method per dashboard API route.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

const (
	defaultRevokeURL            = "https://accounts.google.com/o/oauth2/revoke"
	profilePersonFields         = "genders,birthdays"
	unknownGender               = "N/A"
	responseBodyReadLimit int64 = 1024
)

// Scopes are the grants the dashboard asks for at sign-in.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/user.birthday.read",
	"https://www.googleapis.com/auth/user.gender.read",
}

var (
	errClientIDRequired    = errors.New("oauth client id is required")
	errRedirectURLRequired = errors.New("oauth redirect url is required")
	errAccessTokenMissing  = errors.New("redirect carries no access_token")
	errTokenRequired       = errors.New("access token is required")
)

// OAuthConfig names the registered OAuth client used for the implicit flow.
type OAuthConfig struct {
	ClientID    string
	RedirectURL string
	State       string
}

// AuthURL builds the provider redirect for an implicit-grant sign-in.
func AuthURL(cfg OAuthConfig) (string, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return "", errClientIDRequired
	}
	if strings.TrimSpace(cfg.RedirectURL) == "" {
		return "", errRedirectURLRequired
	}
	conf := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
		Endpoint:    google.Endpoint,
	}
	return conf.AuthCodeURL(cfg.State,
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	), nil
}

// RedirectError is returned when the provider redirects back with an error.
type RedirectError struct {
	Code        string
	Description string
}

func (e *RedirectError) Error() string {
	if e.Description == "" {
		return "oauth redirect error: " + e.Code
	}
	return fmt.Sprintf("oauth redirect error: %s: %s", e.Code, e.Description)
}

// ParseRedirect reads the session out of the redirect URL. Fragment values
// win over query values.
func ParseRedirect(rawURL string) (Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Session{}, fmt.Errorf("parse redirect url: %w", err)
	}
	params := u.Query()
	fragment, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return Session{}, fmt.Errorf("parse redirect fragment: %w", err)
	}
	for key, values := range fragment {
		params[key] = values
	}

	if code := params.Get("error"); code != "" {
		return Session{}, &RedirectError{Code: code, Description: params.Get("error_description")}
	}
	token := params.Get("access_token")
	if token == "" {
		return Session{}, errAccessTokenMissing
	}
	return Session{AccessToken: token, State: params.Get("state")}, nil
}

// Identity talks to the Google endpoints on behalf of a signed-in user.
type Identity struct {
	httpClient *http.Client
	revokeURL  string
	apiOptions []option.ClientOption
}

// IdentityOption configures optional Identity behavior.
type IdentityOption func(*Identity)

// WithIdentityHTTPClient overrides the client used for revocation.
func WithIdentityHTTPClient(client *http.Client) IdentityOption {
	return func(i *Identity) {
		if client != nil {
			i.httpClient = client
		}
	}
}

// WithRevokeURL overrides the token revocation endpoint.
func WithRevokeURL(revokeURL string) IdentityOption {
	return func(i *Identity) {
		if trimmed := strings.TrimSpace(revokeURL); trimmed != "" {
			i.revokeURL = trimmed
		}
	}
}

// WithAPIOptions appends client options for the userinfo and people services.
func WithAPIOptions(opts ...option.ClientOption) IdentityOption {
	return func(i *Identity) {
		i.apiOptions = append(i.apiOptions, opts...)
	}
}

func NewIdentity(opts ...IdentityOption) *Identity {
	id := &Identity{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		revokeURL:  defaultRevokeURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(id)
		}
	}
	return id
}

// Revoke invalidates the access token. Sign-out should clear the session
// whatever this returns.
func (i *Identity) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errTokenRequired
	}
	target, err := url.Parse(i.revokeURL)
	if err != nil {
		return fmt.Errorf("parse revoke url: %w", err)
	}
	q := target.Query()
	q.Set("token", token)
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), nil)
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute revoke request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return fmt.Errorf("revoke token: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// FetchProfile assembles the sign-up payload from the userinfo and people
// APIs. Password is left for the caller to fill.
func (i *Identity) FetchProfile(ctx context.Context, session Session) (AuthInfo, error) {
	if strings.TrimSpace(session.AccessToken) == "" {
		return AuthInfo{}, errTokenRequired
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: session.AccessToken, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, i.apiOptions...)

	userinfoSvc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return AuthInfo{}, fmt.Errorf("create userinfo service: %w", err)
	}
	info, err := userinfoSvc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return AuthInfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}

	peopleSvc, err := people.NewService(ctx, opts...)
	if err != nil {
		return AuthInfo{}, fmt.Errorf("create people service: %w", err)
	}
	person, err := peopleSvc.People.Get("people/me").PersonFields(profilePersonFields).Context(ctx).Do()
	if err != nil {
		return AuthInfo{}, fmt.Errorf("fetch person: %w", err)
	}

	return AuthInfo{
		ID:             info.Id,
		Email:          info.Email,
		Name:           info.Name,
		Gender:         genderOf(person),
		Birthday:       birthdayOf(person),
		ProfilePicture: info.Picture,
	}, nil
}

func genderOf(p *people.Person) string {
	for _, g := range p.Genders {
		if g != nil && g.Value != "" {
			return g.Value
		}
	}
	return unknownGender
}

// birthdayOf returns the first complete YYYY-MM-DD date, or "" when the
// profile only exposes a partial one.
func birthdayOf(p *people.Person) string {
	for _, b := range p.Birthdays {
		if b == nil || b.Date == nil {
			continue
		}
		d := b.Date
		if d.Year == 0 || d.Month == 0 || d.Day == 0 {
			continue
		}
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return ""
}
