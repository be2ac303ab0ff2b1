package client

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	tokenLength   = 10
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var errEmailRequired = errors.New("session email is required")

// Session is the signed-in state a front end threads through every call.
type Session struct {
	Email       string
	AccessToken string
	State       string
}

// SignIn stores the profile when the email is unknown and returns the user
// as the dashboard should display it.
func (a *API) SignIn(ctx context.Context, session *Session, info AuthInfo) (*User, error) {
	if session == nil {
		session = &Session{}
	}
	email := info.Email
	if email == "" {
		email = session.Email
	}
	if email == "" {
		return nil, errEmailRequired
	}
	session.Email = email

	existing, err := a.CheckUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	info.Email = email
	if err := a.StoreAuthInfo(ctx, info); err != nil {
		return nil, err
	}
	return userFromAuthInfo(info), nil
}

// SyncToken makes the stored token equal token: stored when absent, updated
// when different.
func (a *API) SyncToken(ctx context.Context, session Session, token string) error {
	if session.Email == "" {
		return errEmailRequired
	}
	current, err := a.FetchToken(ctx, session.Email)
	switch {
	case IsNotFound(err):
		return a.StoreToken(ctx, session.Email, token)
	case err != nil:
		return err
	case current == nil:
		return a.StoreToken(ctx, session.Email, token)
	case *current != token:
		return a.UpdateToken(ctx, session.Email, token)
	}
	return nil
}

// GenerateToken returns a random alphanumeric dashboard token.
func GenerateToken() (string, error) {
	limit := big.NewInt(int64(len(tokenAlphabet)))
	out := make([]byte, tokenLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = tokenAlphabet[n.Int64()]
	}
	return string(out), nil
}

func userFromAuthInfo(info AuthInfo) *User {
	u := &User{
		ID:       info.ID,
		Email:    strPtr(info.Email),
		Name:     strPtr(info.Name),
		Gender:   strPtr(info.Gender),
		Birthday: strPtr(info.Birthday),
	}
	if info.ProfilePicture != "" {
		u.ProfilePicture = strPtr(info.ProfilePicture)
	}
	return u
}

func strPtr(v string) *string {
	return &v
}
