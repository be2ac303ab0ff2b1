package users

import (
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/db/models"
)

// AuthInfo is what the client posts after a successful identity sign-in.
// Clients send a superset of these fields; the rest are ignored.
type AuthInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"`
	Password string `json:"password"`
}

// MissingFields lists the required fields that are empty, in declaration order.
func (a AuthInfo) MissingFields() []string {
	missing := []string{}
	for _, f := range []struct {
		name  string
		value string
	}{
		{"id", a.ID},
		{"email", a.Email},
		{"name", a.Name},
		{"gender", a.Gender},
		{"birthday", a.Birthday},
		{"password", a.Password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// ProfileUpdate overwrites every listed column of the user with the given id.
// A nil field clears the column.
type ProfileUpdate struct {
	ID             string  `json:"id"`
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Gender         *string `json:"gender"`
	Birthday       *string `json:"birthday"`
	Password       *string `json:"password"`
	ProfilePicture *string `json:"profilepicture"`
	CountryCode    *string `json:"countryCode"`
	Contact        *string `json:"contact"`
}

type CompanyUpdate struct {
	Email    string  `json:"email"`
	OrgName  *string `json:"orgName"`
	Position *string `json:"position"`
}

// CompanyInfo is the projection served by GET /fetchCompanyInfo.
type CompanyInfo struct {
	OrgName  *string `json:"orgName"`
	Position *string `json:"position"`
}

func payloadFromModel(u *models.User) webhooks.UserPayload {
	if u == nil {
		return webhooks.UserPayload{}
	}
	p := webhooks.UserPayload{
		ID:             u.ID,
		Email:          deref(u.Email),
		Name:           deref(u.Name),
		Gender:         deref(u.Gender),
		OrgName:        deref(u.OrgName),
		Position:       deref(u.Position),
		CountryCode:    deref(u.CountryCode),
		Contact:        deref(u.Contact),
		ProfilePicture: deref(u.ProfilePicture),
	}
	if u.Birthday != nil {
		p.Birthday = u.Birthday.String()
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	return &s
}
