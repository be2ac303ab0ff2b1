// Package webhooks records dashboard events and hands them to the relay and
// any other configured sinks.
package webhooks

const (
	EventUserChecked        = "user_checked"
	EventUserNotFound       = "user_not_found"
	EventUserSignedUp       = "user_signed_up"
	EventLogsFetched        = "logs_fetched"
	EventProfileUpdated     = "profile_updated"
	EventCompanyInfoUpdated = "company_info_updated"
	EventTokenStored        = "token_stored"
	EventTokenFetched       = "token_fetched"
	EventTokenNotFound      = "token_not_found"
	EventTokenUpdated       = "token_updated"
	EventDeviceUpdated      = "device_updated"
	EventDeviceInserted     = "device_inserted"
	EventDeviceDataSaved    = "device_data_saved"
)

// Event is the payload published for every state change.
type Event struct {
	Event  string         `json:"event"`
	User   *UserPayload   `json:"user,omitempty"`
	Device *DevicePayload `json:"device,omitempty"`
	Count  *int           `json:"count,omitempty"`
}

// UserPayload is the subset of user fields relevant to an event. Secrets
// never travel in it.
type UserPayload struct {
	ID             string `json:"id,omitempty"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Birthday       string `json:"birthday,omitempty"`
	OrgName        string `json:"orgName,omitempty"`
	Position       string `json:"position,omitempty"`
	CountryCode    string `json:"countryCode,omitempty"`
	Contact        string `json:"contact,omitempty"`
	ProfilePicture string `json:"profilepicture,omitempty"`
}

type DevicePayload struct {
	Email       string `json:"email"`
	DeviceID    string `json:"deviceId"`
	DeviceCount int    `json:"deviceCount"`
}

// UserEvent builds an event about one user.
func UserEvent(tag string, user UserPayload) Event {
	return Event{Event: tag, User: &user}
}

// DeviceEvent builds an event about one device registration.
func DeviceEvent(tag string, device DevicePayload) Event {
	return Event{Event: tag, Device: &device}
}

// CountEvent builds an event that only carries a result size.
func CountEvent(tag string, count int) Event {
	return Event{Event: tag, Count: &count}
}

// Email returns the owner email the event is about, if any.
func (e Event) Email() string {
	switch {
	case e.User != nil:
		return e.User.Email
	case e.Device != nil:
		return e.Device.Email
	}
	return ""
}
